package factor

import (
	"context"

	"benchcoach/internal/domain"
)

// RestDayAnalyzer scores days since the player's last game. One day of rest
// is the norm; long layoffs bring rust, none at all brings fatigue.
type RestDayAnalyzer struct{}

func (a *RestDayAnalyzer) Name() string               { return RestDay }
func (a *RestDayAnalyzer) Bounds() (float64, float64) { return -1.5, 1.5 }

func (a *RestDayAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		days, ok := slate.RestDays[p.ID]
		if !ok {
			out = append(out, Neutral(RestDay, p, slate))
			continue
		}
		fs := Neutral(RestDay, p, slate)
		switch {
		case days <= 0: // second game of a doubleheader
			fs.Value = -0.5
		case days == 1:
			fs.Value = 0.0
		case days <= 3:
			fs.Value = 0.5
		default:
			fs.Value = -0.3
		}
		fs.Confidence = domain.ConfidenceHigh
		out = append(out, fs)
	}
	return out, nil
}

// InjuryAnalyzer scores injury-report status and recent returns from the
// injured list.
type InjuryAnalyzer struct{}

func (a *InjuryAnalyzer) Name() string               { return Injury }
func (a *InjuryAnalyzer) Bounds() (float64, float64) { return -2.0, 2.0 }

func (a *InjuryAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		st, ok := slate.Injuries[p.ID]
		if !ok {
			out = append(out, Neutral(Injury, p, slate))
			continue
		}
		fs := Neutral(Injury, p, slate)
		fs.Confidence = domain.ConfidenceHigh
		switch {
		case st.Listed && st.Designation == "IL60":
			fs.Value = -2.0
		case st.Listed && st.Designation == "IL10":
			fs.Value = -2.0
		case st.Listed: // day-to-day
			fs.Value = -1.0
		case st.DaysSinceReturn > 0 && st.DaysSinceReturn <= 7:
			fs.Value = -0.5
		default:
			fs.Value = 0.2
		}
		out = append(out, fs)
	}
	return out, nil
}

// LineupPositionAnalyzer scores the posted batting-order slot: top of the
// order sees more plate appearances and better RBI spots.
type LineupPositionAnalyzer struct{}

func (a *LineupPositionAnalyzer) Name() string               { return LineupPosition }
func (a *LineupPositionAnalyzer) Bounds() (float64, float64) { return -2.0, 2.0 }

func (a *LineupPositionAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		line, ok := slate.Batting[p.ID]
		if !ok || line.LineupSlot < 1 || line.LineupSlot > 9 {
			out = append(out, Neutral(LineupPosition, p, slate))
			continue
		}
		fs := Neutral(LineupPosition, p, slate)
		fs.Value = (5.5 - float64(line.LineupSlot)) * 0.25
		fs.Confidence = domain.ConfidenceHigh
		out = append(out, fs)
	}
	return out, nil
}

// DefensivePositionsAnalyzer nudges for positional scarcity; premium
// defensive spots tend to come with weaker replacement-level bats.
type DefensivePositionsAnalyzer struct{}

func (a *DefensivePositionsAnalyzer) Name() string               { return DefensivePositions }
func (a *DefensivePositionsAnalyzer) Bounds() (float64, float64) { return -1.5, 1.5 }

func (a *DefensivePositionsAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		fs := Neutral(DefensivePositions, p, slate)
		switch p.Position {
		case "C":
			fs.Value = 0.3
		case "SS":
			fs.Value = 0.2
		case "2B", "3B":
			fs.Value = 0.1
		case "1B", "DH":
			fs.Value = -0.2
		case "":
			out = append(out, fs)
			continue
		}
		fs.Confidence = domain.ConfidenceLow
		out = append(out, fs)
	}
	return out, nil
}

// BullpenFatigueAnalyzer scores the opposing bullpen's recent workload: a
// gassed pen means softer innings late.
type BullpenFatigueAnalyzer struct{}

func (a *BullpenFatigueAnalyzer) Name() string               { return BullpenFatigue }
func (a *BullpenFatigueAnalyzer) Bounds() (float64, float64) { return -2.0, 2.0 }

func (a *BullpenFatigueAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		game, ok := slate.GameFor(p)
		if !ok {
			out = append(out, Neutral(BullpenFatigue, p, slate))
			continue
		}
		opponent := game.HomeTeam
		if game.IsHome(p.Team) {
			opponent = game.AwayTeam
		}
		ts, known := slate.Teams[opponent]
		if !known || ts.BullpenPitchesLast3 == 0 {
			out = append(out, Neutral(BullpenFatigue, p, slate))
			continue
		}
		// ~150 pitches over three days is a rested pen.
		fs := Neutral(BullpenFatigue, p, slate)
		fs.Value = (ts.BullpenPitchesLast3 - 150.0) / 50.0
		fs.Confidence = domain.ConfidenceMedium
		out = append(out, fs)
	}
	return out, nil
}
