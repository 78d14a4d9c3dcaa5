package factor

import (
	"context"

	"benchcoach/internal/domain"
)

// MatchupAnalyzer scores the batter's career history against today's
// opposing starter, blending average and power and damping small samples.
type MatchupAnalyzer struct{}

func (a *MatchupAnalyzer) Name() string               { return Matchup }
func (a *MatchupAnalyzer) Bounds() (float64, float64) { return -2.0, 2.0 }

func (a *MatchupAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		m, ok := slate.Matchups[p.ID]
		if !ok || m.AtBats == 0 {
			out = append(out, Neutral(Matchup, p, slate))
			continue
		}
		baScore := (m.BattingAvg - 0.250) * 10.0
		hrScore := float64(m.HomeRuns) * 0.5
		sample := float64(m.AtBats) / 20.0
		if sample > 1 {
			sample = 1
		}
		fs := Neutral(Matchup, p, slate)
		fs.Value = (baScore + hrScore) * sample
		switch {
		case m.AtBats >= 20:
			fs.Confidence = domain.ConfidenceHigh
		case m.AtBats >= 10:
			fs.Confidence = domain.ConfidenceMedium
		default:
			fs.Confidence = domain.ConfidenceLow
		}
		out = append(out, fs)
	}
	return out, nil
}

// PlatoonAnalyzer scores the handedness matchup: the base platoon edge plus
// the batter's actual split against that pitcher hand.
type PlatoonAnalyzer struct{}

func (a *PlatoonAnalyzer) Name() string               { return Platoon }
func (a *PlatoonAnalyzer) Bounds() (float64, float64) { return -1.5, 1.5 }

func (a *PlatoonAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		game, ok := slate.GameFor(p)
		if !ok {
			out = append(out, Neutral(Platoon, p, slate))
			continue
		}
		throws := game.Opposing(p.Team).Throws
		if throws == "" || p.Bats == "" {
			out = append(out, Neutral(Platoon, p, slate))
			continue
		}

		var base float64
		switch {
		case p.Bats == "S":
			base = 0.5 // switch hitters always hold the edge
		case p.Bats != throws:
			base = 1.0
		case p.Bats == "L" && throws == "L":
			base = -1.0
		default:
			base = -0.5
		}

		fs := Neutral(Platoon, p, slate)
		fs.Confidence = domain.ConfidenceMedium
		line, hasLine := slate.Batting[p.ID]
		if hasLine && line.AvgVsLHP > 0 && line.AvgVsRHP > 0 {
			split := line.AvgVsRHP - line.AvgVsLHP
			if throws == "L" {
				split = -split
			}
			fs.Value = base*0.3 + split*10.0*0.7
			fs.Confidence = domain.ConfidenceHigh
		} else {
			fs.Value = base
		}
		out = append(out, fs)
	}
	return out, nil
}

// PitchMixAnalyzer projects the batter's per-pitch-type performance onto the
// opposing starter's arsenal.
type PitchMixAnalyzer struct{}

func (a *PitchMixAnalyzer) Name() string               { return PitchMix }
func (a *PitchMixAnalyzer) Bounds() (float64, float64) { return -2.0, 2.0 }

func (a *PitchMixAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		game, ok := slate.GameFor(p)
		line, hasLine := slate.Batting[p.ID]
		if !ok || !hasLine || line.SeasonAvg == 0 {
			out = append(out, Neutral(PitchMix, p, slate))
			continue
		}
		mix := game.Opposing(p.Team).PitchMix
		if len(mix) == 0 || line.VsFastball == 0 || line.VsBreaking == 0 {
			out = append(out, Neutral(PitchMix, p, slate))
			continue
		}
		fastShare := mix["fastball"] + mix["sinker"] + mix["cutter"]
		breakShare := 1.0 - fastShare
		if breakShare < 0 {
			breakShare = 0
		}
		expected := fastShare*line.VsFastball + breakShare*line.VsBreaking
		fs := Neutral(PitchMix, p, slate)
		fs.Value = (expected - line.SeasonAvg) * 10.0
		fs.Confidence = domain.ConfidenceMedium
		out = append(out, fs)
	}
	return out, nil
}

// UmpireAnalyzer scores the home-plate umpire's strike zone. A tight zone
// (below 1.0) favors hitters.
type UmpireAnalyzer struct{}

func (a *UmpireAnalyzer) Name() string               { return Umpire }
func (a *UmpireAnalyzer) Bounds() (float64, float64) { return -2.0, 2.0 }

func (a *UmpireAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		game, ok := slate.GameFor(p)
		if !ok {
			out = append(out, Neutral(Umpire, p, slate))
			continue
		}
		ump, known := slate.Umpires[game.Venue]
		if !known || ump.StrikeZoneSize == 0 {
			out = append(out, Neutral(Umpire, p, slate))
			continue
		}
		fs := Neutral(Umpire, p, slate)
		fs.Value = (1.0 - ump.StrikeZoneSize) * 5.0
		fs.Confidence = domain.ConfidenceLow
		out = append(out, fs)
	}
	return out, nil
}
