package factor

import (
	"context"

	"benchcoach/internal/domain"
)

// Park run factors relative to league average (1.00). Hitter-friendly parks
// score above 1, pitcher-friendly below.
var parkRunFactors = map[string]float64{
	"Coors Field":                 1.28,
	"Fenway Park":                 1.12,
	"Great American Ball Park":    1.10,
	"Chase Field":                 1.06,
	"Citizens Bank Park":          1.05,
	"Yankee Stadium":              1.05,
	"Wrigley Field":               1.04,
	"Kauffman Stadium":            1.03,
	"Truist Park":                 1.02,
	"Target Field":                1.01,
	"Globe Life Field":            1.00,
	"Angel Stadium":               1.00,
	"Rogers Centre":               1.00,
	"Busch Stadium":               0.99,
	"Nationals Park":              0.99,
	"Dodger Stadium":              0.98,
	"Minute Maid Park":            0.98,
	"Comerica Park":               0.97,
	"American Family Field":       0.97,
	"Progressive Field":           0.96,
	"Guaranteed Rate Field":       0.96,
	"PNC Park":                    0.95,
	"Citi Field":                  0.94,
	"Oriole Park at Camden Yards": 0.94,
	"Oakland Coliseum":            0.93,
	"Tropicana Field":             0.92,
	"LoanDepot Park":              0.91,
	"Petco Park":                  0.90,
	"Oracle Park":                 0.89,
	"T-Mobile Park":               0.88,
}

// ParkFactorsAnalyzer scores how hitter-friendly the venue plays.
type ParkFactorsAnalyzer struct{}

func (a *ParkFactorsAnalyzer) Name() string               { return ParkFactors }
func (a *ParkFactorsAnalyzer) Bounds() (float64, float64) { return -2.0, 2.0 }

func (a *ParkFactorsAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		game, ok := slate.GameFor(p)
		if !ok {
			out = append(out, Neutral(ParkFactors, p, slate))
			continue
		}
		pf, known := parkRunFactors[game.Venue]
		if !known {
			out = append(out, Neutral(ParkFactors, p, slate))
			continue
		}
		fs := Neutral(ParkFactors, p, slate)
		fs.Value = (pf - 1.0) * 5.0
		fs.Confidence = domain.ConfidenceHigh
		out = append(out, fs)
	}
	return out, nil
}

// HomeAwayAnalyzer scores the player's home/road split against their
// season average.
type HomeAwayAnalyzer struct{}

func (a *HomeAwayAnalyzer) Name() string               { return HomeAway }
func (a *HomeAwayAnalyzer) Bounds() (float64, float64) { return -2.0, 2.0 }

func (a *HomeAwayAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		game, ok := slate.GameFor(p)
		line, hasLine := slate.Batting[p.ID]
		if !ok || !hasLine || line.SeasonAvg == 0 {
			out = append(out, Neutral(HomeAway, p, slate))
			continue
		}
		split := line.AwayAvg
		if game.IsHome(p.Team) {
			split = line.HomeAvg
		}
		if split == 0 {
			out = append(out, Neutral(HomeAway, p, slate))
			continue
		}
		fs := Neutral(HomeAway, p, slate)
		fs.Value = (split - line.SeasonAvg) * 10.0
		fs.Confidence = confidenceFromGames(line.GamesPlayed)
		out = append(out, fs)
	}
	return out, nil
}

// TimeOfDayAnalyzer scores the day/night split. Games starting before 17:00
// local count as day games.
type TimeOfDayAnalyzer struct{}

func (a *TimeOfDayAnalyzer) Name() string               { return TimeOfDay }
func (a *TimeOfDayAnalyzer) Bounds() (float64, float64) { return -1.5, 1.5 }

func (a *TimeOfDayAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		game, ok := slate.GameFor(p)
		line, hasLine := slate.Batting[p.ID]
		if !ok || !hasLine || line.SeasonAvg == 0 {
			out = append(out, Neutral(TimeOfDay, p, slate))
			continue
		}
		split := line.NightAvg
		if game.StartHour > 0 && game.StartHour < 17 {
			split = line.DayAvg
		}
		if split == 0 {
			out = append(out, Neutral(TimeOfDay, p, slate))
			continue
		}
		fs := Neutral(TimeOfDay, p, slate)
		fs.Value = (split - line.SeasonAvg) * 10.0
		fs.Confidence = domain.ConfidenceLow
		out = append(out, fs)
	}
	return out, nil
}

func confidenceFromGames(games int) domain.Confidence {
	switch {
	case games >= 50:
		return domain.ConfidenceHigh
	case games >= 20:
		return domain.ConfidenceMedium
	case games > 0:
		return domain.ConfidenceLow
	default:
		return domain.ConfidenceNone
	}
}
