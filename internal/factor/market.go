package factor

import (
	"context"

	"benchcoach/internal/domain"
)

// VegasOddsAnalyzer scores the betting market's expectation for the player's
// game: high totals and a favored team mean a high-scoring environment.
type VegasOddsAnalyzer struct{}

func (a *VegasOddsAnalyzer) Name() string               { return VegasOdds }
func (a *VegasOddsAnalyzer) Bounds() (float64, float64) { return -2.0, 2.0 }

func (a *VegasOddsAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		odds, ok := slate.Odds[p.Team]
		if !ok || odds.OverUnder == 0 {
			out = append(out, Neutral(VegasOdds, p, slate))
			continue
		}
		// League-average game total is around 9 runs, 4.5 per side.
		totalScore := (odds.OverUnder/2.0 - 4.5) * 0.8
		winScore := (impliedProbability(odds.MoneyLine) - 0.5) * 2.0

		fs := Neutral(VegasOdds, p, slate)
		fs.Value = totalScore + winScore
		fs.Confidence = domain.ConfidenceHigh
		out = append(out, fs)
	}
	return out, nil
}

// impliedProbability converts American odds into a win probability.
// -150 => 0.60, +150 => 0.40.
func impliedProbability(moneyLine float64) float64 {
	switch {
	case moneyLine < 0:
		return -moneyLine / (-moneyLine + 100.0)
	case moneyLine > 0:
		return 100.0 / (moneyLine + 100.0)
	default:
		return 0.5
	}
}
