package scoring

import (
	"time"

	"benchcoach/internal/domain"
	"benchcoach/internal/weights"
)

// Tier thresholds. These cut points are a product decision tuned to the
// realistic final-score distribution (roughly -0.25 to +0.25) and the
// boundaries are inclusive on the upper rule: exactly 0.15 is a Strong Start.
const (
	strongStartThreshold = 0.15
	favorableThreshold   = 0.05
	neutralThreshold     = -0.05
	unfavorableThreshold = -0.15
)

// TierFor maps a final score onto the recommendation ladder. It is pure and
// monotonic: a higher score never yields a lower tier.
func TierFor(score float64) domain.Tier {
	switch {
	case score >= strongStartThreshold:
		return domain.TierStrongStart
	case score >= favorableThreshold:
		return domain.TierFavorable
	case score >= neutralThreshold:
		return domain.TierNeutral
	case score >= unfavorableThreshold:
		return domain.TierUnfavorable
	default:
		return domain.TierBench
	}
}

// Engine aggregates factor scores into one final score per player. It is
// stateless: identical inputs produce bit-identical output.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Score computes final_score = Σ value × weight over the factors present in
// factorScores, accumulated in input order so repeated runs are bit
// identical. A factor with no weight entry contributes 0, which keeps the
// engine forward-compatible with analyzers added before their weights are
// tuned. Only the first score per factor counts.
func (e *Engine) Score(
	playerID, playerName string,
	gameDate time.Time,
	factorScores []domain.FactorScore,
	w weights.Vector,
) domain.PlayerScore {
	contributions := make(map[string]float64, len(factorScores))
	final := 0.0
	for _, fs := range factorScores {
		if _, seen := contributions[fs.Factor]; seen {
			continue
		}
		contribution := fs.Value * w.Weight(fs.Factor)
		contributions[fs.Factor] = contribution
		final += contribution
	}
	return domain.PlayerScore{
		PlayerID:       playerID,
		PlayerName:     playerName,
		GameDate:       domain.DateOnly(gameDate),
		FinalScore:     final,
		Recommendation: TierFor(final),
		Contributions:  contributions,
	}
}
