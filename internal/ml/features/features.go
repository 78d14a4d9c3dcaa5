package features

import (
	"benchcoach/internal/domain"
	"benchcoach/internal/factor"
)

const featureSpecVersion = "v1"

// Interaction feature names. Products of already-bounded factor scores, so
// they need no extra clipping.
const (
	ParkPlatoon   = "park_platoon"
	MatchupRecent = "matchup_recent"
	VegasPark     = "vegas_park"
)

func FeatureSpecVersion() string {
	return featureSpecVersion
}

// FeatureNames returns the model input layout: the factor catalog in order,
// then the interaction terms. Models trained against one layout refuse to
// score another, keyed on FeatureSpecVersion.
func FeatureNames() []string {
	names := make([]string, 0, len(factor.Catalog)+3)
	names = append(names, factor.Catalog...)
	return append(names, ParkPlatoon, MatchupRecent, VegasPark)
}

// Vector projects a factor-score map onto the feature layout. Factors the
// map lacks contribute zero, which keeps degraded score runs usable.
func Vector(scores map[string]float64) []float64 {
	out := make([]float64, 0, len(factor.Catalog)+3)
	for _, name := range factor.Catalog {
		out = append(out, scores[name])
	}
	out = append(out, scores[factor.ParkFactors]*scores[factor.Platoon])
	out = append(out, scores[factor.Matchup]*scores[factor.RecentForm])
	out = append(out, scores[factor.VegasOdds]*scores[factor.ParkFactors])
	return out
}

// Dataset converts labeled history rows into parallel sample and target
// slices, skipping rows that never resolved.
func Dataset(rows []domain.HistoryRow) ([][]float64, []float64) {
	x := make([][]float64, 0, len(rows))
	y := make([]float64, 0, len(rows))
	for i := range rows {
		if rows[i].FantasyPoints == nil || len(rows[i].Scores) == 0 {
			continue
		}
		x = append(x, Vector(rows[i].Scores))
		y = append(y, *rows[i].FantasyPoints)
	}
	return x, y
}
