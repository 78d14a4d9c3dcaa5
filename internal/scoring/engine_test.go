package scoring

import (
	"math"
	"testing"
	"time"

	"benchcoach/internal/domain"
	"benchcoach/internal/factor"
	"benchcoach/internal/weights"
)

func TestTierForBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  domain.Tier
	}{
		{0.15, domain.TierStrongStart},
		{0.149999, domain.TierFavorable},
		{0.05, domain.TierFavorable},
		{0.049999, domain.TierNeutral},
		{0.0, domain.TierNeutral},
		{-0.05, domain.TierNeutral},
		{-0.050001, domain.TierUnfavorable},
		{-0.15, domain.TierUnfavorable},
		{-0.150001, domain.TierBench},
		{0.9, domain.TierStrongStart},
		{-3.0, domain.TierBench},
	}
	for _, tc := range cases {
		if got := TierFor(tc.score); got != tc.want {
			t.Fatalf("TierFor(%v): got %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestTierForMonotonic(t *testing.T) {
	prev := TierFor(-1)
	for s := -1.0; s <= 1.0; s += 0.001 {
		cur := TierFor(s)
		if cur < prev {
			t.Fatalf("tier dropped from %s to %s at score %v", prev, cur, s)
		}
		prev = cur
	}
}

func TestScoreReferenceScenario(t *testing.T) {
	// wind 2.0 at weight 0.08 plus park 0.5 at weight 0.06: final 0.19,
	// a Strong Start.
	w, err := weights.New(map[string]float64{
		factor.Wind:        0.08,
		factor.ParkFactors: 0.06,
	})
	if err != nil {
		t.Fatalf("weights: %v", err)
	}
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	scores := []domain.FactorScore{
		{PlayerID: "p1", Factor: factor.Wind, Value: 2.0},
		{PlayerID: "p1", Factor: factor.ParkFactors, Value: 0.5},
	}

	ps := NewEngine().Score("p1", "Test Batter", date, scores, w)
	if math.Abs(ps.FinalScore-0.19) > 1e-12 {
		t.Fatalf("final score: got %v, want 0.19", ps.FinalScore)
	}
	if ps.Recommendation != domain.TierStrongStart {
		t.Fatalf("tier: got %s, want Strong Start", ps.Recommendation)
	}
	if got := ps.Contributions[factor.Wind]; math.Abs(got-0.16) > 1e-12 {
		t.Fatalf("wind contribution: got %v, want 0.16", got)
	}
	if got := ps.Contributions[factor.ParkFactors]; math.Abs(got-0.03) > 1e-12 {
		t.Fatalf("park contribution: got %v, want 0.03", got)
	}
}

func TestScoreEmptyInput(t *testing.T) {
	ps := NewEngine().Score("p1", "Test Batter", time.Now(), nil, weights.Defaults())
	if ps.FinalScore != 0.0 {
		t.Fatalf("empty input: got %v, want 0.0", ps.FinalScore)
	}
	if ps.Recommendation != domain.TierNeutral {
		t.Fatalf("empty input tier: got %s, want Neutral", ps.Recommendation)
	}
}

func TestScoreUnweightedFactorContributesZero(t *testing.T) {
	w, err := weights.New(map[string]float64{factor.Wind: 0.5})
	if err != nil {
		t.Fatalf("weights: %v", err)
	}
	scores := []domain.FactorScore{
		{PlayerID: "p1", Factor: factor.Wind, Value: 1.0},
		{PlayerID: "p1", Factor: factor.Umpire, Value: 2.0},
	}
	ps := NewEngine().Score("p1", "Test Batter", time.Now(), scores, w)
	if ps.FinalScore != 0.5 {
		t.Fatalf("final score: got %v, want 0.5", ps.FinalScore)
	}
	if ps.Contributions[factor.Umpire] != 0 {
		t.Fatalf("unweighted factor must contribute 0, got %v", ps.Contributions[factor.Umpire])
	}
}

func TestScoreDeterministic(t *testing.T) {
	scores := []domain.FactorScore{
		{PlayerID: "p1", Factor: factor.Wind, Value: 1.371},
		{PlayerID: "p1", Factor: factor.VegasOdds, Value: -0.823},
		{PlayerID: "p1", Factor: factor.Matchup, Value: 0.449},
	}
	e := NewEngine()
	first := e.Score("p1", "Test Batter", time.Now(), scores, weights.Defaults())
	for i := 0; i < 100; i++ {
		again := e.Score("p1", "Test Batter", time.Now(), scores, weights.Defaults())
		if again.FinalScore != first.FinalScore {
			t.Fatalf("run %d produced %v, first run %v", i, again.FinalScore, first.FinalScore)
		}
	}
}

func TestScoreDuplicateFactorFirstWins(t *testing.T) {
	w, err := weights.New(map[string]float64{factor.Wind: 1.0})
	if err != nil {
		t.Fatalf("weights: %v", err)
	}
	scores := []domain.FactorScore{
		{PlayerID: "p1", Factor: factor.Wind, Value: 1.0},
		{PlayerID: "p1", Factor: factor.Wind, Value: 2.0},
	}
	ps := NewEngine().Score("p1", "Test Batter", time.Now(), scores, w)
	if ps.FinalScore != 1.0 {
		t.Fatalf("duplicate factor: got %v, want first value 1.0", ps.FinalScore)
	}
}
