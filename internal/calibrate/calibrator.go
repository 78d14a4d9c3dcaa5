package calibrate

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"

	"benchcoach/internal/domain"
	"benchcoach/internal/factor"
	"benchcoach/internal/weights"
)

// ErrInsufficientData is returned when the historical corpus is below the
// configured sample floor. The caller must leave existing weights in force.
var ErrInsufficientData = errors.New("insufficient calibration data")

// ErrNoImprovement is returned when the search budget (iterations or
// wall-clock) ran out without beating the incumbent vector.
var ErrNoImprovement = errors.New("calibration found no improvement")

type Config struct {
	MinSamples int
	Iterations int
	Timeout    time.Duration
	Seed       int64
}

type Result struct {
	Samples             int     `json:"samples"`
	Iterations          int     `json:"iterations"`
	BaselineCorrelation float64 `json:"baseline_correlation"`
	BestCorrelation     float64 `json:"best_correlation"`
	TimedOut            bool    `json:"timed_out"`
}

// Calibrator searches for a weight vector that better aligns the weighted
// sum with realized fantasy points. The search is gradient-free coordinate
// perturbation: cheap to evaluate, safe to cut off at any point, and never
// invents factor names the catalog does not know.
type Calibrator struct {
	cfg Config
}

func New(cfg Config) *Calibrator {
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = 15
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 2000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Calibrator{cfg: cfg}
}

// Calibrate fits a vector to rows, starting from the incumbent. It honors
// ctx cancellation and its own wall-clock budget; on any early exit it
// returns an improved vector only if one was found, otherwise
// ErrNoImprovement — the incumbent is never modified either way.
func (c *Calibrator) Calibrate(ctx context.Context, rows []domain.HistoryRow, incumbent weights.Vector) (weights.Vector, Result, error) {
	labeled := labeledSamples(rows)
	res := Result{Samples: len(labeled)}
	if len(labeled) < c.cfg.MinSamples {
		return weights.Vector{}, res, ErrInsufficientData
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	current := incumbent.Normalize()
	baseline := correlation(labeled, current)
	res.BaselineCorrelation = baseline

	best := current
	bestScore := baseline
	rng := rand.New(rand.NewSource(seed(c.cfg.Seed)))

	for i := 0; i < c.cfg.Iterations; i++ {
		if ctx.Err() != nil {
			res.TimedOut = true
			break
		}
		res.Iterations = i + 1

		name := factor.Catalog[rng.Intn(len(factor.Catalog))]
		scale := 0.5 + rng.Float64() // perturb one coordinate by 0.5x-1.5x
		weight := best.Weight(name) * scale
		if weight == 0 {
			weight = rng.Float64() * 0.05
		}
		candidate, err := best.Set(name, weight)
		if err != nil {
			continue
		}
		candidate = candidate.Normalize()

		if score := correlation(labeled, candidate); score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	res.BestCorrelation = bestScore

	if bestScore <= baseline {
		return weights.Vector{}, res, ErrNoImprovement
	}
	return best, res, nil
}

type sample struct {
	scores  map[string]float64
	outcome float64
}

func labeledSamples(rows []domain.HistoryRow) []sample {
	out := make([]sample, 0, len(rows))
	for _, row := range rows {
		if row.FantasyPoints == nil || len(row.Scores) == 0 {
			continue
		}
		out = append(out, sample{scores: row.Scores, outcome: *row.FantasyPoints})
	}
	return out
}

// correlation is the search objective: Pearson correlation between the
// weighted sums under v and the realized outcomes. Sums accumulate in
// catalog order so evaluation is deterministic.
func correlation(samples []sample, v weights.Vector) float64 {
	preds := make([]float64, len(samples))
	outcomes := make([]float64, len(samples))
	for i, s := range samples {
		total := 0.0
		for _, name := range factor.Catalog {
			if value, ok := s.scores[name]; ok {
				total += value * v.Weight(name)
			}
		}
		preds[i] = total
		outcomes[i] = s.outcome
	}
	r := stat.Correlation(preds, outcomes, nil)
	if r != r { // NaN when either side has zero variance
		return -1
	}
	return r
}

func seed(configured int64) int64 {
	if configured != 0 {
		return configured
	}
	return time.Now().UnixNano()
}
