package training

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/narumiruna/go-iforest/pkg/iforest"
	"go.opentelemetry.io/otel/trace"

	"benchcoach/internal/domain"
	"benchcoach/internal/ml/ensemble"
	"benchcoach/internal/ml/features"
	"benchcoach/internal/ml/models/gbr"
	"benchcoach/internal/ml/models/ridge"
	"benchcoach/internal/weights"
)

type HistoryStore interface {
	ListLabeled(ctx context.Context, from, to time.Time) ([]domain.HistoryRow, error)
}

type WeightSource interface {
	Global() weights.Vector
}

type Config struct {
	TrainWindowDays   int
	MinTrainSamples   int
	OutlierProportion float64
}

// Service retrains the ensemble pair from labeled history and swaps the
// artifact set in. Rows arrive chronologically so the validation and test
// partitions are always the most recent games.
type Service struct {
	tracer    trace.Tracer
	history   HistoryStore
	weights   WeightSource
	predictor *ensemble.Predictor
	cfg       Config
}

type TrainResult struct {
	Samples   int                `json:"samples"`
	Outliers  int                `json:"outliers"`
	TestCount int                `json:"test_count"`
	MetricsA  map[string]float64 `json:"metrics_a"`
	MetricsB  map[string]float64 `json:"metrics_b"`
	TrainedAt time.Time          `json:"trained_at"`
}

func NewService(tracer trace.Tracer, history HistoryStore, weightSource WeightSource, predictor *ensemble.Predictor, cfg Config) *Service {
	if cfg.TrainWindowDays <= 0 {
		cfg.TrainWindowDays = 180
	}
	if cfg.MinTrainSamples <= 0 {
		cfg.MinTrainSamples = 50
	}
	if cfg.OutlierProportion <= 0 || cfg.OutlierProportion >= 0.5 {
		cfg.OutlierProportion = 0.02
	}
	return &Service{tracer: tracer, history: history, weights: weightSource, predictor: predictor, cfg: cfg}
}

// TrainAll fits both models, evaluates them on the held-out test tail, and
// persists the artifact triple. The live predictor keeps serving the old
// models until Save succeeds.
func (s *Service) TrainAll(ctx context.Context, now time.Time) (TrainResult, error) {
	_, span := s.tracer.Start(ctx, "ml-training.train-all")
	defer span.End()

	from := now.UTC().AddDate(0, 0, -s.cfg.TrainWindowDays)
	rows, err := s.history.ListLabeled(ctx, from, now.UTC())
	if err != nil {
		return TrainResult{}, err
	}
	samples, targets := features.Dataset(rows)
	if len(samples) < s.cfg.MinTrainSamples {
		return TrainResult{}, fmt.Errorf("not enough labeled samples: got %d need >= %d", len(samples), s.cfg.MinTrainSamples)
	}

	samples, targets, dropped := dropOutliers(samples, targets, s.cfg.OutlierProportion)
	if len(samples) < s.cfg.MinTrainSamples {
		return TrainResult{}, fmt.Errorf("outlier filter left %d samples, need >= %d", len(samples), s.cfg.MinTrainSamples)
	}

	trainX, trainY, testX, testY := chronologicalSplit(samples, targets)
	names := features.FeatureNames()

	modelA, err := ridge.Train(trainX, trainY, names, ridge.DefaultTrainOptions())
	if err != nil {
		return TrainResult{}, fmt.Errorf("train ridge: %w", err)
	}
	modelB, err := gbr.Train(trainX, trainY, names, gbr.DefaultTrainOptions())
	if err != nil {
		return TrainResult{}, fmt.Errorf("train gbr: %w", err)
	}

	result := TrainResult{
		Samples:   len(samples),
		Outliers:  dropped,
		TestCount: len(testY),
		MetricsA:  regressionMetrics(testY, modelA.PredictBatch(testX)),
		MetricsB:  regressionMetrics(testY, modelB.PredictBatch(testX)),
		TrainedAt: now.UTC(),
	}

	if err := s.predictor.Save(modelA, modelB, s.weights.Global(), now); err != nil {
		return result, fmt.Errorf("persist artifacts: %w", err)
	}
	return result, nil
}

// dropOutliers removes the most anomalous fraction of rows before fitting.
// Box-score flukes (four-homer nights, position players pitching) otherwise
// dominate the squared-error objectives.
func dropOutliers(samples [][]float64, targets []float64, proportion float64) ([][]float64, []float64, int) {
	if len(samples) < 20 {
		return samples, targets, 0
	}

	augmented := make([][]float64, len(samples))
	for i := range samples {
		row := make([]float64, 0, len(samples[i])+1)
		row = append(row, samples[i]...)
		augmented[i] = append(row, targets[i])
	}

	forest := iforest.New()
	forest.Fit(augmented)
	scores := forest.Score(augmented)

	cutoff := quantile(scores, 1-proportion)
	keptX := make([][]float64, 0, len(samples))
	keptY := make([]float64, 0, len(targets))
	for i := range samples {
		if scores[i] > cutoff {
			continue
		}
		keptX = append(keptX, samples[i])
		keptY = append(keptY, targets[i])
	}
	if len(keptX) == 0 {
		return samples, targets, 0
	}
	return keptX, keptY, len(samples) - len(keptX)
}

func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)) * q)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// chronologicalSplit keeps the first 85% for fitting (the model trainers
// carve their own validation tails out of it) and the last 15% for test.
func chronologicalSplit(samples [][]float64, targets []float64) ([][]float64, []float64, [][]float64, []float64) {
	n := len(samples)
	cut := int(float64(n) * 0.85)
	if cut <= 0 {
		cut = 1
	}
	if cut >= n {
		cut = n - 1
	}
	return samples[:cut], targets[:cut], samples[cut:], targets[cut:]
}

func regressionMetrics(actual, predicted []float64) map[string]float64 {
	n := len(actual)
	if n == 0 || len(predicted) != n {
		return map[string]float64{"rmse": 0, "mae": 0, "r2": 0, "n_test": 0}
	}

	mean := 0.0
	for _, v := range actual {
		mean += v
	}
	mean /= float64(n)

	sse := 0.0
	sae := 0.0
	sst := 0.0
	for i := 0; i < n; i++ {
		d := predicted[i] - actual[i]
		sse += d * d
		sae += math.Abs(d)
		t := actual[i] - mean
		sst += t * t
	}

	r2 := 0.0
	if sst > 0 {
		r2 = 1 - sse/sst
	}
	return map[string]float64{
		"rmse":   math.Sqrt(sse / float64(n)),
		"mae":    sae / float64(n),
		"r2":     r2,
		"n_test": float64(n),
	}
}
