package calibrate

import (
	"context"
	"errors"
	"testing"
	"time"

	"benchcoach/internal/domain"
	"benchcoach/internal/factor"
	"benchcoach/internal/weights"
)

func labeledRow(wind, park, outcome float64) domain.HistoryRow {
	pts := outcome
	return domain.HistoryRow{
		PlayerID:      "p1",
		GameDate:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Scores:        map[string]float64{factor.Wind: wind, factor.ParkFactors: park},
		FantasyPoints: &pts,
	}
}

func TestCalibrateInsufficientData(t *testing.T) {
	c := New(Config{MinSamples: 15, Seed: 1})
	rows := []domain.HistoryRow{labeledRow(1, 0, 5)}

	_, res, err := c.Calibrate(context.Background(), rows, weights.Defaults())
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if res.Samples != 1 {
		t.Fatalf("expected 1 sample counted, got %d", res.Samples)
	}
}

func TestCalibrateIgnoresUnlabeledRows(t *testing.T) {
	c := New(Config{MinSamples: 15, Seed: 1})
	rows := make([]domain.HistoryRow, 20)
	for i := range rows {
		rows[i] = domain.HistoryRow{Scores: map[string]float64{factor.Wind: 1}}
	}

	_, res, err := c.Calibrate(context.Background(), rows, weights.Defaults())
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for unlabeled rows, got %v", err)
	}
	if res.Samples != 0 {
		t.Fatalf("expected 0 labeled samples, got %d", res.Samples)
	}
}

func TestCalibrateImprovesCorrelation(t *testing.T) {
	// Outcomes track the wind score and nothing else, so shifting weight
	// toward wind must beat a park-heavy incumbent.
	rows := make([]domain.HistoryRow, 0, 40)
	for i := 0; i < 40; i++ {
		wind := float64(i%9) - 4
		park := float64((i*7)%11) - 5
		rows = append(rows, labeledRow(wind, park, wind*3+float64(i%2)))
	}
	incumbent, err := weights.New(map[string]float64{factor.Wind: 0.05, factor.ParkFactors: 0.95})
	if err != nil {
		t.Fatalf("incumbent: %v", err)
	}

	c := New(Config{MinSamples: 15, Iterations: 3000, Seed: 42})
	best, res, err := c.Calibrate(context.Background(), rows, incumbent)
	if err != nil {
		t.Fatalf("calibrate: %v", err)
	}
	if res.BestCorrelation <= res.BaselineCorrelation {
		t.Fatalf("expected improvement, baseline %.4f best %.4f", res.BaselineCorrelation, res.BestCorrelation)
	}
	if best.Weight(factor.Wind) <= incumbent.Normalize().Weight(factor.Wind) {
		t.Fatalf("expected wind weight to grow, got %.4f", best.Weight(factor.Wind))
	}
	if sum := best.Sum(); sum < 0.999 || sum > 1.001 {
		t.Fatalf("result not normalized, sum %.6f", sum)
	}
}

func TestCalibrateNoImprovementLeavesIncumbent(t *testing.T) {
	// Constant outcomes have zero variance, so no vector can correlate.
	rows := make([]domain.HistoryRow, 0, 20)
	for i := 0; i < 20; i++ {
		rows = append(rows, labeledRow(float64(i), float64(-i), 7.0))
	}

	c := New(Config{MinSamples: 15, Iterations: 50, Seed: 7})
	_, _, err := c.Calibrate(context.Background(), rows, weights.Defaults())
	if !errors.Is(err, ErrNoImprovement) {
		t.Fatalf("expected ErrNoImprovement, got %v", err)
	}
}

func TestCalibrateHonorsContextCancellation(t *testing.T) {
	rows := make([]domain.HistoryRow, 0, 20)
	for i := 0; i < 20; i++ {
		rows = append(rows, labeledRow(float64(i%5), float64(i%3), float64(i)))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(Config{MinSamples: 15, Iterations: 100000, Seed: 3})
	start := time.Now()
	_, res, err := c.Calibrate(ctx, rows, weights.Defaults())
	if err == nil {
		t.Fatal("expected an error from a cancelled search")
	}
	if res.Iterations != 0 {
		t.Fatalf("expected no iterations after cancellation, got %d", res.Iterations)
	}
	if time.Since(start) > time.Second {
		t.Fatal("cancelled search took too long")
	}
}
