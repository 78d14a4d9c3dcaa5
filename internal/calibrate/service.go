package calibrate

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"

	"benchcoach/internal/domain"
	"benchcoach/internal/weights"
)

type HistoryStore interface {
	ListLabeled(ctx context.Context, from, to time.Time) ([]domain.HistoryRow, error)
	ListLabeledForPlayer(ctx context.Context, playerID string, from, to time.Time) ([]domain.HistoryRow, error)
}

// Service runs calibrations against stored history and writes the winning
// vector back into the live weight config. Existing weights stay in force
// whenever the search fails for any reason.
type Service struct {
	tracer     trace.Tracer
	history    HistoryStore
	weights    *weights.Config
	calibrator *Calibrator
	windowDays int
}

func NewService(tracer trace.Tracer, history HistoryStore, w *weights.Config, calibrator *Calibrator, windowDays int) *Service {
	if windowDays <= 0 {
		windowDays = 120
	}
	return &Service{tracer: tracer, history: history, weights: w, calibrator: calibrator, windowDays: windowDays}
}

// CalibrateGlobal refits the global vector against every labeled row in the
// window and persists it on improvement.
func (s *Service) CalibrateGlobal(ctx context.Context, now time.Time) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "calibrate.global")
	defer span.End()

	from := now.UTC().AddDate(0, 0, -s.windowDays)
	rows, err := s.history.ListLabeled(ctx, from, now.UTC())
	if err != nil {
		return Result{}, fmt.Errorf("load history: %w", err)
	}

	best, res, err := s.calibrator.Calibrate(ctx, rows, s.weights.Global())
	if err != nil {
		return res, err
	}
	s.weights.SetGlobal(best)
	if err := s.weights.SaveGlobal(); err != nil {
		return res, fmt.Errorf("save global weights: %w", err)
	}
	log.Printf("calibrate: global weights updated, corr %.4f -> %.4f over %d samples",
		res.BaselineCorrelation, res.BestCorrelation, res.Samples)
	return res, nil
}

// CalibratePlayer refits one player's effective vector and stores the result
// as per-player overrides layered on the global defaults.
func (s *Service) CalibratePlayer(ctx context.Context, playerID string, now time.Time) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "calibrate.player")
	defer span.End()

	from := now.UTC().AddDate(0, 0, -s.windowDays)
	rows, err := s.history.ListLabeledForPlayer(ctx, playerID, from, now.UTC())
	if err != nil {
		return Result{}, fmt.Errorf("load history for %s: %w", playerID, err)
	}

	best, res, err := s.calibrator.Calibrate(ctx, rows, s.weights.Weights(playerID))
	if err != nil {
		return res, err
	}
	if err := s.weights.SetPlayerWeights(playerID, best.Map()); err != nil {
		return res, fmt.Errorf("store weights for %s: %w", playerID, err)
	}
	if err := s.weights.SavePlayers(); err != nil {
		return res, fmt.Errorf("save player weights: %w", err)
	}
	log.Printf("calibrate: %s weights updated, corr %.4f -> %.4f over %d samples",
		playerID, res.BaselineCorrelation, res.BestCorrelation, res.Samples)
	return res, nil
}
