package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"

	"benchcoach/internal/domain"
	"benchcoach/internal/factor"
	"benchcoach/internal/ml/ensemble"
	"benchcoach/internal/scoring"
	"benchcoach/internal/weights"
)

type stubSlates struct {
	slate *domain.Slate
	err   error
}

func (s *stubSlates) FetchSlate(_ context.Context, _ time.Time) (*domain.Slate, error) {
	return s.slate, s.err
}

type capturingHistory struct {
	rows []domain.HistoryRow
	err  error
}

func (h *capturingHistory) UpsertScores(_ context.Context, rows []domain.HistoryRow) error {
	h.rows = append(h.rows, rows...)
	return h.err
}

func testSlate(t *testing.T) *domain.Slate {
	t.Helper()
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	return &domain.Slate{
		Date: date,
		Roster: []domain.Player{
			{ID: "p1", Name: "Lead Off", Team: "BOS", Position: "SS", Bats: "R"},
			{ID: "p2", Name: "Clean Up", Team: "SEA", Position: "OF", Bats: "L"},
		},
		Games: map[string]domain.Game{
			"BOS": {
				GameDate: date, HomeTeam: "BOS", AwayTeam: "NYY",
				Venue: "Fenway Park", StartHour: 13,
				AwayPitcher: domain.Pitcher{Name: "Ace Righty", Throws: "R"},
			},
		},
		Weather: map[string]domain.Weather{
			"Fenway Park": {WindSpeedKPH: 20, WindDirectionDeg: 45, TemperatureC: 27},
		},
		Odds: map[string]domain.Odds{
			"BOS": {OverUnder: 10.5, MoneyLine: -160},
		},
	}
}

func newTestService(t *testing.T, slates SlateProvider, history HistoryStore) *ScoringService {
	t.Helper()
	wcfg := weights.Load(t.TempDir())
	predictor := ensemble.NewPredictor(t.TempDir())
	predictor.Load()
	return NewScoringService(
		trace.NewNoopTracerProvider().Tracer("test"),
		factor.Default(),
		wcfg,
		scoring.NewEngine(),
		predictor,
		slates,
		history,
		nil,
	)
}

func TestScoreDateCoversWholeRoster(t *testing.T) {
	history := &capturingHistory{}
	svc := newTestService(t, &stubSlates{slate: testSlate(t)}, history)

	recs, err := svc.ScoreDate(context.Background(), time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("score date: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}

	for _, rec := range recs {
		if len(rec.Factors) != len(factor.Catalog) {
			t.Fatalf("%s: expected %d factor lines, got %d", rec.PlayerID, len(factor.Catalog), len(rec.Factors))
		}
		if rec.Recommendation == "" {
			t.Fatalf("%s: empty tier", rec.PlayerID)
		}
		if rec.Ensemble == nil {
			t.Fatalf("%s: missing ensemble prediction", rec.PlayerID)
		}
		// Untrained predictor: components collapse to the weighted sum.
		if rec.Ensemble.PredEnsemble != rec.Ensemble.PredWeightedSum {
			t.Fatalf("%s: untrained ensemble should equal weighted sum", rec.PlayerID)
		}
		if rec.Ensemble.Confidence != 1.0 {
			t.Fatalf("%s: untrained confidence should be 1.0, got %v", rec.PlayerID, rec.Ensemble.Confidence)
		}
	}

	// p2 has no scheduled game; it still gets scored, all neutral.
	var p2 domain.Recommendation
	for _, rec := range recs {
		if rec.PlayerID == "p2" {
			p2 = rec
		}
	}
	if p2.FinalScore != 0 {
		t.Fatalf("player without a game should score 0.0, got %v", p2.FinalScore)
	}
	if p2.Recommendation != "Neutral" {
		t.Fatalf("player without a game should be Neutral, got %s", p2.Recommendation)
	}

	if len(history.rows) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(history.rows))
	}
}

func TestScoreDateSurvivesHistoryFailure(t *testing.T) {
	history := &capturingHistory{err: errors.New("db down")}
	svc := newTestService(t, &stubSlates{slate: testSlate(t)}, history)

	recs, err := svc.ScoreDate(context.Background(), time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("history failure must not fail the run: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
}

func TestScoreDatePropagatesSlateFailure(t *testing.T) {
	svc := newTestService(t, &stubSlates{err: errors.New("feed offline")}, nil)
	if _, err := svc.ScoreDate(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error when the slate cannot be fetched")
	}
}
