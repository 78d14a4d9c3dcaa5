package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"benchcoach/internal/calibrate"
	"benchcoach/internal/domain"
	"benchcoach/internal/factor"
	"benchcoach/internal/ml/training"
	"benchcoach/internal/weights"
)

type stubScoring struct {
	recs        []domain.Recommendation
	err         error
	scored      bool
	invalidated int
}

func (s *stubScoring) GetRecommendations(_ context.Context, _ time.Time) ([]domain.Recommendation, error) {
	return s.recs, s.err
}

func (s *stubScoring) ScoreDate(_ context.Context, _ time.Time) ([]domain.Recommendation, error) {
	s.scored = true
	return s.recs, s.err
}

func (s *stubScoring) InvalidateDate(_ context.Context, _ time.Time) { s.invalidated++ }

type stubCalibration struct {
	res calibrate.Result
	err error
}

func (s *stubCalibration) CalibrateGlobal(_ context.Context, _ time.Time) (calibrate.Result, error) {
	return s.res, s.err
}

func (s *stubCalibration) CalibratePlayer(_ context.Context, _ string, _ time.Time) (calibrate.Result, error) {
	return s.res, s.err
}

type stubTrainer struct {
	res training.TrainResult
	err error
}

func (s *stubTrainer) TrainAll(_ context.Context, _ time.Time) (training.TrainResult, error) {
	return s.res, s.err
}

func newTestRouter(t *testing.T, scoring *stubScoring, cal CalibrationRunner, tr TrainingRunner) (*gin.Engine, *weights.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	wcfg := weights.Load(t.TempDir())
	h := New(trace.NewNoopTracerProvider().Tracer("test"), scoring, wcfg, cal, tr)
	r := gin.New()
	h.RegisterRoutes(r)
	return r, wcfg
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, &stubScoring{}, nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestGetRecommendations(t *testing.T) {
	scoring := &stubScoring{recs: []domain.Recommendation{{PlayerID: "p1", Recommendation: "Strong Start"}}}
	r, _ := newTestRouter(t, scoring, nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/recommendations?date=2025-06-15", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Strong Start") {
		t.Errorf("expected recommendation in body: %s", w.Body.String())
	}
	if scoring.scored {
		t.Error("plain read should not force a rescore")
	}
}

func TestGetRecommendationsRefresh(t *testing.T) {
	scoring := &stubScoring{}
	r, _ := newTestRouter(t, scoring, nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/recommendations?date=2025-06-15&refresh=true", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !scoring.scored {
		t.Error("refresh=true should force a rescore")
	}
}

func TestGetRecommendationsBadDate(t *testing.T) {
	r, _ := newTestRouter(t, &stubScoring{}, nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/recommendations?date=junk", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestPutGlobalWeight(t *testing.T) {
	scoring := &stubScoring{}
	r, wcfg := newTestRouter(t, scoring, nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/weights/wind", strings.NewReader(`{"weight": 0.25}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := wcfg.Global().Weight(factor.Wind); got != 0.25 {
		t.Fatalf("weight not applied: %v", got)
	}
	if scoring.invalidated == 0 {
		t.Error("weight edit should invalidate the cached slate")
	}
}

func TestPutGlobalWeightRejectsUnknownFactor(t *testing.T) {
	r, _ := newTestRouter(t, &stubScoring{}, nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/weights/made_up", strings.NewReader(`{"weight": 0.25}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestPlayerWeightLifecycle(t *testing.T) {
	r, wcfg := newTestRouter(t, &stubScoring{}, nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/players/p1/weights", strings.NewReader(`{"platoon": 0.3}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("put overrides: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := wcfg.Weights("p1").Weight(factor.Platoon); got != 0.3 {
		t.Fatalf("override not applied: %v", got)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/players/p1/weights", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d", w.Code)
	}
	if got := wcfg.Weights("p1").Weight(factor.Platoon); got == 0.3 {
		t.Fatal("override survived reset")
	}
}

func TestCalibrateUnavailableWithoutHistory(t *testing.T) {
	r, _ := newTestRouter(t, &stubScoring{}, nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/calibrate", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
}

func TestCalibrateRefusalReportsUnchanged(t *testing.T) {
	cal := &stubCalibration{err: calibrate.ErrInsufficientData}
	r, _ := newTestRouter(t, &stubScoring{}, cal, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/calibrate", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "unchanged") {
		t.Errorf("expected unchanged status in body: %s", w.Body.String())
	}
}

func TestTriggerTraining(t *testing.T) {
	tr := &stubTrainer{res: training.TrainResult{Samples: 120, TestCount: 18}}
	r, _ := newTestRouter(t, &stubScoring{}, nil, tr)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/ml/train", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "\"samples\":120") {
		t.Errorf("expected train result in body: %s", w.Body.String())
	}
}
