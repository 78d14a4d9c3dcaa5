package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"benchcoach/internal/calibrate"
	"benchcoach/internal/domain"
	"benchcoach/internal/ml/training"
	"benchcoach/internal/weights"
)

type RecommendationService interface {
	GetRecommendations(ctx context.Context, date time.Time) ([]domain.Recommendation, error)
	ScoreDate(ctx context.Context, date time.Time) ([]domain.Recommendation, error)
	InvalidateDate(ctx context.Context, date time.Time)
}

type CalibrationRunner interface {
	CalibrateGlobal(ctx context.Context, now time.Time) (calibrate.Result, error)
	CalibratePlayer(ctx context.Context, playerID string, now time.Time) (calibrate.Result, error)
}

type TrainingRunner interface {
	TrainAll(ctx context.Context, now time.Time) (training.TrainResult, error)
}

type Handler struct {
	tracer      trace.Tracer
	scoring     RecommendationService
	weights     *weights.Config
	calibration CalibrationRunner
	trainer     TrainingRunner
}

func New(
	tracer trace.Tracer,
	scoring RecommendationService,
	weightConfig *weights.Config,
	calibration CalibrationRunner,
	trainer TrainingRunner,
) *Handler {
	return &Handler{
		tracer:      tracer,
		scoring:     scoring,
		weights:     weightConfig,
		calibration: calibration,
		trainer:     trainer,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/recommendations", h.GetRecommendations)
	r.GET("/api/weights", h.GetWeights)
	r.PUT("/api/weights/:factor", h.PutGlobalWeight)
	r.GET("/api/players/:id/weights", h.GetPlayerWeights)
	r.PUT("/api/players/:id/weights", h.PutPlayerWeights)
	r.DELETE("/api/players/:id/weights", h.ResetPlayerWeights)
	r.POST("/api/calibrate", h.Calibrate)
	r.POST("/api/ml/train", h.TriggerTraining)
}

// dateParam parses the optional date query, defaulting to today UTC.
func dateParam(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return domain.DateOnly(time.Now()), true
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
