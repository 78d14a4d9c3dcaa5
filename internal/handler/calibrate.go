package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"benchcoach/internal/calibrate"
)

// Calibrate godoc
// @Summary      Run weight calibration
// @Description  Refits the global weights (or one player's) against realized outcomes; prior weights survive any failure
// @Tags         calibration
// @Produce      json
// @Param        player  query  string  false  "Player ID for a per-player calibration"
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/calibrate [post]
func (h *Handler) Calibrate(c *gin.Context) {
	if h.calibration == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "calibration unavailable without a history store"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.calibrate")
	defer span.End()

	playerID := c.Query("player")
	span.SetAttributes(attribute.String("player_id", playerID))

	var res calibrate.Result
	var err error
	if playerID == "" {
		res, err = h.calibration.CalibrateGlobal(ctx, time.Now())
	} else {
		res, err = h.calibration.CalibratePlayer(ctx, playerID, time.Now())
	}

	switch {
	case errors.Is(err, calibrate.ErrInsufficientData), errors.Is(err, calibrate.ErrNoImprovement):
		// Refusals keep the incumbent weights; tell the caller why.
		c.JSON(http.StatusConflict, gin.H{"status": "unchanged", "reason": err.Error(), "result": res})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "updated", "result": res})
	}
}

// TriggerTraining godoc
// @Summary      Trigger ensemble model training
// @Description  Runs an immediate training cycle over labeled history and swaps in the new artifact set
// @Tags         ml
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/ml/train [post]
func (h *Handler) TriggerTraining(c *gin.Context) {
	if h.trainer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "training unavailable without a history store"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trigger-training")
	defer span.End()

	result, err := h.trainer.TrainAll(ctx, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "result": result})
}
