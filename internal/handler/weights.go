package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"benchcoach/internal/domain"
)

// GetWeights godoc
// @Summary      Get the global factor weights
// @Description  Returns the global weight vector and the players carrying overrides
// @Tags         weights
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/weights [get]
func (h *Handler) GetWeights(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-weights")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{
		"global":                 h.weights.Global().Map(),
		"players_with_overrides": h.weights.PlayersWithOverrides(),
	})
}

type weightEdit struct {
	Weight float64 `json:"weight"`
}

// PutGlobalWeight godoc
// @Summary      Set one global factor weight
// @Description  Replaces a single factor's global weight; unknown factors are rejected
// @Tags         weights
// @Accept       json
// @Produce      json
// @Param        factor  path  string      true  "Factor name (e.g. wind, vegas_odds)"
// @Param        edit    body  weightEdit  true  "New weight, non-negative"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/weights/{factor} [put]
func (h *Handler) PutGlobalWeight(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.put-global-weight")
	defer span.End()

	name := c.Param("factor")
	span.SetAttributes(attribute.String("factor", name))

	var edit weightEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	if err := h.weights.SetGlobalWeight(name, edit.Weight); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.weights.SaveGlobal(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.scoring.InvalidateDate(ctx, domain.DateOnly(time.Now()))

	c.JSON(http.StatusOK, gin.H{"global": h.weights.Global().Map()})
}

// GetPlayerWeights godoc
// @Summary      Get a player's effective weights
// @Description  Returns the per-player overrides merged over the global vector
// @Tags         weights
// @Produce      json
// @Param        id  path  string  true  "Player ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/players/{id}/weights [get]
func (h *Handler) GetPlayerWeights(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-player-weights")
	defer span.End()

	playerID := c.Param("id")
	c.JSON(http.StatusOK, gin.H{
		"player_id": playerID,
		"effective": h.weights.Weights(playerID).Map(),
	})
}

// PutPlayerWeights godoc
// @Summary      Replace a player's weight overrides
// @Description  Stores a sparse override map for one player; unknown factors are rejected
// @Tags         weights
// @Accept       json
// @Produce      json
// @Param        id         path  string              true  "Player ID"
// @Param        overrides  body  map[string]float64  true  "Factor name to weight"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/players/{id}/weights [put]
func (h *Handler) PutPlayerWeights(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.put-player-weights")
	defer span.End()

	playerID := c.Param("id")
	span.SetAttributes(attribute.String("player_id", playerID))

	var overrides map[string]float64
	if err := c.ShouldBindJSON(&overrides); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	if err := h.weights.SetPlayerWeights(playerID, overrides); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.weights.SavePlayers(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.scoring.InvalidateDate(ctx, domain.DateOnly(time.Now()))

	c.JSON(http.StatusOK, gin.H{
		"player_id": playerID,
		"effective": h.weights.Weights(playerID).Map(),
	})
}

// ResetPlayerWeights godoc
// @Summary      Drop a player's weight overrides
// @Description  Reverts the player to the global vector
// @Tags         weights
// @Produce      json
// @Param        id  path  string  true  "Player ID"
// @Success      200  {object}  map[string]string
// @Router       /api/players/{id}/weights [delete]
func (h *Handler) ResetPlayerWeights(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.reset-player-weights")
	defer span.End()

	playerID := c.Param("id")
	h.weights.ResetPlayer(playerID)
	if err := h.weights.SavePlayers(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.scoring.InvalidateDate(ctx, domain.DateOnly(time.Now()))

	c.JSON(http.StatusOK, gin.H{"player_id": playerID, "status": "reset"})
}
