package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetRecommendations godoc
// @Summary      Get sit/start recommendations for a date
// @Description  Returns the scored slate with per-factor breakdowns and ensemble predictions
// @Tags         recommendations
// @Produce      json
// @Param        date     query  string  false  "Slate date (YYYY-MM-DD), defaults to today"
// @Param        refresh  query  bool    false  "Force a rescore instead of serving the cache"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/recommendations [get]
func (h *Handler) GetRecommendations(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-recommendations")
	defer span.End()

	date, ok := dateParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
		return
	}
	span.SetAttributes(attribute.String("date", date.Format("2006-01-02")))

	var err error
	var recs interface{}
	if c.Query("refresh") == "true" {
		recs, err = h.scoring.ScoreDate(ctx, date)
	} else {
		recs, err = h.scoring.GetRecommendations(ctx, date)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":            date.Format("2006-01-02"),
		"recommendations": recs,
	})
}
