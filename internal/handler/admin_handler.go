package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ot-practice-api/internal/models"
	"github.com/noah-isme/ot-practice-api/pkg/response"
)

type metricsSnapshotter interface {
	Snapshot() models.SystemMetrics
}

type narrativePurger interface {
	PurgeNarratives(ctx context.Context) error
}

// AdminHandler exposes operator-only endpoints.
type AdminHandler struct {
	metrics    metricsSnapshotter
	narratives narrativePurger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(metrics metricsSnapshotter, narratives narrativePurger) *AdminHandler {
	return &AdminHandler{metrics: metrics, narratives: narratives}
}

// Snapshot godoc
// @Summary Process metrics snapshot
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/metrics [get]
func (h *AdminHandler) Snapshot(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}

// PurgeNarratives godoc
// @Summary Drop cached narrative takeaways
// @Tags Admin
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /admin/narratives/cache [delete]
func (h *AdminHandler) PurgeNarratives(c *gin.Context) {
	if err := h.narratives.PurgeNarratives(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
