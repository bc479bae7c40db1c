package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ot-practice-api/internal/catalog"
	"github.com/noah-isme/ot-practice-api/internal/models"
	"github.com/noah-isme/ot-practice-api/internal/service"
	"github.com/noah-isme/ot-practice-api/pkg/response"
)

type observationService interface {
	Create(ctx context.Context, userID string, req models.CreateObservationRequest) (*models.Observation, error)
	Get(ctx context.Context, userID, id string) (*models.Observation, error)
	Update(ctx context.Context, userID, id string, req models.UpdateObservationRequest) (*models.Observation, error)
	Delete(ctx context.Context, userID, id string) error
	Summary(ctx context.Context, userID, id string) (string, error)
}

type formService interface {
	ObservationForm(templateID string) (*service.ExportResult, error)
}

// ObservationHandler exposes observation endpoints and printable forms.
type ObservationHandler struct {
	service observationService
	forms   formService
}

// NewObservationHandler constructs an ObservationHandler.
func NewObservationHandler(svc observationService, forms formService) *ObservationHandler {
	return &ObservationHandler{service: svc, forms: forms}
}

// Create godoc
// @Summary Record observation
// @Tags Observations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateObservationRequest true "Observation payload"
// @Success 201 {object} response.Envelope
// @Router /observations [post]
func (h *ObservationHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req models.CreateObservationRequest
	if !bindJSON(c, &req, "invalid observation payload") {
		return
	}
	observation, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, observation)
}

// Get godoc
// @Summary Get observation
// @Tags Observations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Observation ID"
// @Success 200 {object} response.Envelope
// @Router /observations/{id} [get]
func (h *ObservationHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	observation, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, observation, nil)
}

// Update godoc
// @Summary Patch observation
// @Tags Observations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Observation ID"
// @Param payload body models.UpdateObservationRequest true "Patch payload"
// @Success 200 {object} response.Envelope
// @Router /observations/{id} [patch]
func (h *ObservationHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req models.UpdateObservationRequest
	if !bindJSON(c, &req, "invalid observation payload") {
		return
	}
	observation, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, observation, nil)
}

// Delete godoc
// @Summary Delete observation
// @Tags Observations
// @Security BearerAuth
// @Param id path string true "Observation ID"
// @Success 204
// @Router /observations/{id} [delete]
func (h *ObservationHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Summary godoc
// @Summary Plain-text observation summary
// @Tags Observations
// @Produce plain
// @Security BearerAuth
// @Param id path string true "Observation ID"
// @Success 200 {string} string
// @Router /observations/{id}/summary [get]
func (h *ObservationHandler) Summary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, summary)
}

// PrintForm godoc
// @Summary Blank ELC observation form
// @Tags Print-outs
// @Produce application/pdf
// @Security BearerAuth
// @Success 200 {file} file
// @Router /print-outs/elc-observation-form [get]
func (h *ObservationHandler) PrintForm(c *gin.Context) {
	result, err := h.forms.ObservationForm(catalog.ELCObservation().ID())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}
