package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ot-practice-api/internal/models"
	"github.com/noah-isme/ot-practice-api/pkg/response"
)

type draftService interface {
	Get(ctx context.Context, userID, assessmentID string) (*models.DraftView, error)
	Begin(ctx context.Context, userID, assessmentID string) (*models.DraftView, error)
	Set(ctx context.Context, userID, assessmentID, questionID string, req models.SetDraftResponseRequest) (*models.DraftView, error)
	Cancel(ctx context.Context, userID, assessmentID string) (*models.DraftView, error)
	Commit(ctx context.Context, userID, assessmentID string) (*models.DraftView, error)
}

// DraftHandler exposes the server-side edit session of an assessment.
type DraftHandler struct {
	service draftService
}

// NewDraftHandler constructs a DraftHandler.
func NewDraftHandler(service draftService) *DraftHandler {
	return &DraftHandler{service: service}
}

// Get godoc
// @Summary Current edit session
// @Tags Drafts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id}/draft [get]
func (h *DraftHandler) Get(c *gin.Context) {
	h.respond(c, h.service.Get)
}

// Begin godoc
// @Summary Begin editing responses
// @Tags Drafts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assessments/{id}/draft [post]
func (h *DraftHandler) Begin(c *gin.Context) {
	h.respond(c, h.service.Begin)
}

// Cancel godoc
// @Summary Discard the edit buffer
// @Tags Drafts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id}/draft [delete]
func (h *DraftHandler) Cancel(c *gin.Context) {
	h.respond(c, h.service.Cancel)
}

// Commit godoc
// @Summary Save the edit buffer
// @Tags Drafts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id}/draft/commit [post]
func (h *DraftHandler) Commit(c *gin.Context) {
	h.respond(c, h.service.Commit)
}

// SetResponse godoc
// @Summary Set one draft answer
// @Tags Drafts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Param questionId path string true "Question ID"
// @Param payload body models.SetDraftResponseRequest true "Answer"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id}/draft/responses/{questionId} [put]
func (h *DraftHandler) SetResponse(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req models.SetDraftResponseRequest
	if !bindJSON(c, &req, "invalid draft response payload") {
		return
	}
	view, err := h.service.Set(c.Request.Context(), userID, c.Param("id"), c.Param("questionId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

func (h *DraftHandler) respond(c *gin.Context, op func(ctx context.Context, userID, assessmentID string) (*models.DraftView, error)) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	view, err := op(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
