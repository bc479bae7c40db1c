package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ot-practice-api/internal/models"
	"github.com/noah-isme/ot-practice-api/pkg/response"
)

type clientService interface {
	List(ctx context.Context, filter models.ClientFilter) ([]models.Client, *models.Pagination, error)
	Get(ctx context.Context, userID, id string) (*models.Client, error)
	Create(ctx context.Context, userID string, req models.ClientRequest) (*models.Client, error)
	Update(ctx context.Context, userID, id string, req models.ClientRequest) (*models.Client, error)
	Delete(ctx context.Context, userID, id string) error
}

type clientEvaluationLister interface {
	ListByClient(ctx context.Context, userID, clientID string) ([]models.Evaluation, error)
}

type clientAssessmentLister interface {
	List(ctx context.Context, filter models.AssessmentFilter) ([]models.AssessmentWithClient, *models.Pagination, error)
}

// ClientHandler exposes client endpoints.
type ClientHandler struct {
	service     clientService
	evaluations clientEvaluationLister
	assessments clientAssessmentLister
}

// NewClientHandler constructs a ClientHandler.
func NewClientHandler(service clientService, evaluations clientEvaluationLister, assessments clientAssessmentLister) *ClientHandler {
	return &ClientHandler{service: service, evaluations: evaluations, assessments: assessments}
}

// List godoc
// @Summary List clients
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name filter"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	page, size := pageParams(c)
	clients, pagination, err := h.service.List(c.Request.Context(), models.ClientFilter{
		UserID:   userID,
		Search:   c.Query("search"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, clients, pagination)
}

// Create godoc
// @Summary Create client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ClientRequest true "Client payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req models.ClientRequest
	if !bindJSON(c, &req, "invalid client payload") {
		return
	}
	client, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, client)
}

// Get godoc
// @Summary Get client
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	client, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, client, nil)
}

// Update godoc
// @Summary Update client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param payload body models.ClientRequest true "Client payload"
// @Success 200 {object} response.Envelope
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req models.ClientRequest
	if !bindJSON(c, &req, "invalid client payload") {
		return
	}
	client, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, client, nil)
}

// Delete godoc
// @Summary Delete client
// @Tags Clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 204
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
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

// Evaluations godoc
// @Summary List a client's evaluations
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Router /clients/{id}/evaluations [get]
func (h *ClientHandler) Evaluations(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	evaluations, err := h.evaluations.ListByClient(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluations, nil)
}

// Assessments godoc
// @Summary List a client's SPM-2 assessments
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Router /clients/{id}/assessments [get]
func (h *ClientHandler) Assessments(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	clientID := c.Param("id")
	if _, err := h.service.Get(c.Request.Context(), userID, clientID); err != nil {
		response.Error(c, err)
		return
	}
	page, size := pageParams(c)
	items, pagination, err := h.assessments.List(c.Request.Context(), models.AssessmentFilter{UserID: userID, ClientID: clientID, Page: page, PageSize: size})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("pageSize"))
	return page, size
}
