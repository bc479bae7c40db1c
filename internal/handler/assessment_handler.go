package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ot-practice-api/internal/editsession"
	"github.com/noah-isme/ot-practice-api/internal/middleware"
	"github.com/noah-isme/ot-practice-api/internal/models"
	"github.com/noah-isme/ot-practice-api/internal/service"
	"github.com/noah-isme/ot-practice-api/internal/takeaway"
	appErrors "github.com/noah-isme/ot-practice-api/pkg/errors"
	"github.com/noah-isme/ot-practice-api/pkg/response"
)

type assessmentService interface {
	Create(ctx context.Context, userID string, req models.CreateAssessmentRequest) (*models.AssessmentWithClient, error)
	List(ctx context.Context, filter models.AssessmentFilter) ([]models.AssessmentWithClient, *models.Pagination, error)
	Get(ctx context.Context, userID, id string) (*models.AssessmentWithClient, error)
	Update(ctx context.Context, userID, id string, req models.UpdateAssessmentRequest) (*models.AssessmentWithClient, error)
	Delete(ctx context.Context, userID, id string) error
}

type scoreService interface {
	Scores(ctx context.Context, userID, assessmentID string, source editsession.Source) (*service.AssessmentScores, error)
}

type takeawayService interface {
	Takeaways(ctx context.Context, userID, assessmentID, mode string, source editsession.Source) (*service.AssessmentTakeaways, error)
}

type reportService interface {
	AssessmentReport(ctx context.Context, userID, assessmentID string, format service.ReportFormat, source editsession.Source) (*service.ExportResult, error)
}

// AssessmentHandler exposes SPM-2 assessment endpoints.
type AssessmentHandler struct {
	service   assessmentService
	scores    scoreService
	takeaways takeawayService
	reports   reportService
}

// NewAssessmentHandler constructs an AssessmentHandler.
func NewAssessmentHandler(svc assessmentService, scores scoreService, takeaways takeawayService, reports reportService) *AssessmentHandler {
	return &AssessmentHandler{service: svc, scores: scores, takeaways: takeaways, reports: reports}
}

// Create godoc
// @Summary Create SPM-2 assessment
// @Tags Assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateAssessmentRequest true "Assessment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assessments [post]
func (h *AssessmentHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req models.CreateAssessmentRequest
	if !bindJSON(c, &req, "invalid assessment payload") {
		return
	}
	assessment, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assessment)
}

// List godoc
// @Summary List SPM-2 assessments
// @Tags Assessments
// @Produce json
// @Security BearerAuth
// @Param clientId query string false "Client filter"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /assessments [get]
func (h *AssessmentHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	page, size := pageParams(c)
	items, pagination, err := h.service.List(c.Request.Context(), models.AssessmentFilter{
		UserID:   userID,
		ClientID: c.Query("clientId"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get SPM-2 assessment
// @Tags Assessments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assessments/{id} [get]
func (h *AssessmentHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	assessment, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assessment, nil)
}

// Update godoc
// @Summary Patch responses or notes
// @Tags Assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Param payload body models.UpdateAssessmentRequest true "Patch payload"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id} [patch]
func (h *AssessmentHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req models.UpdateAssessmentRequest
	if !bindJSON(c, &req, "invalid assessment payload") {
		return
	}
	assessment, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assessment, nil)
}

// Delete godoc
// @Summary Delete SPM-2 assessment
// @Tags Assessments
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 204
// @Router /assessments/{id} [delete]
func (h *AssessmentHandler) Delete(c *gin.Context) {
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

// Scores godoc
// @Summary Section, composite and total scores
// @Tags Assessments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Param source query string false "persisted or draft"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id}/scores [get]
func (h *AssessmentHandler) Scores(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	source, ok := sourceParam(c)
	if !ok {
		return
	}
	scores, err := h.scores.Scores(c.Request.Context(), userID, c.Param("id"), source)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scores, nil)
}

// Takeaways godoc
// @Summary Per-section takeaways
// @Tags Assessments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Param mode query string false "template or narrative"
// @Param source query string false "persisted or draft"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id}/takeaways [get]
func (h *AssessmentHandler) Takeaways(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	source, ok := sourceParam(c)
	if !ok {
		return
	}
	result, err := h.takeaways.Takeaways(c.Request.Context(), userID, c.Param("id"), c.Query("mode"), source)
	if err != nil {
		response.Error(c, err)
		return
	}
	cached := false
	for _, section := range result.Sections {
		if section.Source == takeaway.SourceCache {
			cached = true
			break
		}
	}
	middleware.SetCacheHit(c, cached)
	middleware.SetMeta(c, "mode", result.Mode)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Report godoc
// @Summary Export score report
// @Tags Assessments
// @Produce application/pdf
// @Produce text/csv
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Param format query string false "pdf or csv"
// @Param source query string false "persisted or draft"
// @Success 200 {file} file
// @Router /assessments/{id}/report [get]
func (h *AssessmentHandler) Report(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	source, ok := sourceParam(c)
	if !ok {
		return
	}
	result, err := h.reports.AssessmentReport(c.Request.Context(), userID, c.Param("id"), service.ParseReportFormat(c.Query("format")), source)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}

func sourceParam(c *gin.Context) (editsession.Source, bool) {
	source, err := editsession.ParseSource(c.Query("source"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid source"))
		return "", false
	}
	return source, true
}
