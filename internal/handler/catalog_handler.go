package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ot-practice-api/internal/catalog"
	"github.com/noah-isme/ot-practice-api/internal/service"
	"github.com/noah-isme/ot-practice-api/pkg/response"
)

// CatalogHandler serves the questionnaire and observation catalogs.
type CatalogHandler struct{}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// SPM2 godoc
// @Summary SPM-2 Home Form catalog
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /catalog/spm2 [get]
func (h *CatalogHandler) SPM2(c *gin.Context) {
	response.JSON(c, http.StatusOK, catalog.SPM2Home().View(), nil)
}

// Observation godoc
// @Summary Observation template
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param templateId path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /catalog/observations/{templateId} [get]
func (h *CatalogHandler) Observation(c *gin.Context) {
	template, err := service.ObservationTemplate(c.Param("templateId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, template.View(), nil)
}
