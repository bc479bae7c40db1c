package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogHandlerSPM2(t *testing.T) {
	h := NewCatalogHandler()
	c, rec := newTestContext(http.MethodGet, "/catalog/spm2", nil, "user-1")

	h.SPM2(c)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(rec).Data
	assert.Equal(t, "spm2-home-2-5", data["id"])
	sections, ok := data["sections"].([]interface{})
	require.True(t, ok)
	assert.Len(t, sections, 8)
	assert.Len(t, data["scale"], 4)
}

func TestCatalogHandlerObservationTemplate(t *testing.T) {
	h := NewCatalogHandler()

	c, rec := newTestContext(http.MethodGet, "/catalog/observations/elc-observation-of-skills", nil, "user-1")
	c.Params = gin.Params{{Key: "templateId", Value: "elc-observation-of-skills"}}
	h.Observation(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ELC Observation of Skills", decodeEnvelope(rec).Data["name"])

	c, rec = newTestContext(http.MethodGet, "/catalog/observations/spm2-home-2-5", nil, "user-1")
	c.Params = gin.Params{{Key: "templateId", Value: "spm2-home-2-5"}}
	h.Observation(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
