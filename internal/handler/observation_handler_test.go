package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ot-practice-api/internal/models"
	"github.com/noah-isme/ot-practice-api/internal/service"
	appErrors "github.com/noah-isme/ot-practice-api/pkg/errors"
)

type fakeObservationSrv struct {
	lastCreate models.CreateObservationRequest
}

func (f *fakeObservationSrv) Create(_ context.Context, userID string, req models.CreateObservationRequest) (*models.Observation, error) {
	f.lastCreate = req
	return &models.Observation{ID: "o1", UserID: userID, EvaluationID: req.EvaluationID, ObservationType: req.ObservationType, Responses: req.Responses}, nil
}

func (f *fakeObservationSrv) Get(_ context.Context, _, id string) (*models.Observation, error) {
	if id != "o1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "observation not found")
	}
	return &models.Observation{ID: id}, nil
}

func (f *fakeObservationSrv) Update(_ context.Context, _, id string, req models.UpdateObservationRequest) (*models.Observation, error) {
	return &models.Observation{ID: id, Notes: req.Notes}, nil
}

func (f *fakeObservationSrv) Delete(context.Context, string, string) error { return nil }

func (f *fakeObservationSrv) Summary(context.Context, string, string) (string, error) {
	return "ELC Observation of Skills - Ada Lovelace\n", nil
}

type fakeFormSrv struct {
	templateID string
}

func (f *fakeFormSrv) ObservationForm(templateID string) (*service.ExportResult, error) {
	f.templateID = templateID
	return &service.ExportResult{Filename: templateID + ".pdf", ContentType: "application/pdf", Body: []byte("%PDF-1.3")}, nil
}

func TestObservationHandlerCreate(t *testing.T) {
	srv := &fakeObservationSrv{}
	h := NewObservationHandler(srv, &fakeFormSrv{})
	req := models.CreateObservationRequest{
		EvaluationID:    "e1",
		ObservationType: "elc-observation-of-skills",
		Responses:       models.ObservationResponses{"gross-motor-1": "Yes"},
	}
	c, rec := newTestContext(http.MethodPost, "/observations", req, "user-1")

	h.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "elc-observation-of-skills", srv.lastCreate.ObservationType)
	assert.Equal(t, "o1", decodeEnvelope(rec).Data["id"])
}

func TestObservationHandlerGetAndPatch(t *testing.T) {
	h := NewObservationHandler(&fakeObservationSrv{}, &fakeFormSrv{})

	c, rec := newTestContext(http.MethodGet, "/observations/x", nil, "user-1")
	c.Params = gin.Params{{Key: "id", Value: "x"}}
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	notes := "calm today"
	c, rec = newTestContext(http.MethodPatch, "/observations/o1", models.UpdateObservationRequest{Notes: &notes}, "user-1")
	c.Params = gin.Params{{Key: "id", Value: "o1"}}
	h.Update(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, notes, decodeEnvelope(rec).Data["notes"])
}

func TestObservationHandlerSummaryIsPlainText(t *testing.T) {
	h := NewObservationHandler(&fakeObservationSrv{}, &fakeFormSrv{})
	c, rec := newTestContext(http.MethodGet, "/observations/o1/summary", nil, "user-1")
	c.Params = gin.Params{{Key: "id", Value: "o1"}}

	h.Summary(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, "ELC Observation of Skills - Ada Lovelace\n", rec.Body.String())
}

func TestObservationHandlerPrintForm(t *testing.T) {
	forms := &fakeFormSrv{}
	h := NewObservationHandler(&fakeObservationSrv{}, forms)
	c, rec := newTestContext(http.MethodGet, "/print-outs/elc-observation-form", nil, "user-1")

	h.PrintForm(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "elc-observation-of-skills", forms.templateID)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "elc-observation-of-skills.pdf")
}
