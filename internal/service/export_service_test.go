package service

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ot-practice-api/internal/catalog"
	"github.com/noah-isme/ot-practice-api/internal/editsession"
	"github.com/noah-isme/ot-practice-api/internal/models"
	appErrors "github.com/noah-isme/ot-practice-api/pkg/errors"
)

func itoa(i int) string { return strconv.Itoa(i) }

func newExportFixture() *ExportService {
	responses := models.SPMResponses{}
	for i := 1; i <= 10; i++ {
		responses["vis"+itoa(i)] = 3
	}
	drafts, _, _ := newDraftFixture(responses)
	return NewExportService(NewScoreService(drafts), NewTakeawayService(drafts, nil, nil, nil, nil, TakeawayConfig{}), nil, nil, nil)
}

func TestExportAssessmentCSV(t *testing.T) {
	svc := newExportFixture()

	result, err := svc.AssessmentReport(context.Background(), "u1", "a1", ReportFormatCSV, editsession.SourcePersisted)
	require.NoError(t, err)
	assert.Equal(t, "spm2-a1.csv", result.Filename)
	assert.Equal(t, "text/csv", result.ContentType)

	lines := strings.Split(strings.TrimSpace(string(result.Body)), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "Section,Raw Score,T-Score,Category,Answered", lines[0])
	assert.Equal(t, "Vision (VIS),30,72,Severe Difficulties,10/10", lines[2])
	assert.True(t, strings.HasPrefix(lines[9], "Sensory Total,"))
	assert.Equal(t, "Total,30,,,", lines[10])
}

func TestExportAssessmentPDF(t *testing.T) {
	svc := newExportFixture()

	result, err := svc.AssessmentReport(context.Background(), "u1", "a1", "", editsession.SourcePersisted)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Body, []byte("%PDF")))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := newExportFixture()
	_, err := svc.AssessmentReport(context.Background(), "u1", "a1", ParseReportFormat(" XLSX "), editsession.SourcePersisted)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportObservationForm(t *testing.T) {
	svc := newExportFixture()

	result, err := svc.ObservationForm(catalog.ELCObservationID)
	require.NoError(t, err)
	assert.Equal(t, catalog.ELCObservationID+".pdf", result.Filename)
	assert.True(t, bytes.HasPrefix(result.Body, []byte("%PDF")))

	_, err = svc.ObservationForm(catalog.SPM2HomeID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
