package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ot-practice-api/internal/catalog"
	"github.com/noah-isme/ot-practice-api/internal/editsession"
	"github.com/noah-isme/ot-practice-api/internal/scoring"
	appErrors "github.com/noah-isme/ot-practice-api/pkg/errors"
	"github.com/noah-isme/ot-practice-api/pkg/export"
)

// ReportFormat enumerates export formats.
type ReportFormat string

const (
	ReportFormatPDF ReportFormat = "pdf"
	ReportFormatCSV ReportFormat = "csv"
)

var scoreHeaders = []string{"Section", "Raw Score", "T-Score", "Category", "Answered"}

type scoreProvider interface {
	Scores(ctx context.Context, userID, assessmentID string, source editsession.Source) (*AssessmentScores, error)
}

type takeawayProvider interface {
	Takeaways(ctx context.Context, userID, assessmentID, mode string, source editsession.Source) (*AssessmentTakeaways, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	RenderReport(report export.Report) ([]byte, error)
	RenderForm(form export.Form) ([]byte, error)
}

// ExportResult is a rendered document ready to be sent as an attachment.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders score reports and printable forms.
type ExportService struct {
	scores    scoreProvider
	takeaways takeawayProvider
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers use the defaults.
func NewExportService(scores scoreProvider, takeaways takeawayProvider, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{scores: scores, takeaways: takeaways, csv: csv, pdf: pdf, logger: logger}
}

// AssessmentReport renders the score table, and for PDF the template takeaways.
func (s *ExportService) AssessmentReport(ctx context.Context, userID, assessmentID string, format ReportFormat, source editsession.Source) (*ExportResult, error) {
	if format == "" {
		format = ReportFormatPDF
	}
	if format != ReportFormatPDF && format != ReportFormatCSV {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}

	scores, err := s.scores.Scores(ctx, userID, assessmentID, source)
	if err != nil {
		return nil, err
	}
	dataset := scoreDataset(scores.Report)
	base := fmt.Sprintf("spm2-%s", assessmentID)

	if format == ReportFormatCSV {
		body, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Filename: base + ".csv", ContentType: "text/csv", Body: body}, nil
	}

	takeaways, err := s.takeaways.Takeaways(ctx, userID, assessmentID, TakeawayModeTemplate, source)
	if err != nil {
		return nil, err
	}
	summary := export.Dataset{Headers: []string{"Section", "Takeaway"}}
	for _, t := range takeaways.Sections {
		summary.Rows = append(summary.Rows, map[string]string{"Section": t.Title, "Takeaway": t.Text})
	}

	report := export.Report{
		Title: catalog.SPM2Home().Name(),
		Meta: []string{
			"Client: " + scores.ClientName,
			"Responses: " + string(scores.Source),
			"Generated: " + time.Now().UTC().Format(time.RFC1123),
		},
		Tables: []export.Table{
			{Caption: "Scores", Dataset: dataset},
			{Caption: "Takeaways", Dataset: summary},
		},
	}
	if !scores.Complete {
		report.Notes = "Some questions are unanswered; unanswered items contribute zero to raw scores."
	}
	body, err := s.pdf.RenderReport(report)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	s.logger.Debug("assessment report rendered", zap.String("assessment_id", assessmentID), zap.Int("bytes", len(body)))
	return &ExportResult{Filename: base + ".pdf", ContentType: "application/pdf", Body: body}, nil
}

// ObservationForm renders a blank printable observation form for a template.
func (s *ExportService) ObservationForm(templateID string) (*ExportResult, error) {
	template, err := ObservationTemplate(templateID)
	if err != nil {
		return nil, err
	}
	form := export.Form{Title: template.Name(), Subtitle: "Client: ____________________    Date: ____________"}
	for _, section := range template.Sections() {
		fs := export.FormSection{Title: section.Title}
		for _, q := range section.Questions {
			fs.Items = append(fs.Items, export.FormItem{Text: q.Text, Options: q.Options})
		}
		form.Sections = append(form.Sections, fs)
	}
	body, err := s.pdf.RenderForm(form)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render form")
	}
	return &ExportResult{Filename: templateID + ".pdf", ContentType: "application/pdf", Body: body}, nil
}

func scoreDataset(report scoring.Report) export.Dataset {
	data := export.Dataset{Headers: scoreHeaders}
	rows := append(append([]scoring.SectionResult(nil), report.Sections...), report.Composite)
	for _, r := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"Section":   r.Title,
			"Raw Score": strconv.Itoa(r.Raw),
			"T-Score":   r.TScore.String(),
			"Category":  r.Category.String(),
			"Answered":  fmt.Sprintf("%d/%d", r.Answered, r.Questions),
		})
	}
	data.Rows = append(data.Rows, map[string]string{"Section": "Total", "Raw Score": strconv.Itoa(report.Total)})
	return data
}

// ParseReportFormat normalises a format query value.
func ParseReportFormat(raw string) ReportFormat {
	return ReportFormat(strings.ToLower(strings.TrimSpace(raw)))
}
