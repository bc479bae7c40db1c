package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth   = 190.0
	lineHeight  = 6.0
	checkboxMM  = 3.5
	optionWidth = 45.0
)

// Report is a titled PDF document with a metadata block, one or more tables and free-text notes.
type Report struct {
	Title  string
	Meta   []string
	Tables []Table
	Notes  string
}

// Table is a captioned dataset rendered as a bordered grid.
type Table struct {
	Caption string
	Dataset
}

// Form is a printable blank form: grouped prompts followed by tick boxes for each option.
type Form struct {
	Title    string
	Subtitle string
	Sections []FormSection
}

// FormSection groups form prompts under a heading.
type FormSection struct {
	Title string
	Items []FormItem
}

// FormItem is a single prompt and its answer options.
type FormItem struct {
	Text    string
	Options []string
}

// PDFExporter renders reports and blank forms with gofpdf.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderReport creates a PDF score report.
func (e *PDFExporter) RenderReport(report Report) ([]byte, error) {
	if len(report.Tables) == 0 {
		return nil, fmt.Errorf("pdf report requires at least one table")
	}
	pdf := newDocument(report.Title)

	pdf.SetFont("Arial", "", 10)
	for _, line := range report.Meta {
		pdf.CellFormat(0, lineHeight, tr(pdf, line), "", 1, "L", false, 0, "")
	}
	if len(report.Meta) > 0 {
		pdf.Ln(4)
	}

	for _, table := range report.Tables {
		if len(table.Headers) == 0 {
			return nil, fmt.Errorf("table %q has no headers", table.Caption)
		}
		writeTable(pdf, table)
		pdf.Ln(4)
	}

	if report.Notes != "" {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, tr(pdf, report.Notes), "", "L", false)
	}

	return output(pdf)
}

// RenderForm creates a printable blank form with one tick box per option.
func (e *PDFExporter) RenderForm(form Form) ([]byte, error) {
	if len(form.Sections) == 0 {
		return nil, fmt.Errorf("pdf form requires at least one section")
	}
	pdf := newDocument(form.Title)
	if form.Subtitle != "" {
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, tr(pdf, form.Subtitle), "", "C", false)
		pdf.Ln(3)
	}
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 8, "Name: ______________________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 8, "Date: ____________________", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	for _, section := range form.Sections {
		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(0, 8, tr(pdf, section.Title), "", 1, "L", true, 0, "")
		for _, item := range section.Items {
			pdf.SetFont("Arial", "", 9)
			pdf.MultiCell(0, 5, tr(pdf, item.Text), "", "L", false)
			writeOptions(pdf, item.Options)
		}
		pdf.Ln(2)
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, "Notes", "", 1, "L", false, 0, "")
	for i := 0; i < 4; i++ {
		pdf.CellFormat(0, 8, "", "B", 1, "L", false, 0, "")
	}

	return output(pdf)
}

func newDocument(title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(pdf, title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}
	return pdf
}

func writeTable(pdf *gofpdf.Fpdf, table Table) {
	if table.Caption != "" {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, tr(pdf, table.Caption), "", 1, "L", false, 0, "")
	}
	colWidth := pageWidth / float64(len(table.Headers))

	pdf.SetFont("Arial", "B", 9)
	for _, header := range table.Headers {
		pdf.CellFormat(colWidth, 8, tr(pdf, header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range table.Rows {
		for _, value := range table.record(row) {
			pdf.CellFormat(colWidth, 7, tr(pdf, value), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func writeOptions(pdf *gofpdf.Fpdf, options []string) {
	if len(options) == 0 {
		pdf.CellFormat(0, 7, "____________________________________________", "", 1, "L", false, 0, "")
		return
	}
	x := pdf.GetX()
	for i, option := range options {
		if i > 0 && i%4 == 0 {
			pdf.Ln(lineHeight)
			pdf.SetX(x)
		}
		left, top := pdf.GetXY()
		pdf.Rect(left+1, top+1.2, checkboxMM, checkboxMM, "D")
		pdf.SetX(left + checkboxMM + 2.5)
		pdf.CellFormat(optionWidth-checkboxMM-2.5, lineHeight, tr(pdf, option), "", 0, "L", false, 0, "")
	}
	pdf.Ln(lineHeight + 1)
}

// tr converts UTF-8 text (bullets, curly quotes) into the cp1252 range used by the core fonts.
func tr(pdf *gofpdf.Fpdf, s string) string {
	return pdf.UnicodeTranslatorFromDescriptor("")(s)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
