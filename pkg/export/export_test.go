package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Section", "Raw", "T-Score"},
		Rows: []map[string]string{
			{"Section": "Vision (VIS)", "Raw": "30", "T-Score": "72"},
			{"Section": "Sensory Total", "Raw": "75"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Section,Raw,T-Score\nVision (VIS),30,72\nSensory Total,75,\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRenderReport(t *testing.T) {
	out, err := NewPDFExporter().RenderReport(Report{
		Title: "SPM-2 Score Report",
		Meta:  []string{"Client: Ada Lovelace"},
		Tables: []Table{{
			Caption: "Sections",
			Dataset: Dataset{Headers: []string{"Section", "Raw"}, Rows: []map[string]string{{"Section": "Vision", "Raw": "30"}}},
		}},
		Notes: "Observed at home • calm",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter().RenderReport(Report{Title: "empty"})
	assert.Error(t, err)
}

func TestPDFExporterRenderForm(t *testing.T) {
	out, err := NewPDFExporter().RenderForm(Form{
		Title: "ELC Observation of Skills",
		Sections: []FormSection{{
			Title: "Hand Dominance",
			Items: []FormItem{
				{Text: "Preferred hand", Options: []string{"Right", "Left", "Not established"}},
				{Text: "Comments"},
			},
		}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
