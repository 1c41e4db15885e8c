package render

import (
	"strings"
	"testing"

	"datastory/adapters/ingest"
	"datastory/domain/story"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func narrative() *story.Narrative {
	return &story.Narrative{
		Summary:     "Sales grew steadily through Q1.",
		KeyFindings: []string{"Growth of 12% month over month", "Electronics leads every region"},
		ActionItems: []string{"Increase electronics inventory"},
	}
}

func TestMarkdownSectionsInOrder(t *testing.T) {
	md := Markdown(narrative())

	summaryIdx := strings.Index(md, "## Summary")
	findingsIdx := strings.Index(md, "## Key findings")
	actionsIdx := strings.Index(md, "## Action items")

	assert.True(t, summaryIdx >= 0 && findingsIdx > summaryIdx && actionsIdx > findingsIdx)
	assert.Contains(t, md, "1. Growth of 12% month over month")
	assert.Contains(t, md, "- Increase electronics inventory")
}

func TestHTMLRendering(t *testing.T) {
	out := HTML(narrative())
	assert.Contains(t, out, "<h2")
	assert.Contains(t, out, "Sales grew steadily")
	assert.Contains(t, out, "<li>")
}

func TestSummaryTable(t *testing.T) {
	typed, err := ingest.NewLoader(ingest.DefaultLoaderConfig()).Load(
		[]byte("date,region,sales\n2025-01-01,Seoul,100\n2025-01-02,Busan,200\n2025-01-03,Seoul,300\n"))
	require.NoError(t, err)

	rows := SummaryTable(typed)
	require.Len(t, rows, 4, "header plus one row per column")
	assert.Equal(t, []string{"column", "kind", "non_null", "detail"}, rows[0])
	assert.Equal(t, "sales", rows[3][0])
	assert.Equal(t, "numeric", rows[3][1])
	assert.Contains(t, rows[3][3], "mean=")
	assert.Contains(t, rows[1][3], "2025-01-01")
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1.50K", FormatNumber(1500))
	assert.Equal(t, "2.25M", FormatNumber(2_250_000))
	assert.Equal(t, "12.00", FormatNumber(12))
	assert.Equal(t, "0.000500", FormatNumber(0.0005))
	assert.Equal(t, "-3.40K", FormatNumber(-3400))
}
