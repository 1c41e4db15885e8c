package render

import (
	"fmt"
	"strings"

	"datastory/domain/story"
	"datastory/domain/table"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown assembles the narrative sections into a markdown document
func Markdown(narrative *story.Narrative) string {
	var sb strings.Builder

	sb.WriteString("## Summary\n\n")
	sb.WriteString(narrative.Summary)
	sb.WriteString("\n\n## Key findings\n\n")
	for i, finding := range narrative.KeyFindings {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, finding)
	}
	sb.WriteString("\n## Action items\n\n")
	for _, item := range narrative.ActionItems {
		fmt.Fprintf(&sb, "- %s\n", item)
	}
	return sb.String()
}

// HTML renders the narrative to an HTML fragment for the UI collaborator
func HTML(narrative *story.Narrative) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(Markdown(narrative)), p, renderer))
}

// SummaryTable builds a chart-ready stat row per column: header row
// first, then one row per column with its kind and headline statistics.
func SummaryTable(t *table.TypedTable) [][]string {
	rows := [][]string{{"column", "kind", "non_null", "detail"}}
	for i := range t.Columns {
		c := &t.Columns[i]
		rows = append(rows, []string{
			c.Name,
			string(c.Kind),
			fmt.Sprintf("%d", c.NonNull),
			columnDetail(c),
		})
	}
	return rows
}

func columnDetail(c *table.TypedColumn) string {
	switch {
	case c.Stats.Numeric != nil:
		s := c.Stats.Numeric
		return fmt.Sprintf("min=%s mean=%s max=%s std=%s",
			FormatNumber(s.Min), FormatNumber(s.Mean), FormatNumber(s.Max), FormatNumber(s.StdDev))
	case c.Stats.Categorical != nil:
		s := c.Stats.Categorical
		tops := make([]string, 0, len(s.TopValues))
		for _, tv := range s.TopValues {
			tops = append(tops, fmt.Sprintf("%s(%d)", tv.Value, tv.Count))
		}
		return fmt.Sprintf("cardinality=%d top=%s", s.Cardinality, strings.Join(tops, ","))
	case c.Stats.Datetime != nil:
		s := c.Stats.Datetime
		return fmt.Sprintf("%s .. %s (%s)",
			s.Min.Format("2006-01-02"), s.Max.Format("2006-01-02"), s.Granularity)
	default:
		return ""
	}
}

// FormatNumber renders a float compactly with K/M suffixes for large
// magnitudes.
func FormatNumber(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.2fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.2fK", v/1_000)
	case abs < 0.01 && v != 0:
		return fmt.Sprintf("%.6f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
