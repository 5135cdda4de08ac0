// Package report renders slice-discovery runs as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"slicefinder/domain/slicing"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders the run header and a ranked results table
func Markdown(run *slicing.Run) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# Slices %s than overall %s\n\n", direction(run.Comparison), run.MetricKey)
	fmt.Fprintf(&b, "- Run: `%s`\n", run.ID)
	fmt.Fprintf(&b, "- Created: %s\n", run.CreatedAt.UTC().Format(time.RFC3339))
	if !run.InputHash.IsEmpty() {
		fmt.Fprintf(&b, "- Input: `%s`\n", run.InputHash.Short())
	}
	fmt.Fprintf(&b, "- Significant slices: %d\n\n", len(run.Results))

	if len(run.Results) == 0 {
		b.WriteString("No slice differs significantly from the overall baseline.\n")
		return b.Bytes()
	}

	b.WriteString("| Rank | Slice | Examples | Slice metric | Overall | p-value | Effect size |\n")
	b.WriteString("|---:|---|---:|---:|---:|---:|---:|\n")
	for i, r := range run.Results {
		fmt.Fprintf(&b, "| %d | %s | %.0f | %.4f | %.4f | %s | %s |\n",
			i+1, escapeCell(r.SliceKey), r.NumExamples, r.SliceMetric, r.BaseMetric,
			formatPValue(r.PValue), formatEffect(r.EffectSize))
	}
	return b.Bytes()
}

// HTML renders the Markdown report as a complete HTML page
func HTML(run *slicing.Run) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: fmt.Sprintf("Slice report %s", run.ID),
	})
	return markdown.ToHTML(Markdown(run), p, renderer)
}

func direction(c slicing.ComparisonType) string {
	switch c {
	case slicing.Lower:
		return "lower"
	case slicing.Higher:
		return "higher"
	}
	return "different"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func formatPValue(p float64) string {
	if p == 0 {
		return "< 1e-300"
	}
	return fmt.Sprintf("%.3g", p)
}

func formatEffect(d float64) string {
	if math.IsInf(d, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.3f", d)
}
