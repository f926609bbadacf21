package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/medintel-cli/internal/analysis"
	"github.com/KaramelBytes/medintel-cli/internal/dataset"
	"github.com/KaramelBytes/medintel-cli/internal/insight"
	"github.com/KaramelBytes/medintel-cli/internal/utils"
)

// analysisView is everything the analyze command reports.
type analysisView struct {
	Source   string           `json:"source,omitempty"`
	Summary  string           `json:"ingest_summary,omitempty"`
	Criteria string           `json:"criteria"`
	Records  int              `json:"records"`
	Charts   []insight.Chart  `json:"charts"`
	Analysis *analysis.Result `json:"analysis,omitempty"`
}

func writeView(w io.Writer, v analysisView, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		writeViewText(w, v)
	case "markdown", "md":
		writeViewMarkdown(w, v)
	case "json":
		b, err := utils.PrettyJSON(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
	default:
		return fmt.Errorf("unsupported --format: %s (use text|markdown|json)", format)
	}
	return nil
}

func chartLines(c insight.Chart) []string {
	var out []string
	for _, s := range c.Shares {
		out = append(out, fmt.Sprintf("%s: %d (%.2f%%)", s.Category, s.Count, s.Percent))
	}
	for _, t := range c.Totals {
		out = append(out, fmt.Sprintf("%s: %d", t.Category, t.Sum))
	}
	for _, p := range c.Series {
		out = append(out, fmt.Sprintf("%s: %d", p.Date.Format(dataset.DateLayout), p.Sum))
	}
	return out
}

func writeViewText(w io.Writer, v analysisView) {
	if v.Summary != "" {
		fmt.Fprintf(w, "✓ %s\n", v.Summary)
	}
	fmt.Fprintf(w, "Filters: %s (%d records)\n", v.Criteria, v.Records)
	for _, c := range v.Charts {
		fmt.Fprintf(w, "\n=== %s ===\n", c.Title)
		for _, l := range chartLines(c) {
			fmt.Fprintf(w, "  %s\n", l)
		}
		for _, s := range c.Insights {
			fmt.Fprintf(w, "  • %s\n", s)
		}
	}
	if v.Analysis != nil {
		writeResultText(w, v.Analysis)
	}
}

func writeResultText(w io.Writer, res *analysis.Result) {
	label := string(res.Source)
	if res.Model != "" {
		label += ", " + res.Model
	}
	fmt.Fprintf(w, "\n=== Campaign Analysis (%s) ===\n", label)
	fmt.Fprintf(w, "Summary: %s\n", res.Summary)
	fmt.Fprintln(w, "Recommendations:")
	if len(res.Recommendations) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i, r := range res.Recommendations {
		fmt.Fprintf(w, "  %d. %s\n", i+1, r)
	}
}

func writeViewMarkdown(w io.Writer, v analysisView) {
	fmt.Fprintln(w, "# Media Intelligence Analysis")
	fmt.Fprintln(w)
	if v.Summary != "" {
		fmt.Fprintf(w, "%s  \n", v.Summary)
	}
	fmt.Fprintf(w, "Filters: %s (%d records)\n", v.Criteria, v.Records)
	for _, c := range v.Charts {
		fmt.Fprintf(w, "\n## %s\n\n", c.Title)
		if lines := chartLines(c); len(lines) > 0 {
			for _, l := range lines {
				fmt.Fprintf(w, "- %s\n", l)
			}
			fmt.Fprintln(w)
		}
		for _, s := range c.Insights {
			fmt.Fprintf(w, "> %s\n", s)
		}
	}
	if res := v.Analysis; res != nil {
		fmt.Fprintf(w, "\n## Campaign Analysis (%s)\n\n%s\n\n", res.Source, res.Summary)
		for i, r := range res.Recommendations {
			fmt.Fprintf(w, "%d. %s\n", i+1, r)
		}
	}
}
