package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/medintel-cli/internal/utils"
)

// RenderMarkdown renders doc as a Markdown document.
func RenderMarkdown(doc Document) string {
	var b strings.Builder
	title := doc.Title
	if title == "" {
		title = DefaultTitle
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if s := doc.sourceLine(); s != "" {
		fmt.Fprintf(&b, "%s  \n", s)
	}
	if !doc.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "Generated: %s  \n", doc.GeneratedAt.UTC().Format(time.RFC3339))
	}
	if doc.AnalysisID != "" {
		fmt.Fprintf(&b, "Analysis ID: %s\n", doc.AnalysisID)
	}
	b.WriteString("\n---\n\n")

	if doc.Overview != nil || doc.Criteria != "" {
		b.WriteString("## Dataset Overview\n\n")
		if doc.Overview != nil {
			for _, l := range doc.Overview.lines() {
				fmt.Fprintf(&b, "- %s\n", l)
			}
		}
		if doc.Criteria != "" {
			fmt.Fprintf(&b, "- Filters: %s\n", doc.Criteria)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Overall Summary\n\n")
	b.WriteString(doc.Summary)
	b.WriteString("\n\n## Campaign Recommendations\n\n")
	if len(doc.Recommendations) == 0 {
		b.WriteString(NoRecommendations + "\n")
	}
	for i, r := range doc.Recommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r)
	}

	for i, s := range doc.Insights {
		if i == 0 {
			b.WriteString("\n## Chart Insights\n")
		}
		fmt.Fprintf(&b, "\n### %s\n\n", s.Title)
		for _, l := range s.Lines {
			fmt.Fprintf(&b, "- %s\n", l)
		}
	}
	return b.String()
}

// WriteFile renders doc in format f and atomically writes it to path.
func WriteFile(path string, doc Document, f Format) error {
	var data []byte
	switch f {
	case FormatPDF:
		var buf bytes.Buffer
		if err := RenderPDF(&buf, doc); err != nil {
			return err
		}
		data = buf.Bytes()
	case FormatMarkdown:
		data = []byte(RenderMarkdown(doc))
	default:
		return &RenderError{Format: f, Err: errors.New("unsupported format")}
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return &RenderError{Format: f, Err: err}
	}
	return nil
}
