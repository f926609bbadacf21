package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/medintel-cli/internal/analysis"
	"github.com/KaramelBytes/medintel-cli/internal/dataset"
	"github.com/KaramelBytes/medintel-cli/internal/filter"
	"github.com/KaramelBytes/medintel-cli/internal/insight"
)

// Defaults used when a Document carries no explicit value.
const (
	DefaultTitle        = "Media Intelligence Report"
	NoRecommendations   = "No specific recommendations were provided."
	DefaultPDFName      = "media_intelligence_report.pdf"
	DefaultMarkdownName = "media_intelligence_report.md"
)

// Format selects the rendered output.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts "pdf", "markdown" or "md".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pdf":
		return FormatPDF, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unsupported report format %q (use pdf|markdown)", s)
}

// DefaultFileName returns the output name used when none is given.
func (f Format) DefaultFileName() string {
	if f == FormatMarkdown {
		return DefaultMarkdownName
	}
	return DefaultPDFName
}

// RenderError wraps any failure while rendering or writing a report.
// Rendering is side-effect free until the final write, so callers may retry.
type RenderError struct {
	Format Format
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s report: %v", e.Format, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Overview describes the dataset the analysis ran on.
type Overview struct {
	Records          int
	TotalEngagements int64
	Start, End       time.Time
}

// Section is a titled block of insight sentences.
type Section struct {
	Title string
	Lines []string
}

// Document is everything a renderer needs.
type Document struct {
	Title           string
	Source          analysis.Source
	Model           string
	AnalysisID      string
	GeneratedAt     time.Time
	Overview        *Overview
	Criteria        string
	Summary         string
	Recommendations []string
	Insights        []Section
}

// Options control which optional sections FromAnalysis fills in.
type Options struct {
	Title           string
	Dataset         *dataset.Dataset
	Criteria        *filter.Criteria
	IncludeInsights bool
}

// FromAnalysis builds a Document for res.
func FromAnalysis(res *analysis.Result, opts Options) Document {
	doc := Document{Title: opts.Title}
	if doc.Title == "" {
		doc.Title = DefaultTitle
	}
	if res != nil {
		doc.Source = res.Source
		doc.Model = res.Model
		doc.AnalysisID = res.ID
		doc.GeneratedAt = res.GeneratedAt
		doc.Summary = res.Summary
		doc.Recommendations = append([]string(nil), res.Recommendations...)
	}
	if opts.Criteria != nil {
		doc.Criteria = opts.Criteria.String()
	}
	if d := opts.Dataset; d != nil {
		ov := &Overview{Records: d.Len(), TotalEngagements: d.TotalEngagements()}
		ov.Start, ov.End, _ = d.DateRange()
		doc.Overview = ov
		if opts.IncludeInsights {
			for _, c := range insight.All() {
				doc.Insights = append(doc.Insights, Section{Title: c.Title(), Lines: insight.Generate(c, *d)})
			}
		}
	}
	return doc
}

func (doc Document) sourceLine() string {
	if doc.Source == "" {
		return ""
	}
	if doc.Model != "" {
		return fmt.Sprintf("Source: %s (%s)", doc.Source, doc.Model)
	}
	return fmt.Sprintf("Source: %s", doc.Source)
}

func (ov Overview) lines() []string {
	out := []string{
		fmt.Sprintf("Records: %d", ov.Records),
		fmt.Sprintf("Total engagements: %d", ov.TotalEngagements),
	}
	if !ov.Start.IsZero() {
		out = append(out, fmt.Sprintf("Date range: %s to %s", ov.Start.Format(dataset.DateLayout), ov.End.Format(dataset.DateLayout)))
	}
	return out
}
