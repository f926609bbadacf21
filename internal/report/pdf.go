package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	lineHeight = 6.0
	pageMargin = 15.0
)

// RenderPDF writes doc as a Letter-size PDF.
func RenderPDF(w io.Writer, doc Document) error {
	var buf bytes.Buffer
	if err := renderPDF(&buf, doc); err != nil {
		return &RenderError{Format: FormatPDF, Err: err}
	}
	if _, err := buf.WriteTo(w); err != nil {
		return &RenderError{Format: FormatPDF, Err: err}
	}
	return nil
}

func renderPDF(w io.Writer, doc Document) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := doc.Title
	if title == "" {
		title = DefaultTitle
	}
	pdf.SetTitle(title, true)
	pdf.SetCreator("medintel", false)
	if !doc.GeneratedAt.IsZero() {
		pdf.SetCreationDate(doc.GeneratedAt)
	}
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin)
		pdf.SetFont("Helvetica", "I", 8)
		footer := fmt.Sprintf("Page %d/{nb}", pdf.PageNo())
		if doc.AnalysisID != "" {
			footer += "  |  Analysis " + doc.AnalysisID
		}
		pdf.CellFormat(0, 10, footer, "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	meta := doc.sourceLine()
	if !doc.GeneratedAt.IsZero() {
		if meta != "" {
			meta += "  |  "
		}
		meta += "Generated " + doc.GeneratedAt.UTC().Format(time.RFC3339)
	}
	if meta != "" {
		pdf.CellFormat(0, lineHeight, tr(meta), "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 10, "---", "", 1, "C", false, 0, "")

	heading := func(s string) {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, lineHeight+2, tr(s), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}

	if doc.Overview != nil || doc.Criteria != "" {
		heading("Dataset Overview:")
		if doc.Overview != nil {
			for _, l := range doc.Overview.lines() {
				pdf.MultiCell(0, lineHeight, tr(l), "", "L", false)
			}
		}
		if doc.Criteria != "" {
			pdf.MultiCell(0, lineHeight, tr("Filters: "+doc.Criteria), "", "L", false)
		}
	}

	heading("Overall Summary:")
	pdf.MultiCell(0, lineHeight, tr(doc.Summary), "", "L", false)

	heading("Campaign Recommendations:")
	if len(doc.Recommendations) == 0 {
		pdf.MultiCell(0, lineHeight, NoRecommendations, "", "L", false)
	}
	for i, r := range doc.Recommendations {
		pdf.MultiCell(0, lineHeight, tr(fmt.Sprintf("%d. %s", i+1, r)), "", "L", false)
	}

	if len(doc.Insights) > 0 {
		heading("Chart Insights:")
		for _, s := range doc.Insights {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.MultiCell(0, lineHeight, tr(s.Title), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
			for _, l := range s.Lines {
				pdf.MultiCell(0, lineHeight, tr("- "+l), "", "L", false)
			}
		}
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
