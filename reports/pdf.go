package reports

import (
	"errors"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pdfFontFamily   = "Helvetica"
	pdfTitleSize    = 18
	pdfBodySize     = 11
	pdfTableSize    = 9
	pdfRowHeight    = 7
	pdfHeaderHeight = 9
	pdfCellPadding  = 2
)

// renderPDF lays out the report on letter pages: title, date line and a gridded table
// whose header row is filled with the report's header color.
func renderPDF(w io.Writer, report Report) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle(report.Title, true)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	widths := columnWidths(pdf, report)

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			writeTableHeader(pdf, report, widths, tr)
		}
	})

	pdf.AddPage()

	pdf.SetFont(pdfFontFamily, "B", pdfTitleSize)
	pdf.CellFormat(0, 12, tr(report.Title), "", 1, "C", false, 0, "")
	pdf.SetFont(pdfFontFamily, "", pdfBodySize)
	pdf.CellFormat(0, 7, tr(report.DateLine()), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	writeTableHeader(pdf, report, widths, tr)

	pdf.SetFont(pdfFontFamily, "", pdfTableSize)
	for _, row := range report.Rows {
		for i, cell := range row {
			text := tr(fitText(pdf, cell, widths[i]-pdfCellPadding))
			pdf.CellFormat(widths[i], pdfRowHeight, text, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return errors.Join(ErrRenderingFailed, err)
	}

	return nil
}

func writeTableHeader(pdf *fpdf.Fpdf, report Report, widths []float64, tr func(string) string) {
	pdf.SetFont(pdfFontFamily, "B", pdfTableSize+1)
	pdf.SetFillColor(report.HeaderColor.R, report.HeaderColor.G, report.HeaderColor.B)
	pdf.SetTextColor(245, 245, 245)
	for i, column := range report.Columns {
		pdf.CellFormat(widths[i], pdfHeaderHeight, tr(column), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(pdfFontFamily, "", pdfTableSize)
}

// columnWidths sizes the columns after their widest content and scales them to the printable width.
func columnWidths(pdf *fpdf.Fpdf, report Report) []float64 {
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	printable := pageWidth - left - right

	pdf.SetFont(pdfFontFamily, "B", pdfTableSize+1)
	widths := make([]float64, len(report.Columns))
	for i, column := range report.Columns {
		widths[i] = pdf.GetStringWidth(column) + 2*pdfCellPadding
	}

	pdf.SetFont(pdfFontFamily, "", pdfTableSize)
	for _, row := range report.Rows {
		for i, cell := range row {
			if cellWidth := pdf.GetStringWidth(cell) + 2*pdfCellPadding; cellWidth > widths[i] {
				widths[i] = cellWidth
			}
		}
	}

	total := 0.0
	for _, width := range widths {
		total += width
	}

	for i := range widths {
		widths[i] = widths[i] / total * printable
	}

	return widths
}

// fitText cuts text with an ellipsis so it fits into maxWidth.
func fitText(pdf *fpdf.Fpdf, text string, maxWidth float64) string {
	if pdf.GetStringWidth(text) <= maxWidth {
		return text
	}

	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > maxWidth {
		runes = runes[:len(runes)-1]
	}

	return string(runes) + "..."
}
