package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/banshee-data/stencilbench/internal/trials"
)

const (
	pdfMargin       = 10.0
	pdfLineHeight   = 6.0
	pdfContentWidth = 279.4 - 2*pdfMargin // Letter landscape, mm
)

// WritePDF writes a digest with the summary table followed by one page per
// figure.
func WritePDF(w io.Writer, title string, recs []trials.SummaryRecord, figs []Figure) error {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(title, true)
	pdf.SetCreator("stencilbench", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(pdfContentWidth, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	cols := 3
	for _, r := range recs {
		cols = max(cols, len(r.Display))
	}
	widths := []float64{22, 24, 34}
	valueWidth := (pdfContentWidth - 80) / float64(cols)
	for i := 0; i < cols; i++ {
		widths = append(widths, valueWidth)
	}

	headers := []string{"Version", "Processes", "CoreConfig"}
	for i := 0; i < cols; i++ {
		headers = append(headers, "Value"+strconv.Itoa(i+1))
	}
	tableHeader := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(200, 200, 200)
		for i, h := range headers {
			pdf.CellFormat(widths[i], pdfLineHeight, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	tableHeader()

	_, pageHeight := pdf.GetPageSize()
	for _, r := range recs {
		if pdf.GetY()+pdfLineHeight > pageHeight-pdfMargin {
			pdf.AddPage()
			tableHeader()
		}
		cells := []string{
			r.Identity.Version,
			strconv.Itoa(r.Identity.ProcessesOrSentinel()),
			r.Identity.CoreConfigLabel(),
		}
		for i := 0; i < cols; i++ {
			if i < len(r.Display) {
				cells = append(cells, r.Display[i])
			} else {
				cells = append(cells, "")
			}
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], pdfLineHeight, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	for i, f := range figs {
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(pdfContentWidth, 8, f.Name, "", 1, "L", false, 0, "")
		name := fmt.Sprintf("figure-%d", i)
		imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(f.PNG))
		// 4:3 figures; keep the image inside the page height.
		imgHeight := pageHeight - pdf.GetY() - pdfMargin
		imgWidth := min(pdfContentWidth, imgHeight*4/3)
		pdf.ImageOptions(name, pdfMargin, pdf.GetY(), imgWidth, 0, false, imgOpts, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("building pdf: %w", err)
	}
	return pdf.Output(w)
}
