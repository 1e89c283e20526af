package report

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/phpdave11/gofpdf"

	"flight-price-tracker/internal/domain/entity"
)

// column widths in mm, landscape A4 leaves 277mm between the margins
var pdfColumns = []struct {
	title string
	width float64
}{
	{"Observed", 30},
	{"Outbound", 22},
	{"Date", 24},
	{"Time", 14},
	{"Return", 22},
	{"Date", 24},
	{"Time", 14},
	{"Price", 16},
	{"Trip", 111},
}

// RenderPDF builds a landscape report with the chart (when given) and a table of the records
func RenderPDF(records []entity.PriceObservation, chartPNG []byte, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(chartTitle, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, chartTitle)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s - %d observations", generatedAt.Format("2006-01-02 15:04"), len(records)))
	pdf.Ln(8)

	if len(chartPNG) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("chart", opts, bytes.NewReader(chartPNG))
		pdf.ImageOptions("chart", 10, pdf.GetY(), 277, 0, false, opts, 0, "")
		pdf.AddPage()
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, r := range records {
		price := r.Price
		if price != "" {
			price += " €"
		}
		cells := []string{
			r.ObservationDate,
			r.OutboundRoute,
			r.OutboundDate,
			r.OutboundTime,
			r.ReturnRoute,
			r.ReturnDate,
			r.ReturnTime,
			price,
			r.Label,
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 6, tr(cells[i]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// WritePDF renders the report to path
func WritePDF(path string, records []entity.PriceObservation, chartPNG []byte, generatedAt time.Time) error {
	b, err := RenderPDF(records, chartPNG, generatedAt)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
