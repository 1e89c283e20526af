package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"

	"flight-price-tracker/internal/domain/entity"
	"flight-price-tracker/pkg/logger"
)

const lockRetryDelay = 250 * time.Millisecond

// FileExporter writes the CSV export, the chart and the optional PDF report
type FileExporter struct {
	csvPath   string
	chartPath string
	pdfPath   string // empty disables the PDF report
	logger    logger.Logger
}

// NewFileExporter creates a new file exporter
func NewFileExporter(csvPath, chartPath, pdfPath string, logger logger.Logger) *FileExporter {
	return &FileExporter{
		csvPath:   csvPath,
		chartPath: chartPath,
		pdfPath:   pdfPath,
		logger:    logger,
	}
}

// Export writes all outputs while holding the lock on <csv>.lock
func (e *FileExporter) Export(ctx context.Context, records []entity.PriceObservation) error {
	lock := flock.New(e.csvPath + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s: %w", lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("lock %s: held by another tracker", lock.Path())
	}
	defer lock.Unlock()

	if err := WriteCSVFile(e.csvPath, records); err != nil {
		return err
	}
	e.logger.Info("Data saved", "path", e.csvPath, "records", len(records))

	png, err := ChartPNG(records)
	switch {
	case errors.Is(err, ErrNoPlotData):
		e.logger.Warn("No data to plot")
	case err != nil:
		return err
	default:
		if err := os.WriteFile(e.chartPath, png, 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		e.logger.Info("Plot saved", "path", e.chartPath)
	}

	if e.pdfPath != "" {
		if err := WritePDF(e.pdfPath, records, png, time.Now()); err != nil {
			return err
		}
		e.logger.Info("Report saved", "path", e.pdfPath)
	}
	return nil
}
