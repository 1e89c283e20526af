package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"flight-price-tracker/internal/domain/entity"
)

// WriteCSV writes the fixed header and one row per record, in order
func WriteCSV(w io.Writer, records []entity.PriceObservation) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(entity.CSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile replaces path with the records. The file is written next to path first
// and renamed into place, so readers never see a partial export.
func WriteCSVFile(path string, records []entity.PriceObservation) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod csv: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename csv: %w", err)
	}
	return nil
}
