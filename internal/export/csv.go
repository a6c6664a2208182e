package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"fieldsampler/pkg/grid"
)

// WriteCSV persists the grid as a CSV file with fid and point coordinates
// followed by the attribute columns in grid order. NaN samples are written
// as empty fields.
func WriteCSV(path string, g *grid.Grid) (retErr error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create dirs: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && retErr == nil {
			retErr = fmt.Errorf("close csv: %w", cErr)
		}
	}()

	w := csv.NewWriter(f)
	cols := g.Columns()
	header := append([]string{"fid", "x", "y"}, cols...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(header))
	for i := 0; i < g.Len(); i++ {
		p := g.Point(i)
		record[0] = strconv.FormatInt(g.FID(i), 10)
		record[1] = strconv.FormatFloat(p.X, 'f', -1, 64)
		record[2] = strconv.FormatFloat(p.Y, 'f', -1, 64)
		for j, c := range cols {
			if v := g.Value(c, i); math.IsNaN(v) {
				record[3+j] = ""
			} else {
				record[3+j] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// CSVSummary is the read-back view used to verify a written file.
type CSVSummary struct {
	Rows    int
	Columns []string
}

// ReadCSVSummary re-opens a CSV file and reports its row count and header.
func ReadCSVSummary(path string) (CSVSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return CSVSummary{}, fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = f.Close() }()
	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return CSVSummary{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return CSVSummary{}, fmt.Errorf("read csv: empty file")
	}
	return CSVSummary{Rows: len(records) - 1, Columns: records[0]}, nil
}
