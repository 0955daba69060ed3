package render

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/EMinsight/NumBAT/sim/scan"
)

// CSV exports the surface as a table: one row per grid frequency, one column
// per parameter value, both in display order.
type CSV struct {
	Path string
}

// NewCSV creates a CSV renderer.
func NewCSV(path string) *CSV { return &CSV{Path: path} }

func (c *CSV) Render(s *scan.Surface, meta scan.AxisMeta) error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return fmt.Errorf("csv export: %w", err)
	}
	file, err := os.Create(c.Path)
	if err != nil {
		return fmt.Errorf("csv export: %w", err)
	}
	defer func() { _ = file.Close() }()

	v := scan.NewView(s, meta)
	rows, cols := v.Dims()

	corner := meta.FrequencyLabel
	if corner == "" {
		corner = "frequency"
	}
	w := csv.NewWriter(file)
	record := make([]string, cols+1)
	record[0] = corner
	for j := 0; j < cols; j++ {
		record[j+1] = strconv.FormatFloat(v.Parameter(j), 'g', -1, 64)
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("csv export: header: %w", err)
	}
	for i := 0; i < rows; i++ {
		record[0] = strconv.FormatFloat(v.Frequency(i), 'g', -1, 64)
		for j := 0; j < cols; j++ {
			record[j+1] = strconv.FormatFloat(v.At(i, j), 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("csv export: row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv export: %w", err)
	}
	return nil
}
