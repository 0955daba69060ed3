package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// File names inside a Files store directory.
const (
	HeaderFile = "header.yaml"
	ModesFile  = "modes.csv"
)

var modeColumns = []string{
	"config_index", "value", "wavenumber",
	"mode_pos", "mode_index", "center", "linewidth", "q",
	"pump", "stokes", "amplitude",
}

// Files stores a snapshot as a YAML header and a CSV of mode rows.
type Files struct {
	dir string
}

// NewFiles creates the directory if needed.
func NewFiles(dir string) (*Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &Files{dir: dir}, nil
}

// Dir returns the store directory.
func (f *Files) Dir() string { return f.dir }

// Save writes header.yaml and modes.csv, replacing earlier contents.
func (f *Files) Save(s Snapshot) error {
	header := s.Header
	header.Version = SnapshotVersion
	header.Count = len(s.Results)
	headerData, err := yaml.Marshal(&header)
	if err != nil {
		return fmt.Errorf("marshaling snapshot header: %w", err)
	}
	if err := os.WriteFile(filepath.Join(f.dir, HeaderFile), headerData, 0o644); err != nil {
		return fmt.Errorf("writing snapshot header: %w", err)
	}

	file, err := os.Create(filepath.Join(f.dir, ModesFile))
	if err != nil {
		return fmt.Errorf("creating modes file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(modeColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for n, r := range flatten(s.Results) {
		row := []string{strconv.Itoa(r.Config), formatFloat(r.Value), formatFloat(r.Wavenumber), "", "", "", "", "", "", "", ""}
		if r.HasMode {
			row[3] = strconv.Itoa(r.ModePos)
			row[4] = strconv.Itoa(r.ModeIndex)
			row[5] = formatFloat(r.Center)
			row[6] = formatFloat(r.Linewidth)
			row[7] = formatFloat(r.Q)
		}
		if r.HasCoupling {
			row[8] = strconv.Itoa(r.Pump)
			row[9] = strconv.Itoa(r.Stokes)
			row[10] = formatFloat(r.Amplitude)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", n, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing modes file: %w", err)
	}
	return file.Sync()
}

// Load reads header.yaml and modes.csv.
func (f *Files) Load() (Snapshot, error) {
	headerData, err := os.ReadFile(filepath.Join(f.dir, HeaderFile))
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading snapshot header: %w", err)
	}
	var header Header
	if err := yaml.Unmarshal(headerData, &header); err != nil {
		return Snapshot{}, fmt.Errorf("parsing snapshot header: %w", err)
	}
	if header.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported snapshot version %d", header.Version)
	}

	file, err := os.Open(filepath.Join(f.dir, ModesFile))
	if err != nil {
		return Snapshot{}, fmt.Errorf("opening modes file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(modeColumns)
	if _, err := reader.Read(); err != nil {
		return Snapshot{}, fmt.Errorf("reading CSV header: %w", err)
	}

	var rows []modeRow
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Snapshot{}, fmt.Errorf("reading CSV row: %w", err)
		}
		row, err := parseModeRow(rec)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%s line %d: %w", ModesFile, line, err)
		}
		rows = append(rows, row)
	}

	results, err := unflatten(header.Count, rows)
	if err != nil {
		return Snapshot{}, fmt.Errorf("rebuilding results: %w", err)
	}
	return Snapshot{Header: header, Results: results}, nil
}

// Close is a no-op; every Save closes its files.
func (f *Files) Close() error { return nil }

// fieldParser accumulates the first parse error so a row reads straight through.
type fieldParser struct {
	rec []string
	err error
}

func (p *fieldParser) atoi(i int) int {
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(p.rec[i])
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", modeColumns[i], err)
	}
	return v
}

func (p *fieldParser) parseFloat(i int) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(p.rec[i], 64)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", modeColumns[i], err)
	}
	return v
}

func parseModeRow(rec []string) (modeRow, error) {
	p := &fieldParser{rec: rec}
	row := modeRow{Config: p.atoi(0), Value: p.parseFloat(1), Wavenumber: p.parseFloat(2)}
	if rec[3] != "" {
		row.HasMode = true
		row.ModePos = p.atoi(3)
		row.ModeIndex = p.atoi(4)
		row.Center = p.parseFloat(5)
		row.Linewidth = p.parseFloat(6)
		row.Q = p.parseFloat(7)
	}
	if rec[8] != "" {
		row.HasCoupling = true
		row.Pump = p.atoi(8)
		row.Stokes = p.atoi(9)
		row.Amplitude = p.parseFloat(10)
	}
	return row, p.err
}
