// Package store saves and reloads the raw results of a campaign so that the
// synthesis and assembly stages can be replayed without re-running the
// solver. Floats are stored losslessly: a replay reproduces the surface bit
// for bit.
package store

import (
	"fmt"
	"strconv"

	"github.com/EMinsight/NumBAT/sim"
)

// SnapshotVersion is written into every header.
const SnapshotVersion = 1

// Store kinds.
const (
	KindFiles  = "files"
	KindSQLite = "sqlite"
	KindNone   = "none"
)

// Header captures campaign metadata saved alongside the results.
type Header struct {
	Version      int            `yaml:"snapshot_version"`
	ID           string         `yaml:"campaign_id"`
	Name         string         `yaml:"name"`
	CreatedAt    string         `yaml:"created_at,omitempty"`
	Parameter    sim.SweepRange `yaml:"parameter"`
	WavelengthNM float64        `yaml:"wavelength_nm"`
	Count        int            `yaml:"count"` // number of results
}

// Snapshot is a header and the ordered raw results of a campaign.
type Snapshot struct {
	Header  Header
	Results []sim.RawResult
}

// Points returns the parameter points of the saved results, in order.
func (s Snapshot) Points() []sim.ParameterPoint {
	out := make([]sim.ParameterPoint, len(s.Results))
	for i, r := range s.Results {
		out[i] = r.Point
	}
	return out
}

// Store persists snapshots.
type Store interface {
	Save(Snapshot) error
	Load() (Snapshot, error)
	Close() error
}

// Open returns the store of the given kind rooted at dir. KindNone returns a
// nil Store.
func Open(kind, dir string) (Store, error) {
	switch kind {
	case KindFiles:
		f, err := NewFiles(dir)
		if err != nil {
			return nil, err
		}
		return f, nil
	case KindSQLite:
		db, err := NewSQLite(dir)
		if err != nil {
			return nil, err
		}
		return db, nil
	case KindNone, "":
		return nil, nil
	default:
		return nil, &sim.ConfigurationError{Field: "output.store", Reason: fmt.Sprintf("unknown store %q; valid: files, sqlite, none", kind)}
	}
}

// modeRow is one flattened (result, mode, coupling) row. Results without
// modes and modes without couplings still get a row so nothing is lost.
type modeRow struct {
	Config     int
	Value      float64
	Wavenumber float64

	HasMode   bool
	ModePos   int // position in RawResult.Modes
	ModeIndex int
	Center    float64
	Linewidth float64
	Q         float64

	HasCoupling bool
	Pump        int
	Stokes      int
	Amplitude   float64
}

func flatten(results []sim.RawResult) []modeRow {
	var rows []modeRow
	for i, r := range results {
		base := modeRow{Config: i, Value: r.Point.Value, Wavenumber: r.Wavenumber}
		if len(r.Modes) == 0 {
			rows = append(rows, base)
			continue
		}
		for pos, m := range r.Modes {
			row := base
			row.HasMode = true
			row.ModePos = pos
			row.ModeIndex = m.Index
			row.Center = m.Center
			row.Linewidth = m.Linewidth
			row.Q = m.Q
			if len(m.Couplings) == 0 {
				rows = append(rows, row)
				continue
			}
			for _, c := range m.Couplings {
				row.HasCoupling = true
				row.Pump, row.Stokes, row.Amplitude = c.Pump, c.Stokes, c.Amplitude
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func unflatten(count int, rows []modeRow) ([]sim.RawResult, error) {
	results := make([]sim.RawResult, count)
	seen := make([]bool, count)
	for n, row := range rows {
		if row.Config < 0 || row.Config >= count {
			return nil, fmt.Errorf("row %d: configuration %d outside %d results", n, row.Config, count)
		}
		r := &results[row.Config]
		if !seen[row.Config] {
			seen[row.Config] = true
			r.Index = row.Config
			r.Point = sim.ParameterPoint{Index: row.Config, Value: row.Value}
			r.Wavenumber = row.Wavenumber
		}
		if !row.HasMode {
			continue
		}
		switch row.ModePos {
		case len(r.Modes):
			r.Modes = append(r.Modes, sim.ModeRecord{
				Index:     row.ModeIndex,
				Center:    row.Center,
				Linewidth: row.Linewidth,
				Q:         row.Q,
			})
		case len(r.Modes) - 1:
		default:
			return nil, fmt.Errorf("row %d: mode position %d out of sequence", n, row.ModePos)
		}
		if row.HasCoupling {
			m := &r.Modes[row.ModePos]
			m.Couplings = append(m.Couplings, sim.Coupling{Pump: row.Pump, Stokes: row.Stokes, Amplitude: row.Amplitude})
		}
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("no rows for configuration %d", i)
		}
	}
	return results, nil
}

// formatFloat is the shortest representation that parses back to f exactly.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
