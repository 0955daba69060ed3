// Package adapter provides SimulationAdapter implementations: a closed-form
// acoustic mode model for demos and tests, and a bridge to an external solver
// process.
package adapter

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/EMinsight/NumBAT/sim"
)

// AnalyticConfig holds the constants of the closed-form mode model.
type AnalyticConfig struct {
	SoundSpeed    float64 `yaml:"sound_speed"`    // bulk acoustic velocity in m/s
	Q             float64 `yaml:"q"`              // mechanical quality factor of every mode
	CouplingScale float64 `yaml:"coupling_scale"` // peak coupling amplitude of the fundamental mode
}

// ApplyDefaults fills zero fields with silicon-like values.
func (c *AnalyticConfig) ApplyDefaults() {
	if c.SoundSpeed == 0 {
		c.SoundSpeed = 4000
	}
	if c.Q == 0 {
		c.Q = 1000
	}
	if c.CouplingScale == 0 {
		c.CouplingScale = 1
	}
}

// Validate checks the model constants.
func (c AnalyticConfig) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"adapter.analytic.sound_speed", c.SoundSpeed},
		{"adapter.analytic.q", c.Q},
		{"adapter.analytic.coupling_scale", c.CouplingScale},
	} {
		if !(f.v > 0) || math.IsInf(f.v, 1) {
			return &sim.ConfigurationError{Field: f.name, Reason: fmt.Sprintf("must be a finite positive number, got %v", f.v)}
		}
	}
	return nil
}

// Analytic models the acoustic modes of a rectangular or circular inclusion
// as a box resonator travelling with the backward-SBS wavenumber
// k_AC = 2·k_EM. Mode (p, q) has frequency
//
//	f = v/(2π) · sqrt(k_AC² + (pπ/w)² + (qπ/h)²)
//
// in GHz. Only modes even in both transverse orders couple to the probe
// pairs. Results are a pure function of the Configuration.
type Analytic struct {
	cfg AnalyticConfig
}

// NewAnalytic creates an Analytic adapter.
func NewAnalytic(cfg AnalyticConfig) (*Analytic, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analytic{cfg: cfg}, nil
}

type transverseOrder struct {
	p, q int
	f    float64
}

// Simulate returns the NumModesAC lowest modes of the configuration.
func (a *Analytic) Simulate(ctx context.Context, cfg sim.Configuration) (sim.RawResult, error) {
	if err := ctx.Err(); err != nil {
		return sim.RawResult{}, err
	}
	if !(cfg.Mesh.Core > 0) || !(cfg.Mesh.Boundary > 0) || !(cfg.Mesh.Background > 0) {
		return sim.RawResult{}, fmt.Errorf("configuration %d: %w: non-positive mesh density", cfg.Index, sim.ErrMeshFailure)
	}
	if !(cfg.WidthNM > 0) || !(cfg.HeightNM > 0) || cfg.UnitCellXNM <= cfg.WidthNM {
		return sim.RawResult{}, fmt.Errorf("configuration %d: %w: inclusion does not fit the unit cell", cfg.Index, sim.ErrMeshFailure)
	}
	if !(cfg.EffectiveIndex > 0) {
		return sim.RawResult{}, fmt.Errorf("configuration %d: %w: effective index guess %v", cfg.Index, sim.ErrNonConvergence, cfg.EffectiveIndex)
	}
	n := cfg.Solver.NumModesAC
	if n <= 0 {
		return sim.RawResult{}, fmt.Errorf("configuration %d: %w: %d acoustic modes requested", cfg.Index, sim.ErrEigenDecomposition, n)
	}

	kAC := 2 * 2 * math.Pi * cfg.EffectiveIndex / (cfg.WavelengthNM * 1e-9)
	w := cfg.WidthNM * 1e-9
	h := cfg.HeightNM * 1e-9
	if cfg.Shape == sim.ShapeCircular {
		h = w
	}

	// Every order with p, q < n is a candidate; the n lowest survive.
	orders := make([]transverseOrder, 0, n*n)
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			kx := float64(p) * math.Pi / w
			ky := float64(q) * math.Pi / h
			f := a.cfg.SoundSpeed / (2 * math.Pi) * math.Sqrt(kAC*kAC+kx*kx+ky*ky) * 1e-9
			orders = append(orders, transverseOrder{p: p, q: q, f: f})
		}
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].f < orders[j].f })

	probes := cfg.Solver.NumModesEM
	if probes > 2 {
		probes = 2
	}
	modes := make([]sim.ModeRecord, n)
	for i := range modes {
		o := orders[i]
		mode := sim.ModeRecord{Index: i, Center: o.f, Q: a.cfg.Q}
		if o.p%2 == 0 && o.q%2 == 0 {
			amp := a.cfg.CouplingScale / float64((1+o.p)*(1+o.q))
			for em := 0; em < probes; em++ {
				mode.Couplings = append(mode.Couplings, sim.Coupling{Pump: em, Stokes: em, Amplitude: amp / float64(1+em)})
			}
		}
		modes[i] = mode
	}
	return sim.RawResult{Index: cfg.Index, Point: cfg.Point, Wavenumber: kAC, Modes: modes}, nil
}
