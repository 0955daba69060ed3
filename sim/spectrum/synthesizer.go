// Package spectrum turns the discrete resonances of one simulation into a
// continuous spectrum sampled on a shared frequency grid.
//
// Each selected mode contributes a Lorentzian
//
//	L(f) = A·h² / (h² + (f − f0)²)
//
// evaluated first on a dense local window of detunings around f0 and then
// resampled onto the output grid with interp.Align. The output grid never has
// to resolve the narrowest linewidth. Contributions are summed in mode order,
// so the result does not depend on how many workers evaluated them.
package spectrum

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/EMinsight/NumBAT/sim"
	"github.com/EMinsight/NumBAT/sim/interp"
)

// Config holds the synthesis parameters shared by every configuration.
type Config struct {
	DetuningRange float64       `yaml:"detuning_range"` // half-width of the local window, grid units
	DetuningSteps int           `yaml:"detuning_steps"` // samples on each side of the centre, centre included
	FixedQ        float64       `yaml:"fixed_q"`        // > 0 overrides every mode's linewidth with f0/(2Q)
	Probe         sim.ProbePair `yaml:"probe"`          // coupling used as the Lorentzian amplitude
	Workers       int           `yaml:"workers"`        // modes evaluated concurrently (default 1)
}

// Validate checks the synthesis parameters.
func (c Config) Validate() error {
	if !(c.DetuningRange > 0) || math.IsInf(c.DetuningRange, 1) {
		return &sim.ConfigurationError{Field: "synthesis.detuning_range", Reason: fmt.Sprintf("must be a finite positive number, got %v", c.DetuningRange)}
	}
	if c.DetuningSteps < 2 {
		return &sim.ConfigurationError{Field: "synthesis.detuning_steps", Reason: fmt.Sprintf("must be at least 2, got %d", c.DetuningSteps)}
	}
	if c.FixedQ < 0 || math.IsNaN(c.FixedQ) || math.IsInf(c.FixedQ, 0) {
		return &sim.ConfigurationError{Field: "synthesis.fixed_q", Reason: fmt.Sprintf("must be >= 0, got %v", c.FixedQ)}
	}
	if c.Workers < 0 {
		return &sim.ConfigurationError{Field: "synthesis.workers", Reason: fmt.Sprintf("must be >= 0, got %d", c.Workers)}
	}
	return nil
}

// Synthesizer converts RawResults into Spectra. It holds only the immutable
// synthesis parameters and the precomputed detuning window, and is safe for
// concurrent use.
type Synthesizer struct {
	cfg     Config
	offsets []float64 // detunings, strictly increasing, 0 included exactly
}

// NewSynthesizer validates cfg and precomputes the local detuning window.
func NewSynthesizer(cfg Config) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	return &Synthesizer{cfg: cfg, offsets: detuningWindow(cfg.DetuningRange, cfg.DetuningSteps)}, nil
}

// Config returns the parameters the synthesizer was built with.
func (s *Synthesizer) Config() Config { return s.cfg }

// detuningWindow returns linspace(-r, 0, n) followed by linspace(0, r, n)[1:].
func detuningWindow(r float64, n int) []float64 {
	left := floats.Span(make([]float64, n), -r, 0)
	right := floats.Span(make([]float64, n), 0, r)
	left[n-1] = 0
	return append(left, right[1:]...)
}

// line is a validated Lorentzian.
type line struct {
	mode      int
	center    float64
	halfWidth float64
	amplitude float64
}

// Synthesize returns the spectrum of raw on grid, summing the modes chosen by
// sel. No modes, or no selected modes, gives an all-zero spectrum.
func (s *Synthesizer) Synthesize(raw sim.RawResult, grid []float64, sel ModeSelection) (sim.Spectrum, error) {
	if err := ValidateGrid(grid); err != nil {
		return sim.Spectrum{}, err
	}

	lines := make([]line, 0, len(raw.Modes))
	for _, m := range raw.Modes {
		if !sel.Contains(m.Index) {
			continue
		}
		l, err := s.lineFor(raw.Index, m)
		if err != nil {
			return sim.Spectrum{}, err
		}
		lines = append(lines, l)
	}

	values := make([]float64, len(grid))
	if len(lines) == 0 {
		return sim.Spectrum{Grid: grid, Values: values}, nil
	}

	if s.cfg.Workers <= 1 || len(lines) == 1 {
		scratch := make([]float64, len(grid))
		for _, l := range lines {
			if err := s.contribute(scratch, raw.Index, l, grid); err != nil {
				return sim.Spectrum{}, err
			}
			floats.Add(values, scratch)
		}
	} else {
		contributions := make([][]float64, len(lines))
		var g errgroup.Group
		g.SetLimit(s.cfg.Workers)
		for i, l := range lines {
			i, l := i, l
			g.Go(func() error {
				c := make([]float64, len(grid))
				if err := s.contribute(c, raw.Index, l, grid); err != nil {
					return err
				}
				contributions[i] = c
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return sim.Spectrum{}, err
		}
		for _, c := range contributions {
			floats.Add(values, c)
		}
	}

	logrus.Debugf("synthesized configuration %d: %d of %d modes", raw.Index, len(lines), len(raw.Modes))
	return sim.Spectrum{Grid: grid, Values: values}, nil
}

// lineFor resolves the half-width and amplitude of m, rejecting degenerate modes.
func (s *Synthesizer) lineFor(config int, m sim.ModeRecord) (line, error) {
	fail := func(format string, args ...interface{}) (line, error) {
		return line{}, &sim.SynthesisError{Config: config, Mode: m.Index, Reason: fmt.Sprintf(format, args...)}
	}
	if math.IsNaN(m.Center) || math.IsInf(m.Center, 0) {
		return fail("non-finite center frequency %v", m.Center)
	}

	var h float64
	switch {
	case s.cfg.FixedQ > 0:
		h = m.Center / (2 * s.cfg.FixedQ)
	case m.Linewidth != 0:
		h = m.Linewidth
	case m.Q != 0:
		h = m.Center / (2 * m.Q)
	}
	if !(h > 0) || math.IsInf(h, 1) {
		return fail("half-width must be finite and positive, got %v", h)
	}

	amp, _ := m.Amplitude(s.cfg.Probe)
	if math.IsNaN(amp) || math.IsInf(amp, 0) {
		return fail("non-finite amplitude %v", amp)
	}
	return line{mode: m.Index, center: m.Center, halfWidth: h, amplitude: amp}, nil
}

// contribute writes the resampled Lorentzian of l into dst.
func (s *Synthesizer) contribute(dst []float64, config int, l line, grid []float64) error {
	xs := make([]float64, len(s.offsets))
	ys := make([]float64, len(s.offsets))
	h2 := l.halfWidth * l.halfWidth
	for j, d := range s.offsets {
		xs[j] = l.center + d
		ys[j] = l.amplitude * h2 / (h2 + d*d)
	}
	if err := interp.AlignInto(dst, xs, ys, grid); err != nil {
		return &sim.SynthesisError{Config: config, Mode: l.mode, Reason: err.Error()}
	}
	return nil
}

// ValidateGrid checks that grid is non-empty, finite and strictly increasing.
func ValidateGrid(grid []float64) error {
	if len(grid) == 0 {
		return &sim.ConfigurationError{Field: "synthesis.grid", Reason: "grid is empty"}
	}
	for i, f := range grid {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &sim.ConfigurationError{Field: "synthesis.grid", Reason: fmt.Sprintf("point %d is not finite", i)}
		}
		if i > 0 && !(f > grid[i-1]) {
			return &sim.ConfigurationError{Field: "synthesis.grid", Reason: fmt.Sprintf("not strictly increasing at point %d", i)}
		}
	}
	return nil
}

// FrequencyGrid returns n evenly spaced frequencies from min to max inclusive.
func FrequencyGrid(min, max float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, &sim.ConfigurationError{Field: "synthesis.grid_points", Reason: fmt.Sprintf("must be at least 2, got %d", n)}
	}
	if !(min < max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil, &sim.ConfigurationError{Field: "synthesis.freq_min", Reason: fmt.Sprintf("need finite freq_min < freq_max, got [%v, %v]", min, max)}
	}
	return floats.Span(make([]float64, n), min, max), nil
}
