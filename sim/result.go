package sim

import "math"

// ProbePair selects the pump and Stokes electromagnetic modes whose coupling
// amplitude a resonance contributes to a spectrum.
type ProbePair struct {
	Pump   int `yaml:"pump" json:"pump"`
	Stokes int `yaml:"stokes" json:"stokes"`
}

// Coupling is the amplitude of a resonance for one probe pair.
type Coupling struct {
	Pump      int     `json:"pump"`
	Stokes    int     `json:"stokes"`
	Amplitude float64 `json:"amplitude"`
}

// ModeRecord is a single resonance returned by a mode solver.
// Either Linewidth (half-width at half-maximum) or Q is set; frequencies use
// the same unit as the synthesis grid.
type ModeRecord struct {
	Index     int        `json:"index"`
	Center    float64    `json:"center"`
	Linewidth float64    `json:"linewidth,omitempty"`
	Q         float64    `json:"q,omitempty"`
	Couplings []Coupling `json:"couplings,omitempty"`
}

// Amplitude returns the coupling amplitude for probe and whether the mode
// carries one.
func (m ModeRecord) Amplitude(probe ProbePair) (float64, bool) {
	for _, c := range m.Couplings {
		if c.Pump == probe.Pump && c.Stokes == probe.Stokes {
			return c.Amplitude, true
		}
	}
	return 0, false
}

// RawResult is everything one configuration's simulation produced.
// Modes is variable-length; its order is the solver's order.
type RawResult struct {
	Index      int            `json:"index"`
	Point      ParameterPoint `json:"point"`
	Wavenumber float64        `json:"wavenumber"` // acoustic wavenumber k_AC in 1/m
	Modes      []ModeRecord   `json:"modes"`
}

// EffectiveIndex returns the effective index of the fundamental EM mode
// implied by the acoustic wavenumber (k_AC = 2·k_EM), rounded to 4 decimals.
func (r RawResult) EffectiveIndex(wavelengthNM float64) float64 {
	n := (r.Wavenumber / 2) * (wavelengthNM * 1e-9) / (2 * math.Pi)
	return math.Round(n*1e4) / 1e4
}

// Spectrum is a function sampled on a shared, strictly increasing grid.
type Spectrum struct {
	Grid   []float64
	Values []float64
}

// Len returns the number of samples.
func (s Spectrum) Len() int { return len(s.Values) }
