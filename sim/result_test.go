package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModeRecord_Amplitude_LooksUpProbePair(t *testing.T) {
	m := ModeRecord{Index: 3, Couplings: []Coupling{
		{Pump: 0, Stokes: 0, Amplitude: 12},
		{Pump: 1, Stokes: 0, Amplitude: 4},
	}}

	a, ok := m.Amplitude(ProbePair{Pump: 1, Stokes: 0})
	assert.True(t, ok)
	assert.Equal(t, 4.0, a)

	_, ok = m.Amplitude(ProbePair{Pump: 0, Stokes: 1})
	assert.False(t, ok)
}

func TestRawResult_EffectiveIndex_InvertsWavenumber(t *testing.T) {
	// GIVEN k_AC = 2·k_EM for n_eff = 2.5 at 1550nm
	kEM := 2 * math.Pi * 2.5 / 1550e-9
	r := RawResult{Wavenumber: 2 * kEM}

	// THEN the effective index is recovered to 4 decimals
	assert.Equal(t, 2.5, r.EffectiveIndex(1550))
}

func TestSimulationError_UnwrapsCause(t *testing.T) {
	err := &SimulationError{Index: 2, Point: ParameterPoint{Index: 2, Value: 340}, Cause: ErrNonConvergence}
	assert.True(t, errors.Is(err, ErrNonConvergence))
	assert.Contains(t, err.Error(), "configuration 2")
	assert.Contains(t, err.Error(), "340")
}

func TestAssemblyError_Message(t *testing.T) {
	assert.Equal(t, "assembly: no spectra", (&AssemblyError{Column: -1, Reason: "no spectra"}).Error())
	assert.Equal(t, "assembly: column 3: length 9, want 10", (&AssemblyError{Column: 3, Reason: "length 9, want 10"}).Error())
}
