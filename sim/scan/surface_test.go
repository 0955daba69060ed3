package scan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EMinsight/NumBAT/sim"
	"github.com/EMinsight/NumBAT/sim/internal/testutil"
	"github.com/EMinsight/NumBAT/sim/spectrum"
)

func points(n int) []sim.ParameterPoint {
	out := make([]sim.ParameterPoint, n)
	for i := range out {
		out[i] = sim.ParameterPoint{Index: i, Value: 300 + 20*float64(i)}
	}
	return out
}

func TestAssemble_ShapeAndColumnsMatchSynthesis(t *testing.T) {
	// GIVEN N=5 raw results and a grid of M=40 points
	const n, m = 5, 40
	pts := points(n)
	grid, err := spectrum.FrequencyGrid(10, 25, m)
	require.NoError(t, err)
	synth, err := spectrum.NewSynthesizer(spectrum.Config{DetuningRange: 10, DetuningSteps: 500})
	require.NoError(t, err)

	spectra := make([]sim.Spectrum, n)
	for j, p := range pts {
		raw := testutil.FakeResult(sim.Configuration{Index: j, Point: p})
		spectra[j], err = synth.Synthesize(raw, grid, spectrum.AllModes())
		require.NoError(t, err)
	}

	// WHEN assembled
	s, err := Assemble(spectra, pts)
	require.NoError(t, err)

	// THEN the surface is [M, N] and column j is spectrum j
	rows, cols := s.Dims()
	assert.Equal(t, m, rows)
	assert.Equal(t, n, cols)
	for j := range spectra {
		assert.Equal(t, spectra[j].Values, s.Column(j))
	}
	assert.Equal(t, grid, s.Grid())
	assert.Equal(t, pts, s.Points())
}

func TestAssemble_RejectsMismatchedLengths(t *testing.T) {
	grid := []float64{1, 2, 3}
	spectra := []sim.Spectrum{
		{Grid: grid, Values: []float64{1, 2, 3}},
		{Grid: grid[:2], Values: []float64{1, 2}},
	}
	_, err := Assemble(spectra, points(2))

	var asmErr *sim.AssemblyError
	require.True(t, errors.As(err, &asmErr))
	assert.Equal(t, 1, asmErr.Column)
}

func TestAssemble_RejectsDifferentGrids(t *testing.T) {
	spectra := []sim.Spectrum{
		{Grid: []float64{1, 2, 3}, Values: []float64{0, 0, 0}},
		{Grid: []float64{1, 2, 3}, Values: []float64{0, 0, 0}},
		{Grid: []float64{1, 2, 4}, Values: []float64{0, 0, 0}},
	}
	_, err := Assemble(spectra, points(3))

	var asmErr *sim.AssemblyError
	require.True(t, errors.As(err, &asmErr))
	assert.Equal(t, 2, asmErr.Column)
}

func TestAssemble_RejectsCountMismatchAndEmpty(t *testing.T) {
	var asmErr *sim.AssemblyError

	_, err := Assemble(nil, nil)
	assert.True(t, errors.As(err, &asmErr))

	_, err = Assemble([]sim.Spectrum{{Grid: []float64{1}, Values: []float64{0}}}, points(2))
	assert.True(t, errors.As(err, &asmErr))
	assert.Equal(t, -1, asmErr.Column)
}

func TestAssemble_DoesNotAliasInputs(t *testing.T) {
	grid := []float64{1, 2}
	values := []float64{5, 6}
	s, err := Assemble([]sim.Spectrum{{Grid: grid, Values: values}}, points(1))
	require.NoError(t, err)

	values[0] = 99
	grid[0] = -1

	assert.Equal(t, 5.0, s.At(0, 0))
	assert.Equal(t, 1.0, s.Grid()[0])
}

func TestView_ReversalIsPresentationOnly(t *testing.T) {
	// GIVEN a 3x2 surface
	grid := []float64{10, 11, 12}
	s, err := Assemble([]sim.Spectrum{
		{Grid: grid, Values: []float64{1, 2, 3}},
		{Grid: grid, Values: []float64{4, 5, 6}},
	}, points(2))
	require.NoError(t, err)

	// WHEN viewed with both axes reversed
	v := NewView(s, AxisMeta{ReverseRows: true, ReverseCols: true})

	// THEN display indices map to the opposite corners, storage is untouched
	assert.Equal(t, 6.0, v.At(0, 0))
	assert.Equal(t, 1.0, v.At(2, 1))
	assert.Equal(t, 12.0, v.Frequency(0))
	assert.Equal(t, 320.0, v.Parameter(0))
	assert.Equal(t, 1.0, s.At(0, 0))
	assert.Equal(t, []float64{1, 2, 3}, s.Column(0))

	plain := NewView(s, AxisMeta{})
	assert.Equal(t, 1.0, plain.At(0, 0))
	assert.Equal(t, 10.0, plain.Frequency(0))
}

func TestSurface_EqualAndRanges(t *testing.T) {
	grid := []float64{10, 11}
	mk := func(v float64) *Surface {
		s, err := Assemble([]sim.Spectrum{{Grid: grid, Values: []float64{v, 1}}}, points(1))
		require.NoError(t, err)
		return s
	}
	assert.True(t, mk(0.5).Equal(mk(0.5)))
	assert.False(t, mk(0.5).Equal(mk(0.25)))

	s := mk(3)
	lo, hi := s.FrequencyRange()
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 11.0, hi)
	first, last := s.ParameterRange()
	assert.Equal(t, 300.0, first)
	assert.Equal(t, 300.0, last)
	assert.Equal(t, 3.0, s.Max())
	assert.Equal(t, []float64{3}, s.Row(0))
}
