package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepRange_Points_InclusiveAndOrdered(t *testing.T) {
	// GIVEN the tutorial sweep: 6 widths from 300 to 400nm
	r := SweepRange{Name: "width", Unit: "nm", Min: 300, Max: 400, Count: 6}

	// WHEN generating points
	points, err := r.Points()
	require.NoError(t, err)

	// THEN both ends are included, indices follow position
	want := []float64{300, 320, 340, 360, 380, 400}
	require.Len(t, points, len(want))
	for i, p := range points {
		assert.Equal(t, i, p.Index)
		assert.InDelta(t, want[i], p.Value, 1e-9)
	}
	assert.Equal(t, 300.0, points[0].Value)
	assert.Equal(t, 400.0, points[5].Value)
}

func TestSweepRange_Points_SinglePoint(t *testing.T) {
	points, err := SweepRange{Min: 600, Max: 2000, Count: 1}.Points()
	require.NoError(t, err)
	assert.Equal(t, []ParameterPoint{{Index: 0, Value: 600}}, points)
}

func TestSweepRange_Validate_RejectsInvalidRanges(t *testing.T) {
	tests := []struct {
		name string
		r    SweepRange
	}{
		{"zero count", SweepRange{Min: 1, Max: 2, Count: 0}},
		{"inverted", SweepRange{Min: 2, Max: 1, Count: 3}},
		{"empty", SweepRange{Min: 2, Max: 2, Count: 3}},
		{"infinite", SweepRange{Min: 0, Max: math.Inf(1), Count: 3}},
		{"NaN", SweepRange{Min: math.NaN(), Max: 1, Count: 3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.r.Points()
			var cfgErr *ConfigurationError
			assert.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %v", err)
		})
	}
}

func TestValues_PreservesOrder(t *testing.T) {
	points := []ParameterPoint{{Index: 0, Value: 3}, {Index: 1, Value: 1}, {Index: 2, Value: 2}}
	assert.Equal(t, []float64{3, 1, 2}, Values(points))
}
