package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBase() BaseConfig {
	base := BaseConfig{
		Geometry: NewGeometryConfig(1550, ShapeRectangular, 2.5, 315, 0.9, "Air", "Si", 3.48),
		Mesh:     NewMeshConfig(2, 1000, 10),
		Solver:   NewSolverConfig(20, 20, 0, 0),
	}
	base.ApplyDefaults()
	return base
}

func TestNewGeometryConfig_FieldEquivalence(t *testing.T) {
	got := NewGeometryConfig(1550, ShapeCircular, 5, 600, 1, "Air", "SiO2", 1.44)
	want := GeometryConfig{
		WavelengthNM:     1550,
		Shape:            ShapeCircular,
		UnitCellFactor:   5,
		ReferenceWidthNM: 600,
		AspectRatio:      1,
		Background:       "Air",
		Core:             "SiO2",
		CoreIndex:        1.44,
	}
	assert.Equal(t, want, got)
}

func TestNewSolverConfig_FieldEquivalence(t *testing.T) {
	got := NewSolverConfig(20, 70, 1.18, 4e9)
	want := SolverConfig{NumModesEM: 20, NumModesAC: 70, EffectiveIndex: 1.18, ShiftHz: 4e9}
	assert.Equal(t, want, got)
}

func TestBaseConfig_Validate_AcceptsTemplate(t *testing.T) {
	base := testBase()
	assert.NoError(t, base.Validate())
}

func TestBaseConfig_Validate_RejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BaseConfig)
		field  string
	}{
		{"zero wavelength", func(b *BaseConfig) { b.Geometry.WavelengthNM = 0 }, "geometry.wavelength_nm"},
		{"unknown shape", func(b *BaseConfig) { b.Geometry.Shape = "hexagonal" }, "geometry.shape"},
		{"negative aspect", func(b *BaseConfig) { b.Geometry.AspectRatio = -1 }, "geometry.aspect_ratio"},
		{"no unit cell scale", func(b *BaseConfig) { b.Geometry.UnitCellFactor = 0 }, "geometry.unit_cell_factor"},
		{"no reference width", func(b *BaseConfig) { b.Geometry.ReferenceWidthNM = 0 }, "geometry.reference_width_nm"},
		{"core index too small", func(b *BaseConfig) { b.Geometry.CoreIndex = 0.05 }, "geometry.core_index"},
		{"zero mesh", func(b *BaseConfig) { b.Mesh.Core = 0 }, "mesh.core"},
		{"no EM modes", func(b *BaseConfig) { b.Solver.NumModesEM = 0 }, "solver.em_modes"},
		{"no AC modes", func(b *BaseConfig) { b.Solver.NumModesAC = -3 }, "solver.ac_modes"},
		{"NaN effective index", func(b *BaseConfig) { b.Solver.EffectiveIndex = math.NaN() }, "solver.effective_index"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			base := testBase()
			tc.mutate(&base)
			err := base.Validate()
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %v", err)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestBaseConfig_Validate_FixedUnitCellNeedsNoScaling(t *testing.T) {
	// GIVEN a fixed unit cell and an explicit effective index
	base := testBase()
	base.Geometry.UnitCellNM = 7750
	base.Geometry.UnitCellFactor = 0
	base.Geometry.ReferenceWidthNM = 0
	base.Solver.EffectiveIndex = 1.18

	// THEN no reference width is required
	assert.NoError(t, base.Validate())
}

func TestBuildConfiguration_ScalesWithWidth(t *testing.T) {
	// GIVEN the tutorial template (reference width 315nm)
	base := testBase()

	// WHEN building the configuration for a 315nm and a 630nm width
	c1, err := BuildConfiguration(base, ParameterPoint{Index: 0, Value: 315})
	require.NoError(t, err)
	c2, err := BuildConfiguration(base, ParameterPoint{Index: 1, Value: 630})
	require.NoError(t, err)

	// THEN the unit cell and n_eff guess scale with width/reference
	assert.InDelta(t, 2.5*1550, c1.UnitCellXNM, 1e-9)
	assert.InDelta(t, 2*2.5*1550, c2.UnitCellXNM, 1e-9)
	assert.InDelta(t, 0.9*315, c1.HeightNM, 1e-9)
	assert.InDelta(t, 3.38, c1.EffectiveIndex, 1e-12)
	assert.InDelta(t, 2*3.38, c2.EffectiveIndex, 1e-12)
	assert.Equal(t, 1, c2.Index)
	assert.Equal(t, base.Mesh, c2.Mesh)
}

func TestBuildConfiguration_IndependentOfOtherPoints(t *testing.T) {
	// GIVEN the same point built alone and inside a longer sweep
	base := testBase()
	points, err := SweepRange{Min: 300, Max: 400, Count: 6}.Points()
	require.NoError(t, err)

	alone, err := BuildConfiguration(base, points[3])
	require.NoError(t, err)
	for _, p := range points {
		_, err := BuildConfiguration(base, p)
		require.NoError(t, err)
	}
	again, err := BuildConfiguration(base, points[3])
	require.NoError(t, err)

	// THEN the configuration is identical
	assert.Equal(t, alone, again)
}

func TestBuildConfiguration_RejectsNonPositiveWidth(t *testing.T) {
	base := testBase()
	for _, v := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		_, err := BuildConfiguration(base, ParameterPoint{Index: 4, Value: v})
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr), "value %v: expected ConfigurationError, got %v", v, err)
		assert.Equal(t, "points[4]", cfgErr.Field)
	}
}

func TestBuildConfiguration_RejectsInclusionLargerThanCell(t *testing.T) {
	// GIVEN a fixed 500nm unit cell
	base := testBase()
	base.Geometry.UnitCellNM = 500

	// WHEN the width exceeds it
	_, err := BuildConfiguration(base, ParameterPoint{Index: 0, Value: 600})

	// THEN the configuration is rejected
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}
