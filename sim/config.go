package sim

import (
	"fmt"
	"math"
)

// Inclusion shapes understood by the mode solvers.
const (
	ShapeRectangular = "rectangular"
	ShapeCircular    = "circular"
)

// GeometryConfig groups the waveguide template shared by every configuration
// of a sweep. Lengths are in nanometres.
type GeometryConfig struct {
	WavelengthNM     float64 `yaml:"wavelength_nm" json:"wavelength_nm"`           // pump wavelength (must be > 0)
	Shape            string  `yaml:"shape" json:"shape"`                           // "rectangular" or "circular"
	UnitCellNM       float64 `yaml:"unit_cell_nm" json:"unit_cell_nm"`             // fixed unit cell edge; 0 = scale with the swept width
	UnitCellFactor   float64 `yaml:"unit_cell_factor" json:"unit_cell_factor"`     // unit cell = factor × wavelength × width/reference when UnitCellNM is 0
	ReferenceWidthNM float64 `yaml:"reference_width_nm" json:"reference_width_nm"` // width with known-good meshing parameters
	AspectRatio      float64 `yaml:"aspect_ratio" json:"aspect_ratio"`             // inclusion height / width (default 1)
	Background       string  `yaml:"background" json:"background"`                 // cladding material name
	Core             string  `yaml:"core" json:"core"`                             // inclusion material name
	CoreIndex        float64 `yaml:"core_index" json:"core_index"`                 // refractive index of the core, used for the n_eff guess
}

// MeshConfig groups mesh density parameters. Values are characteristic
// length divisors: larger means finer.
type MeshConfig struct {
	Background float64 `yaml:"background" json:"background"`
	Boundary   float64 `yaml:"boundary" json:"boundary"`
	Core       float64 `yaml:"core" json:"core"`
}

// SolverConfig groups settings passed through to the mode solver.
type SolverConfig struct {
	NumModesEM     int     `yaml:"em_modes" json:"em_modes"`               // electromagnetic modes to solve for (must be > 0)
	NumModesAC     int     `yaml:"ac_modes" json:"ac_modes"`               // acoustic modes to solve for (must be > 0)
	EffectiveIndex float64 `yaml:"effective_index" json:"effective_index"` // n_eff guess; 0 = derive from core index and width
	ShiftHz        float64 `yaml:"shift_hz" json:"shift_hz"`               // eigenvalue shift for the acoustic solve
}

// BaseConfig is the fixed part of every Configuration in a sweep.
type BaseConfig struct {
	Geometry GeometryConfig `yaml:"geometry"`
	Mesh     MeshConfig     `yaml:"mesh"`
	Solver   SolverConfig   `yaml:"solver"`
}

// NewGeometryConfig creates a GeometryConfig for a width-scaled rectangular
// or circular inclusion.
func NewGeometryConfig(wavelengthNM float64, shape string, unitCellFactor, referenceWidthNM, aspectRatio float64,
	background, core string, coreIndex float64) GeometryConfig {
	return GeometryConfig{
		WavelengthNM:     wavelengthNM,
		Shape:            shape,
		UnitCellFactor:   unitCellFactor,
		ReferenceWidthNM: referenceWidthNM,
		AspectRatio:      aspectRatio,
		Background:       background,
		Core:             core,
		CoreIndex:        coreIndex,
	}
}

// NewMeshConfig creates a MeshConfig.
func NewMeshConfig(background, boundary, core float64) MeshConfig {
	return MeshConfig{Background: background, Boundary: boundary, Core: core}
}

// NewSolverConfig creates a SolverConfig.
func NewSolverConfig(numModesEM, numModesAC int, effectiveIndex, shiftHz float64) SolverConfig {
	return SolverConfig{
		NumModesEM:     numModesEM,
		NumModesAC:     numModesAC,
		EffectiveIndex: effectiveIndex,
		ShiftHz:        shiftHz,
	}
}

// ApplyDefaults fills optional fields left at their zero value.
func (b *BaseConfig) ApplyDefaults() {
	if b.Geometry.Shape == "" {
		b.Geometry.Shape = ShapeRectangular
	}
	if b.Geometry.AspectRatio == 0 {
		b.Geometry.AspectRatio = 1
	}
}

// Validate checks the template independently of any swept value.
func (b *BaseConfig) Validate() error {
	g := b.Geometry
	if err := validatePositive("geometry.wavelength_nm", g.WavelengthNM); err != nil {
		return err
	}
	if g.Shape != ShapeRectangular && g.Shape != ShapeCircular {
		return &ConfigurationError{Field: "geometry.shape", Reason: fmt.Sprintf("unknown shape %q; valid: rectangular, circular", g.Shape)}
	}
	if err := validatePositive("geometry.aspect_ratio", g.AspectRatio); err != nil {
		return err
	}
	if g.UnitCellNM < 0 || !isFinite(g.UnitCellNM) {
		return &ConfigurationError{Field: "geometry.unit_cell_nm", Reason: fmt.Sprintf("must be >= 0, got %v", g.UnitCellNM)}
	}
	scaled := g.UnitCellNM == 0 || b.Solver.EffectiveIndex == 0
	if g.UnitCellNM == 0 {
		if err := validatePositive("geometry.unit_cell_factor", g.UnitCellFactor); err != nil {
			return err
		}
	}
	if scaled {
		if err := validatePositive("geometry.reference_width_nm", g.ReferenceWidthNM); err != nil {
			return err
		}
	}
	if b.Solver.EffectiveIndex == 0 && !(g.CoreIndex > 0.1) {
		return &ConfigurationError{Field: "geometry.core_index", Reason: "must exceed 0.1 when solver.effective_index is derived"}
	}
	if err := validatePositive("mesh.background", b.Mesh.Background); err != nil {
		return err
	}
	if err := validatePositive("mesh.boundary", b.Mesh.Boundary); err != nil {
		return err
	}
	if err := validatePositive("mesh.core", b.Mesh.Core); err != nil {
		return err
	}
	if b.Solver.NumModesEM <= 0 {
		return &ConfigurationError{Field: "solver.em_modes", Reason: fmt.Sprintf("must be positive, got %d", b.Solver.NumModesEM)}
	}
	if b.Solver.NumModesAC <= 0 {
		return &ConfigurationError{Field: "solver.ac_modes", Reason: fmt.Sprintf("must be positive, got %d", b.Solver.NumModesAC)}
	}
	if b.Solver.EffectiveIndex < 0 || !isFinite(b.Solver.EffectiveIndex) {
		return &ConfigurationError{Field: "solver.effective_index", Reason: fmt.Sprintf("must be >= 0, got %v", b.Solver.EffectiveIndex)}
	}
	if b.Solver.ShiftHz < 0 || !isFinite(b.Solver.ShiftHz) {
		return &ConfigurationError{Field: "solver.shift_hz", Reason: fmt.Sprintf("must be >= 0, got %v", b.Solver.ShiftHz)}
	}
	return nil
}

func validatePositive(field string, v float64) error {
	if !(v > 0) || math.IsInf(v, 1) {
		return &ConfigurationError{Field: field, Reason: fmt.Sprintf("must be a finite positive number, got %v", v)}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
