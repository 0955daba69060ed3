package sim

import "fmt"

// Configuration is everything a mode solver needs for one swept value.
// It is built from a BaseConfig and a single ParameterPoint and never refers
// to other points of the sweep.
type Configuration struct {
	Index          int            `json:"index"`
	Point          ParameterPoint `json:"point"`
	WavelengthNM   float64        `json:"wavelength_nm"`
	Shape          string         `json:"shape"`
	WidthNM        float64        `json:"width_nm"`
	HeightNM       float64        `json:"height_nm"`
	UnitCellXNM    float64        `json:"unit_cell_x_nm"`
	UnitCellYNM    float64        `json:"unit_cell_y_nm"`
	Background     string         `json:"background"`
	Core           string         `json:"core"`
	EffectiveIndex float64        `json:"effective_index"` // starting guess for the fundamental EM mode
	Mesh           MeshConfig     `json:"mesh"`
	Solver         SolverConfig   `json:"solver"`
}

// String identifies the configuration in logs.
func (c Configuration) String() string {
	return fmt.Sprintf("Configuration: (Index: %d, Width: %gnm, Height: %gnm, UnitCell: %gnm)",
		c.Index, c.WidthNM, c.HeightNM, c.UnitCellXNM)
}

// BuildConfiguration derives the configuration for point p. The swept value is
// the inclusion width; the unit cell and the effective-index guess scale with
// width/ReferenceWidthNM unless fixed in the base.
func BuildConfiguration(base BaseConfig, p ParameterPoint) (Configuration, error) {
	g := base.Geometry
	width := p.Value
	if !(width > 0) || !isFinite(width) {
		return Configuration{}, &ConfigurationError{
			Field:  fmt.Sprintf("points[%d]", p.Index),
			Reason: fmt.Sprintf("width must be a finite positive number, got %v", width),
		}
	}

	ratio := 1.0
	if g.ReferenceWidthNM > 0 {
		ratio = width / g.ReferenceWidthNM
	}

	unitCell := g.UnitCellNM
	if unitCell == 0 {
		unitCell = g.UnitCellFactor * g.WavelengthNM * ratio
	}
	height := g.AspectRatio * width
	if unitCell <= width || unitCell <= height {
		return Configuration{}, &ConfigurationError{
			Field:  fmt.Sprintf("points[%d]", p.Index),
			Reason: fmt.Sprintf("unit cell %gnm does not enclose a %gnm x %gnm inclusion", unitCell, width, height),
		}
	}

	nEff := base.Solver.EffectiveIndex
	if nEff == 0 {
		nEff = (g.CoreIndex - 0.1) * ratio
	}

	return Configuration{
		Index:          p.Index,
		Point:          p,
		WavelengthNM:   g.WavelengthNM,
		Shape:          g.Shape,
		WidthNM:        width,
		HeightNM:       height,
		UnitCellXNM:    unitCell,
		UnitCellYNM:    unitCell,
		Background:     g.Background,
		Core:           g.Core,
		EffectiveIndex: nEff,
		Mesh:           base.Mesh,
		Solver:         base.Solver,
	}, nil
}
