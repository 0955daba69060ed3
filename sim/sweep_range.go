package sim

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ParameterPoint is one sample of the swept design variable.
type ParameterPoint struct {
	Index int     `json:"index" yaml:"index"`
	Value float64 `json:"value" yaml:"value"`
}

// SweepRange describes an evenly spaced sweep, inclusive of both ends.
type SweepRange struct {
	Name  string  `yaml:"name"` // axis label, e.g. "width"
	Unit  string  `yaml:"unit"` // axis unit, e.g. "nm"
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Count int     `yaml:"count"`
}

// Validate checks the range without generating points.
func (r SweepRange) Validate() error {
	if r.Count < 1 {
		return &ConfigurationError{Field: "parameter.count", Reason: fmt.Sprintf("must be at least 1, got %d", r.Count)}
	}
	if !isFinite(r.Min) || !isFinite(r.Max) {
		return &ConfigurationError{Field: "parameter", Reason: fmt.Sprintf("bounds must be finite, got [%v, %v]", r.Min, r.Max)}
	}
	if r.Min > r.Max {
		return &ConfigurationError{Field: "parameter", Reason: fmt.Sprintf("min %v exceeds max %v", r.Min, r.Max)}
	}
	if r.Count > 1 && r.Min == r.Max {
		return &ConfigurationError{Field: "parameter", Reason: fmt.Sprintf("empty range [%v, %v] for %d points", r.Min, r.Max, r.Count)}
	}
	return nil
}

// Points returns the ordered sweep samples, ascending.
func (r SweepRange) Points() ([]ParameterPoint, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	values := []float64{r.Min}
	if r.Count > 1 {
		values = floats.Span(make([]float64, r.Count), r.Min, r.Max)
	}
	points := make([]ParameterPoint, len(values))
	for i, v := range values {
		points[i] = ParameterPoint{Index: i, Value: v}
	}
	return points, nil
}

// Values returns the swept values of points, in order.
func Values(points []ParameterPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}
