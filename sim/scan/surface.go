// Package scan stacks per-configuration spectra into the scan surface of a
// whole sweep.
//
// A Surface is indexed [grid_index, parameter_index]: column j is the
// spectrum of the j-th ParameterPoint and rows follow the grid's increasing
// order. Display conventions that run an axis the other way are expressed
// with a View and never change the stored matrix.
package scan

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/EMinsight/NumBAT/sim"
)

// Surface is the assembled [M, N] matrix of M grid frequencies by N points.
type Surface struct {
	grid   []float64
	points []sim.ParameterPoint
	data   *mat.Dense
}

// Assemble stacks spectra, aligned 1:1 with points, as columns. Every
// spectrum must have the same length and the same grid.
func Assemble(spectra []sim.Spectrum, points []sim.ParameterPoint) (*Surface, error) {
	if len(spectra) == 0 {
		return nil, &sim.AssemblyError{Column: -1, Reason: "no spectra"}
	}
	if len(spectra) != len(points) {
		return nil, &sim.AssemblyError{Column: -1, Reason: fmt.Sprintf("%d spectra for %d parameter points", len(spectra), len(points))}
	}
	ref := spectra[0]
	m := ref.Len()
	if m == 0 {
		return nil, &sim.AssemblyError{Column: 0, Reason: "empty spectrum"}
	}
	if len(ref.Grid) != m {
		return nil, &sim.AssemblyError{Column: 0, Reason: fmt.Sprintf("%d values on a grid of %d", m, len(ref.Grid))}
	}

	data := mat.NewDense(m, len(spectra), nil)
	for j, s := range spectra {
		if s.Len() != m {
			return nil, &sim.AssemblyError{Column: j, Reason: fmt.Sprintf("length %d, want %d", s.Len(), m)}
		}
		if len(s.Grid) != m || !floats.Equal(s.Grid, ref.Grid) {
			return nil, &sim.AssemblyError{Column: j, Reason: "frequency grid differs from column 0"}
		}
		data.SetCol(j, s.Values)
	}

	grid := make([]float64, m)
	copy(grid, ref.Grid)
	pts := make([]sim.ParameterPoint, len(points))
	copy(pts, points)
	return &Surface{grid: grid, points: pts, data: data}, nil
}

// Dims returns the number of grid rows and parameter columns.
func (s *Surface) Dims() (rows, cols int) { return s.data.Dims() }

// At returns the value at grid index i and parameter index j.
func (s *Surface) At(i, j int) float64 { return s.data.At(i, j) }

// Column returns a copy of the spectrum of parameter index j.
func (s *Surface) Column(j int) []float64 { return mat.Col(nil, j, s.data) }

// Row returns a copy of grid row i across the sweep.
func (s *Surface) Row(i int) []float64 { return mat.Row(nil, i, s.data) }

// Grid returns a copy of the shared frequency grid.
func (s *Surface) Grid() []float64 {
	out := make([]float64, len(s.grid))
	copy(out, s.grid)
	return out
}

// Points returns a copy of the parameter points, in column order.
func (s *Surface) Points() []sim.ParameterPoint {
	out := make([]sim.ParameterPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Matrix exposes the surface read-only.
func (s *Surface) Matrix() mat.Matrix { return s.data }

// Max returns the largest value on the surface.
func (s *Surface) Max() float64 { return mat.Max(s.data) }

// Equal reports whether two surfaces are bitwise identical, including grid
// and parameter points.
func (s *Surface) Equal(o *Surface) bool {
	if s == nil || o == nil {
		return s == o
	}
	if !floats.Equal(s.grid, o.grid) || len(s.points) != len(o.points) {
		return false
	}
	for i := range s.points {
		if s.points[i] != o.points[i] {
			return false
		}
	}
	r1, c1 := s.Dims()
	r2, c2 := o.Dims()
	return r1 == r2 && c1 == c2 && mat.Equal(s.data, o.data)
}
