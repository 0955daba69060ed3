// Package interp resamples sampled 1-D functions onto a target grid.
//
// Align is piecewise-linear between consecutive samples and clamps outside
// the sampled domain: a target left of the first sample takes the first
// sample's value, a target right of the last sample takes the last sample's
// value. Nothing is extrapolated. Callers that sample a narrow window around
// a wide feature therefore see the window's edge value repeated across the
// rest of the grid.
package interp

import (
	"errors"
	"fmt"
	"math"

	gonuminterp "gonum.org/v1/gonum/interp"
)

// ErrEmptySamples is returned when Align is given no samples.
var ErrEmptySamples = errors.New("interp: no samples")

// Align evaluates the piecewise-linear function through (xs[i], ys[i]) at
// every point of grid. xs must be strictly increasing.
func Align(xs, ys, grid []float64) ([]float64, error) {
	out := make([]float64, len(grid))
	if err := AlignInto(out, xs, ys, grid); err != nil {
		return nil, err
	}
	return out, nil
}

// AlignInto is Align writing into dst, which must have len(grid).
func AlignInto(dst, xs, ys, grid []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("interp: %d sample positions but %d values", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return ErrEmptySamples
	}
	if len(dst) != len(grid) {
		return fmt.Errorf("interp: destination length %d, grid length %d", len(dst), len(grid))
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return fmt.Errorf("interp: sample positions not strictly increasing at %d (%v after %v)", i, xs[i], xs[i-1])
		}
	}

	for k, x := range grid {
		if math.IsNaN(x) {
			return fmt.Errorf("interp: grid point %d is NaN", k)
		}
	}

	if len(xs) == 1 {
		for k := range dst {
			dst[k] = ys[0]
		}
		return nil
	}
	var pl gonuminterp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return fmt.Errorf("interp: %w", err)
	}
	for k, x := range grid {
		dst[k] = pl.Predict(x)
	}
	return nil
}
