// Package testutil provides shared test infrastructure for the sweep,
// synthesis and campaign packages: float assertions and scripted adapters
// whose results are a pure function of the configuration.
package testutil

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/EMinsight/NumBAT/sim"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// FakeResult is a deterministic stand-in for a solver run: the number of
// modes varies with the configuration index and every mode's centre, width
// and amplitude derive from the swept value.
func FakeResult(cfg sim.Configuration) sim.RawResult {
	v := cfg.Point.Value
	n := 1 + cfg.Index%3
	modes := make([]sim.ModeRecord, n)
	for k := range modes {
		modes[k] = sim.ModeRecord{
			Index:     k,
			Center:    12 + v/100 + 2.5*float64(k),
			Linewidth: 0.05 * float64(k+1),
			Couplings: []sim.Coupling{{Pump: 0, Stokes: 0, Amplitude: v * float64(k+1)}},
		}
	}
	return sim.RawResult{Index: cfg.Index, Point: cfg.Point, Wavenumber: 2e7 + v, Modes: modes}
}

// ReverseOrderAdapter completes configuration i only after configuration
// i+1 has completed, so results arrive in reverse submission order. All n
// tasks must be in flight at once: use a worker count of at least n.
type ReverseOrderAdapter struct {
	n    int
	done []chan struct{}

	mu    sync.Mutex
	order []int
}

// NewReverseOrderAdapter creates an adapter for a sweep of n configurations.
func NewReverseOrderAdapter(n int) *ReverseOrderAdapter {
	done := make([]chan struct{}, n)
	for i := range done {
		done[i] = make(chan struct{})
	}
	return &ReverseOrderAdapter{n: n, done: done}
}

func (a *ReverseOrderAdapter) Simulate(ctx context.Context, cfg sim.Configuration) (sim.RawResult, error) {
	i := cfg.Index
	if i < 0 || i >= a.n {
		return sim.RawResult{}, fmt.Errorf("index %d outside sweep of %d", i, a.n)
	}
	if i+1 < a.n {
		select {
		case <-a.done[i+1]:
		case <-ctx.Done():
			return sim.RawResult{}, ctx.Err()
		}
	}
	a.mu.Lock()
	a.order = append(a.order, i)
	a.mu.Unlock()
	close(a.done[i])
	return FakeResult(cfg), nil
}

// Order returns the indices in completion order.
func (a *ReverseOrderAdapter) Order() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]int, len(a.order))
	copy(out, a.order)
	return out
}

// DelayAdapter sleeps longer for earlier indices, so with any pool size
// later submissions tend to finish first.
type DelayAdapter struct {
	N    int
	Unit time.Duration
}

func (a DelayAdapter) Simulate(ctx context.Context, cfg sim.Configuration) (sim.RawResult, error) {
	select {
	case <-time.After(time.Duration(a.N-cfg.Index) * a.Unit):
	case <-ctx.Done():
		return sim.RawResult{}, ctx.Err()
	}
	return FakeResult(cfg), nil
}

// FailingAdapter fails configuration FailAt with Cause and otherwise behaves
// like FakeResult. Calls counts the Simulate invocations.
type FailingAdapter struct {
	FailAt int
	Cause  error
	Delay  time.Duration

	mu    sync.Mutex
	calls int
}

func (a *FailingAdapter) Simulate(ctx context.Context, cfg sim.Configuration) (sim.RawResult, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	if cfg.Index == a.FailAt {
		return sim.RawResult{}, a.Cause
	}
	if a.Delay > 0 {
		select {
		case <-time.After(a.Delay):
		case <-ctx.Done():
			return sim.RawResult{}, ctx.Err()
		}
	}
	return FakeResult(cfg), nil
}

// Calls returns the number of Simulate invocations so far.
func (a *FailingAdapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// TestBase returns a valid base configuration for width sweeps in nm.
func TestBase() sim.BaseConfig {
	base := sim.BaseConfig{
		Geometry: sim.NewGeometryConfig(1550, sim.ShapeRectangular, 2.5, 315, 0.9, "Air", "Si", 3.48),
		Mesh:     sim.NewMeshConfig(2, 1000, 10),
		Solver:   sim.NewSolverConfig(20, 20, 0, 0),
	}
	base.ApplyDefaults()
	return base
}
