// Package sweep dispatches the configurations of a parametric sweep to a
// bounded pool of workers and collects their results in submission order.
//
// Run is a barrier: it returns once every configuration has been simulated,
// or as soon as one fails. Results are never streamed and a failed run never
// returns a partial slice. Each worker receives only its own Configuration and
// writes only its own slot of the result slice, so no locking is needed.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/EMinsight/NumBAT/sim"
)

// Observer receives progress notifications from a running sweep. Methods are
// called from worker goroutines and must be safe for concurrent use.
type Observer interface {
	TaskStarted(cfg sim.Configuration)
	TaskFinished(cfg sim.Configuration, result sim.RawResult, elapsed time.Duration, err error)
	// AllDispatched is called once every task has been handed to a worker.
	AllDispatched(n int)
}

// Option configures a Driver.
type Option func(*Driver)

// WithObserver attaches an Observer.
func WithObserver(o Observer) Option {
	return func(d *Driver) { d.observer = o }
}

// Driver runs sweeps with a fixed base configuration and worker count.
type Driver struct {
	base     sim.BaseConfig
	workers  int
	observer Observer
}

// NewDriver validates base and workers.
func NewDriver(base sim.BaseConfig, workers int, opts ...Option) (*Driver, error) {
	if workers < 1 {
		return nil, &sim.ConfigurationError{Field: "workers", Reason: fmt.Sprintf("must be positive, got %d", workers)}
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}
	d := &Driver{base: base, workers: workers}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Workers returns the pool size.
func (d *Driver) Workers() int { return d.workers }

// Configurations builds the configuration of every point. It runs before any
// dispatch so invalid points fail the sweep without touching the adapter.
func (d *Driver) Configurations(points []sim.ParameterPoint) ([]sim.Configuration, error) {
	if len(points) == 0 {
		return nil, &sim.ConfigurationError{Field: "parameter", Reason: "sweep has no points"}
	}
	configs := make([]sim.Configuration, len(points))
	for i, p := range points {
		p.Index = i
		cfg, err := sim.BuildConfiguration(d.base, p)
		if err != nil {
			return nil, err
		}
		configs[i] = cfg
	}
	return configs, nil
}

// Run simulates every point and returns results such that result[i]
// corresponds to points[i]. The first adapter failure cancels the remaining
// work and is returned as a *sim.SimulationError.
func (d *Driver) Run(ctx context.Context, points []sim.ParameterPoint, adapter sim.SimulationAdapter) ([]sim.RawResult, error) {
	configs, err := d.Configurations(points)
	if err != nil {
		return nil, err
	}

	logrus.Infof("Dispatching %d configurations to %d workers", len(configs), d.workers)
	start := time.Now()

	results := make([]sim.RawResult, len(configs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, cfg := range configs {
		i, cfg := i, cfg
		g.Go(func() error {
			// A sibling already failed; nothing started after that point is needed.
			if err := gctx.Err(); err != nil {
				return err
			}
			if d.observer != nil {
				d.observer.TaskStarted(cfg)
			}
			taskStart := time.Now()
			res, err := adapter.Simulate(gctx, cfg)
			elapsed := time.Since(taskStart)
			if err != nil {
				err = &sim.SimulationError{Index: i, Point: cfg.Point, Cause: err}
			} else {
				res.Index = i
				res.Point = cfg.Point
				results[i] = res
			}
			if d.observer != nil {
				d.observer.TaskFinished(cfg, res, elapsed, err)
			}
			if err != nil {
				logrus.Debugf("configuration %d failed after %v: %v", i, elapsed, err)
				return err
			}
			logrus.Debugf("configuration %d (%g) finished in %v with %d modes", i, cfg.Point.Value, elapsed, len(res.Modes))
			return nil
		})
	}
	if d.observer != nil {
		d.observer.AllDispatched(len(configs))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logrus.Infof("Sweep of %d configurations completed in %v", len(configs), time.Since(start))
	return results, nil
}
