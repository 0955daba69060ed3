package sim

import "context"

//go:generate mockgen -destination=mocks/mock_adapter.go -package=mocks github.com/EMinsight/NumBAT/sim SimulationAdapter

// SimulationAdapter runs the physics mode solver for one configuration.
// Implementations must be safe for concurrent use: the sweep driver calls
// Simulate from several goroutines at once, each with its own Configuration.
// Failures should wrap ErrMeshFailure, ErrNonConvergence or
// ErrEigenDecomposition when the cause is known.
type SimulationAdapter interface {
	Simulate(ctx context.Context, cfg Configuration) (RawResult, error)
}

// AdapterFunc adapts a function to the SimulationAdapter interface.
type AdapterFunc func(ctx context.Context, cfg Configuration) (RawResult, error)

// Simulate calls f(ctx, cfg).
func (f AdapterFunc) Simulate(ctx context.Context, cfg Configuration) (RawResult, error) {
	return f(ctx, cfg)
}
