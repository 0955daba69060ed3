// Package sim defines the data model of a parametric SBS gain scan.
//
// # Reading Guide
//
// Start with these files to understand a campaign:
//   - sweep_range.go: SweepRange and the ordered ParameterPoints it expands to
//   - configuration.go: building one independent Configuration per point
//   - result.go: RawResult, ModeRecord and the synthesized Spectrum
//   - errors.go: the typed errors every stage reports
//
// # Architecture
//
// The sim package holds types and the SimulationAdapter interface;
// the pipeline lives in sub-packages:
//   - sim/sweep/: bounded-parallel dispatch with results in submission order
//   - sim/spectrum/: Lorentzian synthesis of one result onto the frequency grid
//   - sim/interp/: piecewise-linear resampling used by synthesis
//   - sim/scan/: stacking spectra into the [grid, parameter] surface
//   - sim/campaign/: the campaign state machine tying the stages together
//   - sim/adapter/: analytic and external-process mode solvers
//   - sim/store/: saving and reloading raw results for replay
//   - sim/render/: heat map and CSV outputs
//   - sim/trace/: per-task timing and state transition records
//
// # Key Interfaces
//
//   - SimulationAdapter: solve one Configuration into a RawResult
//   - campaign.Renderer: consume a finished Surface
//   - store.Store: persist a campaign's raw results
package sim
