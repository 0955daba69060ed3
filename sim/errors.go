package sim

import (
	"errors"
	"fmt"
)

// Causes reported by simulation adapters. Adapters wrap one of these in the
// error they return so callers can classify failures with errors.Is.
var (
	ErrMeshFailure        = errors.New("mesh generation failed")
	ErrNonConvergence     = errors.New("solver did not converge")
	ErrEigenDecomposition = errors.New("eigen-decomposition failed")
)

// ConfigurationError reports invalid geometry, solver or sweep parameters.
// It is always raised before any configuration is dispatched.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// SimulationError reports an adapter failure for a single configuration.
type SimulationError struct {
	Index int
	Point ParameterPoint
	Cause error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation of configuration %d (value %g) failed: %v", e.Index, e.Point.Value, e.Cause)
}

func (e *SimulationError) Unwrap() error { return e.Cause }

// SynthesisError reports a degenerate mode encountered while synthesizing the
// spectrum of one configuration.
type SynthesisError struct {
	Config int // configuration (point) index
	Mode   int // ModeRecord.Index of the offending mode
	Reason string
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis of configuration %d: mode %d: %s", e.Config, e.Mode, e.Reason)
}

// AssemblyError reports spectra that cannot be stacked into one surface.
type AssemblyError struct {
	Column int // -1 when the error is not specific to a column
	Reason string
}

func (e *AssemblyError) Error() string {
	if e.Column < 0 {
		return "assembly: " + e.Reason
	}
	return fmt.Sprintf("assembly: column %d: %s", e.Column, e.Reason)
}
