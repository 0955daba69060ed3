// Package trace records what happened during a campaign: state transitions,
// per-configuration task outcomes and dropped columns. It stores pure data
// and depends only on the sim core types.
package trace

import "time"

// TransitionRecord captures one campaign state change.
type TransitionRecord struct {
	From string
	To   string
	At   time.Time
}

// TaskRecord captures one finished simulation task.
type TaskRecord struct {
	Index   int
	Value   float64
	Elapsed time.Duration
	Modes   int    // number of modes returned; 0 on failure
	Err     string // empty on success
}

// DropRecord captures a column excluded from the surface under the
// drop-column failure policy.
type DropRecord struct {
	Index  int
	Value  float64
	Reason string
}
