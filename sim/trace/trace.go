package trace

import (
	"sort"
	"sync"
	"time"

	"github.com/EMinsight/NumBAT/sim"
)

// TraceLevel controls the verbosity of campaign tracing.
type TraceLevel string

const (
	// TraceLevelNone records transitions and drops only.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelTasks additionally records every simulation task.
	TraceLevelTasks TraceLevel = "tasks"
)

var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelTasks: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// CampaignTrace collects records during a campaign. Task records arrive from
// worker goroutines, so every method locks.
type CampaignTrace struct {
	Level TraceLevel

	mu          sync.Mutex
	now         func() time.Time
	transitions []TransitionRecord
	tasks       []TaskRecord
	drops       []DropRecord
	dispatched  int
}

// NewCampaignTrace creates a trace ready for recording.
func NewCampaignTrace(level TraceLevel) *CampaignTrace {
	return &CampaignTrace{Level: level, now: time.Now}
}

// RecordTransition appends a state change.
func (ct *CampaignTrace) RecordTransition(from, to string) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.transitions = append(ct.transitions, TransitionRecord{From: from, To: to, At: ct.now()})
}

// RecordDrop appends a dropped column.
func (ct *CampaignTrace) RecordDrop(record DropRecord) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.drops = append(ct.drops, record)
}

// TaskStarted is part of sweep.Observer; starts are not recorded.
func (ct *CampaignTrace) TaskStarted(sim.Configuration) {}

// TaskFinished records the outcome of one simulation when the level is tasks.
func (ct *CampaignTrace) TaskFinished(cfg sim.Configuration, res sim.RawResult, elapsed time.Duration, err error) {
	if ct.Level != TraceLevelTasks {
		return
	}
	rec := TaskRecord{Index: cfg.Index, Value: cfg.Point.Value, Elapsed: elapsed}
	if err != nil {
		rec.Err = err.Error()
	} else {
		rec.Modes = len(res.Modes)
	}
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.tasks = append(ct.tasks, rec)
}

// AllDispatched records how many configurations were submitted.
func (ct *CampaignTrace) AllDispatched(n int) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.dispatched = n
}

// Transitions returns the state changes in the order they happened.
func (ct *CampaignTrace) Transitions() []TransitionRecord {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return append([]TransitionRecord(nil), ct.transitions...)
}

// Tasks returns the task records sorted by configuration index.
func (ct *CampaignTrace) Tasks() []TaskRecord {
	ct.mu.Lock()
	out := append([]TaskRecord(nil), ct.tasks...)
	ct.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Drops returns the dropped columns in the order they were recorded.
func (ct *CampaignTrace) Drops() []DropRecord {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return append([]DropRecord(nil), ct.drops...)
}

// Dispatched returns the count reported by AllDispatched.
func (ct *CampaignTrace) Dispatched() int {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.dispatched
}
