package trace

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// TraceSummary aggregates statistics from a CampaignTrace.
type TraceSummary struct {
	Dispatched   int
	TotalTasks   int
	FailedTasks  int
	TotalModes   int
	DroppedCount int
	MeanElapsed  time.Duration
	P50Elapsed   time.Duration
	P95Elapsed   time.Duration
	MaxElapsed   time.Duration
	SlowestIndex int // -1 when no tasks were recorded
	FinalState   string
}

// Summarize computes aggregate statistics from a CampaignTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(ct *CampaignTrace) *TraceSummary {
	summary := &TraceSummary{SlowestIndex: -1}
	if ct == nil {
		return summary
	}

	tasks := ct.Tasks()
	summary.Dispatched = ct.Dispatched()
	summary.TotalTasks = len(tasks)
	summary.DroppedCount = len(ct.Drops())

	if len(tasks) > 0 {
		var total time.Duration
		elapsed := make([]float64, len(tasks))
		for i, task := range tasks {
			total += task.Elapsed
			elapsed[i] = float64(task.Elapsed)
			summary.TotalModes += task.Modes
			if task.Err != "" {
				summary.FailedTasks++
			}
			if summary.SlowestIndex < 0 || task.Elapsed > summary.MaxElapsed {
				summary.MaxElapsed = task.Elapsed
				summary.SlowestIndex = task.Index
			}
		}
		summary.MeanElapsed = total / time.Duration(len(tasks))

		sort.Float64s(elapsed)
		summary.P50Elapsed = time.Duration(stat.Quantile(0.5, stat.Empirical, elapsed, nil))
		summary.P95Elapsed = time.Duration(stat.Quantile(0.95, stat.Empirical, elapsed, nil))
	}

	if transitions := ct.Transitions(); len(transitions) > 0 {
		summary.FinalState = transitions[len(transitions)-1].To
	}
	return summary
}
