package tasks

import (
	"fmt"

	"podsift/internal/filter"
)

// ProgressUpdate represents a progress event during a filter run.
//
// Used to send real-time updates to the CLI or TUI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	RunStart Phase = iota
	ProcessFilter
	FilterDone
	FilterFailed
	RunDone
)

func (p Phase) String() string {
	switch p {
	case RunStart:
		return "run_start"
	case ProcessFilter:
		return "process_filter"
	case FilterDone:
		return "filter_done"
	case FilterFailed:
		return "filter_failed"
	case RunDone:
		return "run_done"
	default:
		return ""
	}
}

func runStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RunStart,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Found %d filter configuration(s)", total),
	}
}

func processFilterUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProcessFilter,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Processing filter: %s", step, total, name),
	}
}

func filterDoneUpdate(step, total int, result filter.Result) ProgressUpdate {
	message := fmt.Sprintf("[%d/%d] %s: %d matched, %d added", step, total, result.Name, result.Matched, result.Added)
	if result.Skipped {
		message = fmt.Sprintf("[%d/%d] %s: skipped (incomplete rule)", step, total, result.Name)
	}
	return ProgressUpdate{
		Phase:   FilterDone,
		Step:    step,
		Total:   total,
		Message: message,
		Data:    result,
	}
}

func filterFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FilterFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func runDoneUpdate(summary *RunSummary) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RunDone,
		Step:    summary.FiltersTotal,
		Total:   summary.FiltersTotal,
		Message: fmt.Sprintf("Run complete: %d matched, %d added", summary.TotalMatched, summary.TotalAdded),
		Data:    summary,
	}
}
