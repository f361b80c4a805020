// package tasks implements the run controller for filter processing.
//
// FilterEngine iterates configured filter rules in order, delegates each to
// a filter.Processor, aggregates counts into an explicit RunSummary value,
// and isolates per-filter failures. Progress is emitted over a channel for
// non-blocking status reporting to CLI/TUI layers.
package tasks

import (
	"context"
	"fmt"
	"time"

	"podsift/internal/filter"
	"podsift/internal/models"
	"podsift/internal/shared"

	"github.com/charmbracelet/log"
)

// RunSummary aggregates the outcome of one complete pass over the
// configured filters. It is built locally by Run and returned, never
// mutated in shared scope.
type RunSummary struct {
	RunID            string          // Unique identifier, also used for history persistence
	StartedAt        time.Time       // Run start
	FinishedAt       time.Time       // Run end
	FiltersTotal     int             // Filters considered
	FiltersProcessed int             // Filters whose Process call returned without error
	FiltersFailed    int             // Filters whose Process call itself failed
	TotalMatched     int             // Sum of per-filter matched counts
	TotalAdded       int             // Sum of per-filter added counts
	Results          []filter.Result // Per-filter results in configured order
	DryRun           bool            // No add requests were issued
	Halted           bool            // Run stopped early because continue_on_error is false
}

// RunOpts configures one engine run.
type RunOpts struct {
	// Only restricts the run to the filter rule with this name. Empty
	// processes all configured rules.
	Only string

	// DryRun matches and counts without issuing add requests.
	DryRun bool
}

// HistoryRecorder persists run summaries. Implemented by
// repositories.RunRepository; nil recorders are skipped.
type HistoryRecorder interface {
	Record(run models.RunRecord) error
}

// FilterEngine is the run controller: it owns the processing order, the
// continue-on-error policy, and summary aggregation.
type FilterEngine struct {
	processor *filter.Processor
	config    *shared.Config
	history   HistoryRecorder
	logger    *log.Logger
}

// NewFilterEngine creates a FilterEngine. history may be nil to skip
// persistence.
func NewFilterEngine(processor *filter.Processor, config *shared.Config, history HistoryRecorder, logger *log.Logger) *FilterEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &FilterEngine{
		processor: processor,
		config:    config,
		history:   history,
		logger:    logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *FilterEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run processes the configured filters sequentially and returns the
// aggregated summary.
//
// A filter whose Process call handles its own step failure internally still
// counts as processed; only an error escaping Process counts as a failed
// filter. When continue_on_error is false the run halts at the first such
// failure. The summary is returned in either case.
func (e *FilterEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts RunOpts) (*RunSummary, error) {
	if e.processor == nil {
		return nil, fmt.Errorf("%w: processor not initialized", shared.ErrServiceUnavailable)
	}
	if e.config == nil {
		return nil, fmt.Errorf("%w: config not loaded", shared.ErrMissingConfig)
	}

	rules := e.config.Filters
	if opts.Only != "" {
		var selected []shared.FilterRule
		for _, rule := range rules {
			if rule.Name == opts.Only {
				selected = append(selected, rule)
			}
		}
		if len(selected) == 0 {
			return nil, fmt.Errorf("%w: no filter named %q", shared.ErrInvalidArgument, opts.Only)
		}
		rules = selected
	}

	if len(rules) == 0 {
		return nil, shared.ErrNoFilters
	}

	summary := &RunSummary{
		RunID:        shared.GenerateID(),
		StartedAt:    time.Now(),
		FiltersTotal: len(rules),
		DryRun:       opts.DryRun,
	}

	e.sendProgress(progress, runStartUpdate(len(rules)))

	for i, rule := range rules {
		e.sendProgress(progress, processFilterUpdate(i+1, len(rules), rule.Name))

		result, err := e.processor.Process(ctx, rule, opts.DryRun)
		if err != nil {
			result.Failed = true
			if result.Err == "" {
				result.Err = err.Error()
			}
			summary.FiltersFailed++
			summary.Results = append(summary.Results, result)
			e.logger.Errorf("error processing filter %q: %v", result.Name, err)
			e.sendProgress(progress, filterFailedUpdate(i+1, len(rules), result.Name, err))

			if !e.config.Global.ContinueOnError {
				e.logger.Warn("stopping run (continue_on_error is false)")
				summary.Halted = true
				break
			}
			continue
		}

		summary.FiltersProcessed++
		summary.TotalMatched += result.Matched
		summary.TotalAdded += result.Added
		summary.Results = append(summary.Results, result)
		e.sendProgress(progress, filterDoneUpdate(i+1, len(rules), result))
	}

	summary.FinishedAt = time.Now()
	e.sendProgress(progress, runDoneUpdate(summary))

	if e.history != nil && !opts.DryRun {
		if err := e.history.Record(summary.Record()); err != nil {
			e.logger.Warnf("failed to record run history: %v", err)
		}
	}

	return summary, nil
}

// Record converts the summary to its persistence form.
func (s *RunSummary) Record() models.RunRecord {
	record := models.RunRecord{
		ID:               s.RunID,
		StartedAt:        s.StartedAt,
		FinishedAt:       s.FinishedAt,
		FiltersTotal:     s.FiltersTotal,
		FiltersProcessed: s.FiltersProcessed,
		FiltersFailed:    s.FiltersFailed,
		TotalMatched:     s.TotalMatched,
		TotalAdded:       s.TotalAdded,
	}

	for i, result := range s.Results {
		record.Filters = append(record.Filters, models.FilterOutcome{
			Position: i,
			Name:     result.Name,
			ShowName: result.ShowName,
			Matched:  result.Matched,
			Added:    result.Added,
			Skipped:  result.Skipped,
			Failed:   result.Failed,
			Error:    result.Err,
		})
	}

	return record
}
