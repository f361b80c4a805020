// package models defines the persistent data model for run history.
package models

import (
	"fmt"
	"time"
)

// RunRecord summarizes one complete filter run for persistence and display.
type RunRecord struct {
	ID               string          `json:"id"`
	StartedAt        time.Time       `json:"started_at"`
	FinishedAt       time.Time       `json:"finished_at"`
	FiltersTotal     int             `json:"filters_total"`
	FiltersProcessed int             `json:"filters_processed"`
	FiltersFailed    int             `json:"filters_failed"`
	TotalMatched     int             `json:"total_matched"`
	TotalAdded       int             `json:"total_added"`
	Filters          []FilterOutcome `json:"filters,omitempty"`
}

// FilterOutcome is the per-rule slice of a RunRecord.
type FilterOutcome struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	ShowName string `json:"show_name,omitempty"`
	Matched  int    `json:"matched"`
	Added    int    `json:"added"`
	Skipped  bool   `json:"skipped,omitempty"`
	Failed   bool   `json:"failed,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Validate checks that the record carries the fields persistence requires.
func (r RunRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("run record requires an id")
	}
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return fmt.Errorf("run record requires start and finish timestamps")
	}
	return nil
}

// Duration returns the wall-clock duration of the run.
func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
