package repositories

import (
	"database/sql"
	"fmt"

	"podsift/internal/models"
	"podsift/internal/shared"
)

// RunRepository persists run summaries and their per-filter outcomes.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a RunRepository with the given database connection.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Record inserts a run and its filter outcomes in one transaction.
func (r *RunRepository) Record(run models.RunRecord) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, started_at, finished_at, filters_total, filters_processed, filters_failed, total_matched, total_added)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.StartedAt,
		run.FinishedAt,
		run.FiltersTotal,
		run.FiltersProcessed,
		run.FiltersFailed,
		run.TotalMatched,
		run.TotalAdded,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, outcome := range run.Filters {
		_, err = tx.Exec(`
			INSERT INTO run_filters (id, run_id, position, name, show_name, matched, added, skipped, failed, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			shared.GenerateID(),
			run.ID,
			outcome.Position,
			outcome.Name,
			outcome.ShowName,
			outcome.Matched,
			outcome.Added,
			outcome.Skipped,
			outcome.Failed,
			outcome.Error,
		)
		if err != nil {
			return fmt.Errorf("failed to insert filter outcome: %w", err)
		}
	}

	return tx.Commit()
}

// ListRecent returns the most recent runs, newest first, including their
// per-filter outcomes.
func (r *RunRepository) ListRecent(limit int) ([]models.RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(`
		SELECT id, started_at, finished_at, filters_total, filters_processed, filters_failed, total_matched, total_added
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.RunRecord
	for rows.Next() {
		var run models.RunRecord
		if err := rows.Scan(
			&run.ID,
			&run.StartedAt,
			&run.FinishedAt,
			&run.FiltersTotal,
			&run.FiltersProcessed,
			&run.FiltersFailed,
			&run.TotalMatched,
			&run.TotalAdded,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	for i := range runs {
		outcomes, err := r.filterOutcomes(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Filters = outcomes
	}

	return runs, nil
}

// Get retrieves one run by ID with its per-filter outcomes.
func (r *RunRepository) Get(id string) (*models.RunRecord, error) {
	var run models.RunRecord
	err := r.db.QueryRow(`
		SELECT id, started_at, finished_at, filters_total, filters_processed, filters_failed, total_matched, total_added
		FROM runs
		WHERE id = ?
	`, id).Scan(
		&run.ID,
		&run.StartedAt,
		&run.FinishedAt,
		&run.FiltersTotal,
		&run.FiltersProcessed,
		&run.FiltersFailed,
		&run.TotalMatched,
		&run.TotalAdded,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	outcomes, err := r.filterOutcomes(run.ID)
	if err != nil {
		return nil, err
	}
	run.Filters = outcomes

	return &run, nil
}

func (r *RunRepository) filterOutcomes(runID string) ([]models.FilterOutcome, error) {
	rows, err := r.db.Query(`
		SELECT position, name, show_name, matched, added, skipped, failed, error
		FROM run_filters
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query filter outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []models.FilterOutcome
	for rows.Next() {
		var outcome models.FilterOutcome
		var showName, errText sql.NullString
		if err := rows.Scan(
			&outcome.Position,
			&outcome.Name,
			&showName,
			&outcome.Matched,
			&outcome.Added,
			&outcome.Skipped,
			&outcome.Failed,
			&errText,
		); err != nil {
			return nil, fmt.Errorf("failed to scan filter outcome: %w", err)
		}
		if showName.Valid {
			outcome.ShowName = showName.String
		}
		if errText.Valid {
			outcome.Error = errText.String
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, rows.Err()
}
