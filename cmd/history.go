package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"podsift/internal/repositories"
	"podsift/internal/shared"
)

// History lists recent run summaries from the local database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")

	repo, ok := r.history.(*repositories.RunRepository)
	if !ok || repo == nil {
		return fmt.Errorf("%w: database not initialized, run 'podsift setup database' first", shared.ErrServiceUnavailable)
	}

	runs, err := repo.ListRecent(limit)
	if err != nil {
		return fmt.Errorf("failed to load run history: %w", err)
	}

	if useJSON {
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		r.writePlain("No recorded runs.\n")
		return nil
	}

	headers := []string{"Run", "Started", "Duration", "Filters", "Failed", "Matched", "Added"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID[:8],
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Duration().Round(time.Millisecond).String(),
			fmt.Sprintf("%d/%d", run.FiltersProcessed, run.FiltersTotal),
			strconv.Itoa(run.FiltersFailed),
			strconv.Itoa(run.TotalMatched),
			strconv.Itoa(run.TotalAdded),
		})
	}

	r.writePlain("%s\n", renderTable(headers, rows, aligns))
	return nil
}
