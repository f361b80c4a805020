package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"podsift/internal/formatter"
	"podsift/internal/shared"
	"podsift/internal/tasks"
)

// Run scans the configured shows and adds new matching episodes to their
// target playlists.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	only := cmd.String("filter")
	dryRun := cmd.Bool("dry-run")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	reportDir := cmd.String("report")
	reportFormat := cmd.String("format")

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized, run 'podsift auth' first", shared.ErrServiceUnavailable)
	}

	if err := r.config.ValidateForRun(); err != nil {
		return err
	}

	if dryRun {
		r.writePlain("Dry run: no episodes will be added.\n\n")
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.RunStart:
				r.writePlain("%s\n\n", update.Message)
			case tasks.ProcessFilter:
				r.writePlain("%s\n", update.Message)
			case tasks.FilterDone:
				r.writePlain("  %s\n\n", update.Message)
			case tasks.FilterFailed:
				r.writePlain("  %s\n\n", update.Message)
			}
		}
	}()

	summary, err := r.engine.Run(ctx, progressCh, tasks.RunOpts{Only: only, DryRun: dryRun})
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(summary.Record(), pretty)
	}

	r.writeSummaryTable(summary)

	if reportDir != "" {
		report, err := formatter.WriteReport(summary, reportDir, reportFormat)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		for _, file := range report.Files {
			r.writePlain("✓ Report written to %s\n", file)
		}
	}

	if summary.Halted {
		return fmt.Errorf("%w: run halted after a filter failure", shared.ErrAPIRequest)
	}
	if summary.FiltersFailed > 0 {
		return fmt.Errorf("%w: %d filter(s) failed", shared.ErrAPIRequest, summary.FiltersFailed)
	}

	return nil
}

func (r *Runner) writeSummaryTable(summary *tasks.RunSummary) {
	headers := []string{"Filter", "Show", "Matched", "Added", "Status"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft}

	rows := make([][]string, 0, len(summary.Results))
	for _, result := range summary.Results {
		status := "ok"
		switch {
		case result.Failed:
			status = "failed: " + result.Err
		case result.Skipped:
			status = "skipped"
		case result.Err != "":
			status = "error: " + result.Err
		case result.DryRun:
			status = "dry run"
		}

		rows = append(rows, []string{
			result.Name,
			result.ShowName,
			strconv.Itoa(result.Matched),
			strconv.Itoa(result.Added),
			status,
		})
	}

	r.writePlain("%s\n", renderTable(headers, rows, aligns))

	label := "added"
	if summary.DryRun {
		label = "would be added"
	}
	r.writePlain("Total: %d matched, %d %s across %d filter(s)\n",
		summary.TotalMatched, summary.TotalAdded, label, summary.FiltersTotal)
}
