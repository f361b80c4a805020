// package formatter exports run reports to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"podsift/internal/shared"
	"podsift/internal/tasks"
)

// ExportToCSV converts a run summary to CSV with one row per matched
// episode: Filter, Show, Episode, URI, Released, Added.
func ExportToCSV(summary *tasks.RunSummary) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Filter", "Show", "Episode", "URI", "Released", "Added"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, result := range summary.Results {
		added := result.Added > 0
		for _, episode := range result.MatchedEpisodes {
			record := []string{
				result.Name,
				result.ShowName,
				episode.Name,
				episode.URI,
				episode.ReleaseDate,
				strconv.FormatBool(added),
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a run summary to Markdown.
func ExportToMarkdown(summary *tasks.RunSummary) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Run %s\n\n", summary.RunID))
	buf.WriteString(fmt.Sprintf("**Started**: %s\n", summary.StartedAt.Format("2006-01-02 15:04:05")))
	buf.WriteString(fmt.Sprintf("**Filters processed**: %d/%d\n", summary.FiltersProcessed, summary.FiltersTotal))
	if summary.FiltersFailed > 0 {
		buf.WriteString(fmt.Sprintf("**Failed filters**: %d\n", summary.FiltersFailed))
	}
	buf.WriteString(fmt.Sprintf("**Matched**: %d\n", summary.TotalMatched))
	buf.WriteString(fmt.Sprintf("**Added**: %d\n\n", summary.TotalAdded))

	for _, result := range summary.Results {
		buf.WriteString(fmt.Sprintf("## %s\n\n", result.Name))

		switch {
		case result.Skipped:
			buf.WriteString("Skipped: incomplete rule.\n\n")
			continue
		case result.Err != "":
			buf.WriteString(fmt.Sprintf("Error: %s\n\n", result.Err))
		}

		if result.ShowName != "" {
			buf.WriteString(fmt.Sprintf("**Show**: %s\n", result.ShowName))
		}
		buf.WriteString(fmt.Sprintf("**Matched**: %d, **Added**: %d\n\n", result.Matched, result.Added))

		for i, episode := range result.MatchedEpisodes {
			duration := shared.FormatDuration(episode.DurationMS)
			buf.WriteString(fmt.Sprintf("%d. %s (%s) [%s]\n", i+1, episode.Name, episode.ReleaseDate, duration))
		}
		if len(result.MatchedEpisodes) > 0 {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a run summary to plain text.
func ExportToText(summary *tasks.RunSummary) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Run: %s\n", summary.RunID))
	buf.WriteString(fmt.Sprintf("Filters processed: %d/%d\n", summary.FiltersProcessed, summary.FiltersTotal))
	if summary.FiltersFailed > 0 {
		buf.WriteString(fmt.Sprintf("Failed filters: %d\n", summary.FiltersFailed))
	}
	buf.WriteString(fmt.Sprintf("Total matching episodes found: %d\n", summary.TotalMatched))
	buf.WriteString(fmt.Sprintf("Total episodes added: %d\n\n", summary.TotalAdded))

	for _, result := range summary.Results {
		buf.WriteString(fmt.Sprintf("%s (%s): %d matched, %d added\n", result.Name, result.ShowName, result.Matched, result.Added))
		for _, episode := range result.MatchedEpisodes {
			buf.WriteString(fmt.Sprintf("  - %s\n", episode.Name))
		}
	}

	return buf.Bytes(), nil
}

// ReportResult contains the paths of files created by WriteReport.
type ReportResult struct {
	Files []string
}

// WriteReport exports a run summary to the given directory in the requested
// format (csv, markdown, or txt; json by default). Filenames are derived
// from the run ID.
func WriteReport(summary *tasks.RunSummary, dir, format string) (*ReportResult, error) {
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	var data []byte
	var err error
	var ext string

	switch format {
	case "csv":
		data, err = ExportToCSV(summary)
		ext = "csv"
	case "markdown", "md":
		data, err = ExportToMarkdown(summary)
		ext = "md"
	case "txt", "text":
		data, err = ExportToText(summary)
		ext = "txt"
	case "json", "":
		data, err = shared.MarshalJSON(summary.Record(), true)
		ext = "json"
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("run_%s.%s", summary.RunID, ext))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write report file: %w", err)
	}

	return &ReportResult{Files: []string{path}}, nil
}
