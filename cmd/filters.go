package main

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"podsift/internal/filter"
	"podsift/internal/shared"
)

// FiltersList prints the configured filter rules.
func (r *Runner) FiltersList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	if len(r.config.Filters) == 0 {
		return shared.ErrNoFilters
	}

	if useJSON {
		return r.writeJSON(r.config.Filters, true)
	}

	headers := []string{"#", "Name", "Show", "Playlist", "Patterns", "Max"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}

	rows := make([][]string, 0, len(r.config.Filters))
	for i, rule := range r.config.Filters {
		maxEpisodes := rule.MaxEpisodes
		if maxEpisodes <= 0 {
			maxEpisodes = 50
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			rule.Name,
			filter.ExtractShowID(rule.ShowID),
			filter.ExtractPlaylistID(rule.TargetPlaylistID),
			strings.Join(rule.NamePatterns, ", "),
			strconv.Itoa(maxEpisodes),
		})
	}

	r.writePlain("%s\n", renderTable(headers, rows, aligns))
	return nil
}

// FiltersCheck validates each configured rule: references must resolve to
// IDs and every pattern must compile. Reports problems without aborting at
// the first one.
func (r *Runner) FiltersCheck(ctx context.Context, cmd *cli.Command) error {
	if len(r.config.Filters) == 0 {
		return shared.ErrNoFilters
	}

	problems := 0
	for i, rule := range r.config.Filters {
		name := rule.Name
		if name == "" {
			name = fmt.Sprintf("filter #%d", i+1)
		}

		var issues []string
		if filter.ExtractShowID(rule.ShowID) == "" {
			issues = append(issues, "show_id missing or not a valid reference")
		}
		if filter.ExtractPlaylistID(rule.TargetPlaylistID) == "" {
			issues = append(issues, "target_playlist_id missing or not a valid reference")
		}
		if len(rule.NamePatterns) == 0 {
			issues = append(issues, "no name_patterns configured")
		}
		for _, pattern := range rule.NamePatterns {
			if _, err := regexp.Compile("(?i)" + pattern); err != nil {
				issues = append(issues, fmt.Sprintf("invalid pattern %q: %v", pattern, err))
			}
		}

		if len(issues) == 0 {
			r.writePlain("✓ %s\n", name)
			continue
		}

		problems += len(issues)
		r.writePlain("✗ %s\n", name)
		for _, issue := range issues {
			r.writePlain("    %s\n", issue)
		}
	}

	if problems > 0 {
		return fmt.Errorf("%w: %d problem(s) found", shared.ErrInvalidConfig, problems)
	}

	r.writePlainln("All filters valid.")
	return nil
}
