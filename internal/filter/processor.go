package filter

import (
	"context"
	"fmt"

	"podsift/internal/services"
	"podsift/internal/shared"

	"github.com/charmbracelet/log"
)

// Result carries the outcome of processing one filter rule.
//
// Matched and Added may diverge: an episode that matched but whose batched
// add request failed is still counted as matched.
type Result struct {
	Name            string             // Filter rule label
	ShowName        string             // Resolved show display name
	Matched         int                // New episodes whose titles matched
	Added           int                // Episodes confirmed appended to the playlist
	MatchedEpisodes []services.Episode // The matched episodes, in fetch order
	Skipped         bool               // Rule was incomplete and contributed nothing
	Failed          bool               // Processing itself failed (set by the run controller)
	Err             string             // Handled step failure, empty on success
	DryRun          bool               // Matching ran but no add request was made
}

// Processor runs one filter rule end to end: resolve references, build the
// playlist's existing-episode set, fetch recent episodes, match titles, and
// append new matches.
//
// Every external-call failure is handled inside Process and terminal for
// that rule only; nothing is retried.
type Processor struct {
	svc      services.EpisodeService
	logger   *log.Logger
	pageSize int
}

// NewProcessor creates a Processor for the given service.
func NewProcessor(svc services.EpisodeService, logger *log.Logger) *Processor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Processor{
		svc:      svc,
		logger:   logger,
		pageSize: services.SpotifyMaxPageSize,
	}
}

// Process runs a single filter rule and returns its Result.
//
// Step failures (show lookup, playlist listing, episode fetch, add request)
// are handled here: logged, recorded on the Result, and never returned as
// errors. The returned error is reserved for failures outside the rule's
// own processing, a missing service or a cancelled context, which the run
// controller counts as a failed filter.
func (p *Processor) Process(ctx context.Context, rule shared.FilterRule, dryRun bool) (Result, error) {
	result := Result{Name: rule.Name, DryRun: dryRun}
	if result.Name == "" {
		result.Name = "Unnamed filter"
	}

	if p.svc == nil {
		return result, fmt.Errorf("%w: episode service not initialized", shared.ErrServiceUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	showID := ExtractShowID(rule.ShowID)
	playlistID := ExtractPlaylistID(rule.TargetPlaylistID)

	if showID == "" || len(rule.NamePatterns) == 0 || playlistID == "" {
		p.logger.Warnf("skipping %q: missing show_id, name_patterns, or target_playlist_id", result.Name)
		result.Skipped = true
		return result, nil
	}

	maxEpisodes := rule.MaxEpisodes
	if maxEpisodes <= 0 {
		maxEpisodes = services.SpotifyMaxPageSize
	}

	matcher := NewMatcher(rule.NamePatterns, p.logger)

	show, err := p.svc.GetShow(ctx, showID)
	if err != nil {
		p.logger.Errorf("error accessing show %s: %v", showID, err)
		result.Err = err.Error()
		return result, ctx.Err()
	}
	result.ShowName = show.Name
	p.logger.Infof("show: %s", show.Name)

	existing, err := p.existingEpisodeURIs(ctx, playlistID)
	if err != nil {
		p.logger.Errorf("error accessing playlist %s: %v", playlistID, err)
		result.Err = err.Error()
		return result, ctx.Err()
	}
	p.logger.Infof("playlist has %d episodes", len(existing))

	p.logger.Infof("checking %d most recent episodes", maxEpisodes)
	episodes := p.fetchRecent(ctx, showID, maxEpisodes)
	if len(episodes) == 0 {
		p.logger.Info("no episodes found")
		return result, ctx.Err()
	}

	var candidates []services.Episode
	for _, episode := range episodes {
		if _, present := existing[episode.URI]; present {
			continue
		}
		if matcher.Matches(episode.Name) {
			candidates = append(candidates, episode)
			p.logger.Infof("match: %s", episode.Name)
		}
	}

	result.Matched = len(candidates)
	result.MatchedEpisodes = candidates

	if len(candidates) == 0 {
		p.logger.Info("no new matching episodes found")
		return result, nil
	}

	if dryRun {
		p.logger.Infof("dry run: %d episodes would be added", len(candidates))
		return result, nil
	}

	uris := make([]string, len(candidates))
	for i, episode := range candidates {
		uris[i] = episode.URI
	}

	if err := p.svc.AddPlaylistItems(ctx, playlistID, uris); err != nil {
		// The match count stands even when the add request fails.
		p.logger.Errorf("error adding episodes to playlist: %v", err)
		result.Err = err.Error()
		return result, ctx.Err()
	}

	result.Added = len(candidates)
	p.logger.Infof("added %d episodes to playlist", result.Added)

	return result, nil
}

// existingEpisodeURIs builds the set of episode URIs currently in the
// playlist. Only items whose track type is "episode" contribute a URI.
//
// Pagination follows Next until the listing reports no further page. A page
// may hold no usable items (every track removed or unavailable) while Next
// is still set, so an empty page must not end the walk.
func (p *Processor) existingEpisodeURIs(ctx context.Context, playlistID string) (map[string]struct{}, error) {
	uris := make(map[string]struct{})
	offset := 0

	for {
		page, err := p.svc.GetPlaylistItems(ctx, playlistID, p.pageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track.Type == "episode" {
				uris[item.Track.URI] = struct{}{}
			}
		}

		if page.Next == nil {
			break
		}
		step := len(page.Items)
		if step == 0 {
			step = p.pageSize
		}
		offset += step
	}

	return uris, nil
}

// fetchRecent retrieves up to limit of the show's most recent episodes,
// batching requests at the API's per-request ceiling.
//
// On any fetch error the partial result is discarded and an empty slice is
// returned with the error logged; callers cannot distinguish a failed fetch
// from a show with no episodes.
func (p *Processor) fetchRecent(ctx context.Context, showID string, limit int) []services.Episode {
	var episodes []services.Episode
	offset := 0

	for len(episodes) < limit {
		remaining := limit - len(episodes)
		batch := p.pageSize
		if remaining < batch {
			batch = remaining
		}

		page, err := p.svc.GetShowEpisodes(ctx, showID, batch, offset)
		if err != nil {
			p.logger.Errorf("error fetching episodes for show %s: %v", showID, err)
			return nil
		}

		if page == nil || len(page.Items) == 0 {
			break
		}

		episodes = append(episodes, page.Items...)

		if page.Next == nil || len(page.Items) < batch {
			break
		}
		offset += len(page.Items)
	}

	if len(episodes) > limit {
		episodes = episodes[:limit]
	}

	return episodes
}
