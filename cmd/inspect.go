package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"podsift/internal/filter"
	"podsift/internal/services"
	"podsift/internal/shared"
)

// ShowEpisodes lists a show's most recent episodes.
func (r *Runner) ShowEpisodes(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.String("id")
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	showID := filter.ExtractShowID(ref)
	if showID == "" {
		return fmt.Errorf("%w: %q is not a show ID or URL", shared.ErrInvalidArgument, ref)
	}

	r.logger.Infof("listing episodes for show %v", showID)

	show, err := r.spotify.GetShow(ctx, showID)
	if err != nil {
		if reauthed, authErr := r.handleSpotifyAuthError(ctx, err, cmd); reauthed {
			if authErr != nil {
				return authErr
			}
			if show, err = r.spotify.GetShow(ctx, showID); err != nil {
				return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
			}
		} else {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	page, err := r.spotify.GetShowEpisodes(ctx, showID, limit, 0)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(page, pretty)
	}

	r.writePlain("%s - %s\n", show.Name, show.Publisher)
	r.writePlain("%d episodes total, showing %d most recent:\n\n", show.TotalEpisodes, len(page.Items))

	for i, episode := range page.Items {
		r.writePlain("%d. %s\n", i+1, episode.Name)
		r.writePlain("   Released: %s  Duration: %s\n", episode.ReleaseDate, shared.FormatDuration(episode.DurationMS))
		r.writePlain("   URI: %s\n", episode.URI)
	}

	return nil
}

// PlaylistItems lists a playlist's current items, following pagination.
func (r *Runner) PlaylistItems(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.String("id")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	playlistID := filter.ExtractPlaylistID(ref)
	if playlistID == "" {
		return fmt.Errorf("%w: %q is not a playlist ID or URL", shared.ErrInvalidArgument, ref)
	}

	r.logger.Infof("listing items for playlist %v", playlistID)

	playlist, err := r.spotify.GetPlaylist(ctx, playlistID)
	if err != nil {
		if reauthed, authErr := r.handleSpotifyAuthError(ctx, err, cmd); reauthed {
			if authErr != nil {
				return authErr
			}
			if playlist, err = r.spotify.GetPlaylist(ctx, playlistID); err != nil {
				return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
			}
		} else {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	var items []services.PlaylistItem
	offset := 0
	for {
		page, err := r.spotify.GetPlaylistItems(ctx, playlistID, services.SpotifyMaxPageSize, offset)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		items = append(items, page.Items...)
		if page.Next == nil {
			break
		}
		step := len(page.Items)
		if step == 0 {
			step = services.SpotifyMaxPageSize
		}
		offset += step
	}

	if useJSON {
		return r.writeJSON(items, pretty)
	}

	r.writePlain("%s: %d items\n\n", playlist.Name, len(items))

	episodes := 0
	for i, item := range items {
		kind := item.Track.Type
		if kind == "episode" {
			episodes++
		}
		r.writePlain("%d. [%s] %s\n", i+1, kind, item.Track.Name)
	}

	r.writePlain("\n%d of %d items are episodes\n", episodes, len(items))

	return nil
}
