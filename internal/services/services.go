// package services defines interface EpisodeService for interacting with
// podcast and playlist HTTP APIs (Spotify).
package services

import (
	"context"

	"golang.org/x/oauth2"
)

// EpisodeService defines the operations a podcast provider must expose for
// filter processing: show lookup, paginated episode and playlist-item
// listings, and batched playlist appends.
type EpisodeService interface {
	// Authenticate performs OAuth or token authentication with the service.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// GetShow retrieves show metadata by ID.
	GetShow(ctx context.Context, showID string) (*Show, error)

	// GetShowEpisodes retrieves one page of a show's episodes, most recent
	// first. limit is capped at the provider's per-request ceiling.
	GetShowEpisodes(ctx context.Context, showID string, limit, offset int) (*EpisodePage, error)

	// GetPlaylist retrieves playlist metadata by ID.
	GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error)

	// GetPlaylistItems retrieves one page of a playlist's items.
	GetPlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*PlaylistItemsPage, error)

	// AddPlaylistItems appends the given URIs to a playlist in one request.
	AddPlaylistItems(ctx context.Context, playlistID string, uris []string) error

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService is implemented by services that authenticate via OAuth2
// authorization code flow.
type OAuthService interface {
	GetAuthURL(state string) string
	GetOAuthConfig() *oauth2.Config
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}

// Show represents a podcast series.
type Show struct {
	ID            string
	Name          string
	Publisher     string
	Description   string
	TotalEpisodes int
	URI           string
}

// Episode represents a single installment of a show.
//
// URI is the opaque identifier used for playlist membership; Name is the
// display title that filter patterns run against.
type Episode struct {
	ID          string
	Name        string
	URI         string
	ReleaseDate string
	DurationMS  int
}

// Playlist represents an externally hosted collection of tracks/episodes.
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
	URI         string
}

// EpisodePage is one page of a paginated episode listing.
type EpisodePage struct {
	Items  []Episode
	Total  int
	Limit  int
	Offset int
	Next   *string
}

// PlaylistItem is one entry of a playlist-items listing. Track carries the
// underlying item; only items with track type "episode" are relevant to
// deduplication.
type PlaylistItem struct {
	AddedAt string
	Track   PlaylistTrack
}

// PlaylistTrack is the track portion of a playlist item.
type PlaylistTrack struct {
	Type string
	URI  string
	Name string
}

// PlaylistItemsPage is one page of a paginated playlist-items listing.
type PlaylistItemsPage struct {
	Items  []PlaylistItem
	Total  int
	Limit  int
	Offset int
	Next   *string
}
