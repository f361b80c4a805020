// Spotify API implementation of [EpisodeService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"podsift/internal/shared"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Maximum items per request allowed by the Spotify API for episode and
	// playlist-item listings.
	SpotifyMaxPageSize = 50

	// Default client-side request pacing (requests per second).
	spotifyRequestRate = 10
)

// SpotifyShow represents a Spotify show (podcast series).
type SpotifyShow struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Publisher     string `json:"publisher"`
	Description   string `json:"description"`
	TotalEpisodes int    `json:"total_episodes"`
	URI           string `json:"uri"`
}

// SpotifyEpisode represents a single episode of a show.
type SpotifyEpisode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URI         string `json:"uri"`
	ReleaseDate string `json:"release_date"`
	DurationMS  int    `json:"duration_ms"`
}

// SpotifyPaginatedEpisodes represents a paginated response of show episodes.
type SpotifyPaginatedEpisodes struct {
	Items    []SpotifyEpisode `json:"items"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
}

type playlistTracks struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Public      bool           `json:"public"`
	Tracks      playlistTracks `json:"tracks"`
	URI         string         `json:"uri"`
}

// SpotifyPlaylistItemTrack is the track object within a playlist item.
// Type distinguishes episodes from music tracks and other item kinds.
type SpotifyPlaylistItemTrack struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// SpotifyPlaylistItem represents one entry in a playlist-items listing.
// Track can be null for removed or unavailable items.
type SpotifyPlaylistItem struct {
	AddedAt string                    `json:"added_at"`
	Track   *SpotifyPlaylistItemTrack `json:"track"`
}

// SpotifyPaginatedPlaylistItems represents a paginated response of playlist items.
type SpotifyPaginatedPlaylistItems struct {
	Items    []SpotifyPlaylistItem `json:"items"`
	Total    int                   `json:"total"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
	Next     *string               `json:"next"`
	Previous *string               `json:"previous"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Product     string `json:"product"` // premium, free, etc.
}

// SpotifyService implements the EpisodeService interface for Spotify API interactions.
// Uses [oauth2] for authentication and paces requests with a [rate.Limiter].
type SpotifyService struct {
	config         *oauth2.Config
	token          *oauth2.Token
	tokenSource    oauth2.TokenSource
	httpClient     *http.Client
	limiter        *rate.Limiter
	onTokenRefresh func(*oauth2.Token)
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("missing client_id in credentials")
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("missing client_secret in credentials")
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8888/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-modify-public",
			"playlist-modify-private",
			"playlist-read-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(spotifyRequestRate), 1),
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the underlying [oauth2.Config].
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// SetTokenRefreshCallback registers a function invoked whenever the token
// source produces a new access token, so callers can persist it.
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.onTokenRefresh = fn
}

// Authenticate performs authentication with Spotify. Expects either an
// "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.token = &oauth2.Token{AccessToken: accessToken}
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("failed to exchange auth code: %w", err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("missing access_token or auth_code in credentials")
}

// OAuthenticate installs a refreshing token source seeded with the given
// token. Refreshed tokens are reported through the registered callback.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrNotAuthenticated)
	}

	s.token = token
	s.tokenSource = &refreshableTokenSource{
		source: s.config.TokenSource(ctx, token),
		callback: func(t *oauth2.Token) {
			s.token = t
			if s.onTokenRefresh != nil {
				s.onTokenRefresh(t)
			}
		},
	}

	return nil
}

// refreshableTokenSource wraps an [oauth2.TokenSource] and invokes a callback
// whenever the access token changes, including the first fetch.
type refreshableTokenSource struct {
	source    oauth2.TokenSource
	callback  func(*oauth2.Token)
	lastToken string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	if r.callback != nil && token.AccessToken != r.lastToken {
		r.lastToken = token.AccessToken
		func() {
			defer func() { _ = recover() }()
			r.callback(token)
		}()
	}

	return token, nil
}

// bearerToken resolves the current access token, refreshing through the
// token source when one is installed.
func (s *SpotifyService) bearerToken() (string, error) {
	if s.tokenSource != nil {
		token, err := s.tokenSource.Token()
		if err != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
		}
		return token.AccessToken, nil
	}

	if s.token != nil {
		return s.token.AccessToken, nil
	}

	return "", fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
}

// doRequest performs an authenticated HTTP request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	accessToken, err := s.bearerToken()
	if err != nil {
		return err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("request cancelled: %w", err)
	}

	apiURL := spotifyBaseURL + endpoint

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: status 401", shared.ErrTokenExpired)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("spotify API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, "GET", "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Show retrieves a show by ID.
func (s *SpotifyService) Show(ctx context.Context, showID string) (*SpotifyShow, error) {
	var show SpotifyShow
	endpoint := fmt.Sprintf("/shows/%s", url.PathEscape(showID))
	if err := s.doRequest(ctx, "GET", endpoint, nil, &show); err != nil {
		return nil, err
	}
	return &show, nil
}

// ShowEpisodes retrieves one page of a show's episodes, most recent first.
func (s *SpotifyService) ShowEpisodes(ctx context.Context, showID string, limit, offset int) (*SpotifyPaginatedEpisodes, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > SpotifyMaxPageSize {
		limit = SpotifyMaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	endpoint := fmt.Sprintf("/shows/%s/episodes?limit=%d&offset=%d", url.PathEscape(showID), limit, offset)

	var response SpotifyPaginatedEpisodes
	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// Playlist retrieves a playlist by ID.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*SpotifyPlaylist, error) {
	var playlist SpotifyPlaylist
	endpoint := fmt.Sprintf("/playlists/%s", url.PathEscape(playlistID))
	if err := s.doRequest(ctx, "GET", endpoint, nil, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// PlaylistItems retrieves one page of a playlist's items.
func (s *SpotifyService) PlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*SpotifyPaginatedPlaylistItems, error) {
	if limit <= 0 || limit > SpotifyMaxPageSize {
		limit = SpotifyMaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistID), limit, offset)

	var response SpotifyPaginatedPlaylistItems
	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// AddItems appends URIs to a playlist in a single request (up to 100 per the API).
func (s *SpotifyService) AddItems(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return fmt.Errorf("no URIs provided")
	}
	if len(uris) > 100 {
		return fmt.Errorf("maximum 100 URIs allowed per request")
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	body := map[string][]string{"uris": uris}

	return s.doRequest(ctx, "POST", endpoint, body, nil)
}

// EpisodeService interface implementation

// GetShow retrieves show metadata by ID.
func (s *SpotifyService) GetShow(ctx context.Context, showID string) (*Show, error) {
	show, err := s.Show(ctx, showID)
	if err != nil {
		if strings.Contains(err.Error(), "status 404") {
			return nil, fmt.Errorf("%w: %s", shared.ErrShowNotFound, showID)
		}
		return nil, err
	}

	return &Show{
		ID:            show.ID,
		Name:          show.Name,
		Publisher:     show.Publisher,
		Description:   show.Description,
		TotalEpisodes: show.TotalEpisodes,
		URI:           show.URI,
	}, nil
}

// GetShowEpisodes retrieves one page of a show's episodes.
func (s *SpotifyService) GetShowEpisodes(ctx context.Context, showID string, limit, offset int) (*EpisodePage, error) {
	response, err := s.ShowEpisodes(ctx, showID, limit, offset)
	if err != nil {
		return nil, err
	}

	page := &EpisodePage{
		Total:  response.Total,
		Limit:  response.Limit,
		Offset: response.Offset,
		Next:   response.Next,
	}

	for _, ep := range response.Items {
		page.Items = append(page.Items, Episode{
			ID:          ep.ID,
			Name:        ep.Name,
			URI:         ep.URI,
			ReleaseDate: ep.ReleaseDate,
			DurationMS:  ep.DurationMS,
		})
	}

	return page, nil
}

// GetPlaylist retrieves playlist metadata by ID.
func (s *SpotifyService) GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error) {
	playlist, err := s.Playlist(ctx, playlistID)
	if err != nil {
		if strings.Contains(err.Error(), "status 404") {
			return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
		}
		return nil, err
	}

	return &Playlist{
		ID:          playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		TrackCount:  playlist.Tracks.Total,
		Public:      playlist.Public,
		URI:         playlist.URI,
	}, nil
}

// GetPlaylistItems retrieves one page of a playlist's items.
func (s *SpotifyService) GetPlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*PlaylistItemsPage, error) {
	response, err := s.PlaylistItems(ctx, playlistID, limit, offset)
	if err != nil {
		return nil, err
	}

	page := &PlaylistItemsPage{
		Total:  response.Total,
		Limit:  response.Limit,
		Offset: response.Offset,
		Next:   response.Next,
	}

	for _, item := range response.Items {
		entry := PlaylistItem{AddedAt: item.AddedAt}
		// Removed or unavailable items come back with a null track. Keep
		// them with a zero Track so page counts match the API response.
		if item.Track != nil {
			entry.Track = PlaylistTrack{
				Type: item.Track.Type,
				URI:  item.Track.URI,
				Name: item.Track.Name,
			}
		}
		page.Items = append(page.Items, entry)
	}

	return page, nil
}

// AddPlaylistItems appends the given URIs to a playlist in one request.
func (s *SpotifyService) AddPlaylistItems(ctx context.Context, playlistID string, uris []string) error {
	return s.AddItems(ctx, playlistID, uris)
}
