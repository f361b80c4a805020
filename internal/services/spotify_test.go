package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"podsift/internal/shared"
)

// stubRoundTripper returns a fixed response for every request.
type stubRoundTripper struct {
	response *http.Response
	err      error
}

func (s *stubRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return s.response, s.err
}

func testCredentials() map[string]string {
	return map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

// authedService returns a service with a static token and a scripted HTTP response.
func authedService(t *testing.T, response *http.Response, err error) *SpotifyService {
	t.Helper()

	srv, newErr := NewSpotifyService(testCredentials())
	if newErr != nil {
		t.Fatalf("failed to create service: %v", newErr)
	}

	srv.token = &oauth2.Token{AccessToken: "test_token"}
	srv.httpClient = &http.Client{Transport: &stubRoundTripper{response: response, err: err}}

	return srv
}

func TestSpotifyService(t *testing.T) {
	ctx := context.Background()

	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv == nil {
				t.Fatal("expected service to be created")
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "s"})
			if err == nil {
				t.Error("expected error for missing client_id")
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "i"})
			if err == nil {
				t.Error("expected error for missing client_secret")
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.config.RedirectURL != "http://localhost:8888/callback" {
				t.Errorf("expected default redirect URI, got %s", srv.config.RedirectURL)
			}
		})
	})

	t.Run("GetAuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials())
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")
		if !strings.Contains(authURL, "accounts.spotify.com") {
			t.Error("auth URL should contain Spotify domain")
		}
		if !strings.Contains(authURL, "test_client_id") {
			t.Error("auth URL should contain client_id")
		}
		if !strings.Contains(authURL, "test_state") {
			t.Error("auth URL should contain state")
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials())
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("With Access Token", func(t *testing.T) {
			if err := srv.Authenticate(ctx, map[string]string{"access_token": "tok"}); err != nil {
				t.Errorf("expected no error with access token, got %v", err)
			}
		})

		t.Run("Without Credentials", func(t *testing.T) {
			if err := srv.Authenticate(ctx, map[string]string{}); err == nil {
				t.Error("expected error without credentials")
			}
		})
	})

	t.Run("OAuthenticate", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials())
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("Rejects Nil Token", func(t *testing.T) {
			if err := srv.OAuthenticate(ctx, nil); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("Installs Token Source", func(t *testing.T) {
			if err := srv.OAuthenticate(ctx, &oauth2.Token{AccessToken: "tok"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.tokenSource == nil {
				t.Error("expected token source to be installed")
			}
		})
	})

	t.Run("GetShow", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			body := `{"id":"show1","name":"Tech Talks","publisher":"Example","total_episodes":120}`
			srv := authedService(t, jsonResponse(200, body), nil)

			show, err := srv.GetShow(ctx, "show1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if show.Name != "Tech Talks" || show.TotalEpisodes != 120 {
				t.Errorf("unexpected show: %+v", show)
			}
		})

		t.Run("Not Found", func(t *testing.T) {
			srv := authedService(t, jsonResponse(404, `{}`), nil)

			_, err := srv.GetShow(ctx, "missing")
			if !errors.Is(err, shared.ErrShowNotFound) {
				t.Errorf("expected ErrShowNotFound, got %v", err)
			}
		})
	})

	t.Run("GetPlaylist Not Found", func(t *testing.T) {
		srv := authedService(t, jsonResponse(404, `{}`), nil)

		_, err := srv.GetPlaylist(ctx, "missing")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("GetShowEpisodes", func(t *testing.T) {
		body := `{
			"items": [
				{"id":"e1","name":"Episode One","uri":"spotify:episode:e1","release_date":"2024-05-01","duration_ms":1800000},
				{"id":"e2","name":"Episode Two","uri":"spotify:episode:e2","release_date":"2024-04-24","duration_ms":2400000}
			],
			"total": 2, "limit": 50, "offset": 0, "next": null
		}`
		srv := authedService(t, jsonResponse(200, body), nil)

		page, err := srv.GetShowEpisodes(ctx, "show1", 50, 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(page.Items) != 2 {
			t.Fatalf("expected 2 episodes, got %d", len(page.Items))
		}
		if page.Items[0].URI != "spotify:episode:e1" {
			t.Errorf("unexpected first episode: %+v", page.Items[0])
		}
		if page.Next != nil {
			t.Error("expected no next page")
		}
	})

	t.Run("GetPlaylistItems Keeps Null-Track Items", func(t *testing.T) {
		// Removed items have a null track but still occupy a page slot;
		// dropping them would skew the counts pagination relies on.
		body := `{
			"items": [
				{"added_at":"2024-05-01T00:00:00Z","track":{"type":"episode","uri":"spotify:episode:e1","name":"Episode One"}},
				{"added_at":"2024-05-02T00:00:00Z","track":null}
			],
			"total": 2, "limit": 50, "offset": 0, "next": null
		}`
		srv := authedService(t, jsonResponse(200, body), nil)

		page, err := srv.GetPlaylistItems(ctx, "pl1", 50, 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(page.Items) != 2 {
			t.Fatalf("expected both items kept, got %d items", len(page.Items))
		}
		if page.Items[0].Track.Type != "episode" {
			t.Errorf("unexpected track: %+v", page.Items[0].Track)
		}
		if page.Items[1].Track.Type != "" || page.Items[1].Track.URI != "" {
			t.Errorf("expected zero track for null-track item, got %+v", page.Items[1].Track)
		}
	})

	t.Run("AddPlaylistItems", func(t *testing.T) {
		t.Run("Rejects Empty URI List", func(t *testing.T) {
			srv := authedService(t, jsonResponse(201, `{}`), nil)
			if err := srv.AddPlaylistItems(ctx, "pl1", nil); err == nil {
				t.Error("expected error for empty URI list")
			}
		})

		t.Run("Rejects Oversized Batch", func(t *testing.T) {
			srv := authedService(t, jsonResponse(201, `{}`), nil)
			uris := make([]string, 101)
			for i := range uris {
				uris[i] = "spotify:episode:x"
			}
			if err := srv.AddPlaylistItems(ctx, "pl1", uris); err == nil {
				t.Error("expected error for more than 100 URIs")
			}
		})

		t.Run("Success", func(t *testing.T) {
			srv := authedService(t, jsonResponse(201, `{"snapshot_id":"abc"}`), nil)
			if err := srv.AddPlaylistItems(ctx, "pl1", []string{"spotify:episode:e1"}); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	})

	t.Run("doRequest", func(t *testing.T) {
		t.Run("Unauthorized Maps To Token Expired", func(t *testing.T) {
			srv := authedService(t, jsonResponse(401, `{}`), nil)

			_, err := srv.GetShow(ctx, "show1")
			if !errors.Is(err, shared.ErrTokenExpired) {
				t.Errorf("expected ErrTokenExpired, got %v", err)
			}
		})

		t.Run("Server Error Surfaces Status", func(t *testing.T) {
			srv := authedService(t, jsonResponse(503, `{}`), nil)

			_, err := srv.GetShow(ctx, "show1")
			if err == nil || !strings.Contains(err.Error(), "status 503") {
				t.Errorf("expected status in error, got %v", err)
			}
		})

		t.Run("Not Authenticated", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials())
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			_, err = srv.GetShow(ctx, "show1")
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	})
}

// scriptedTokenSource returns queued tokens and errors in order.
type scriptedTokenSource struct {
	tokens []*oauth2.Token
	errs   []error
	calls  int
}

func (s *scriptedTokenSource) Token() (*oauth2.Token, error) {
	i := s.calls
	s.calls++

	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return nil, err
	}
	if i >= len(s.tokens) {
		i = len(s.tokens) - 1
	}
	return s.tokens[i], nil
}

func TestRefreshableTokenSource(t *testing.T) {
	t.Run("Callback Fires On First Fetch", func(t *testing.T) {
		var seen []*oauth2.Token
		rts := &refreshableTokenSource{
			source:   &scriptedTokenSource{tokens: []*oauth2.Token{{AccessToken: "a"}}},
			callback: func(tok *oauth2.Token) { seen = append(seen, tok) },
		}

		if _, err := rts.Token(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(seen) != 1 || seen[0].AccessToken != "a" {
			t.Errorf("expected callback with first token, got %v", seen)
		}
	})

	t.Run("Callback Skipped When Token Unchanged", func(t *testing.T) {
		calls := 0
		rts := &refreshableTokenSource{
			source:   &scriptedTokenSource{tokens: []*oauth2.Token{{AccessToken: "a"}}},
			callback: func(*oauth2.Token) { calls++ },
		}

		rts.Token()
		rts.Token()
		rts.Token()

		if calls != 1 {
			t.Errorf("expected a single callback for an unchanged token, got %d", calls)
		}
	})

	t.Run("Callback Fires On Change", func(t *testing.T) {
		calls := 0
		rts := &refreshableTokenSource{
			source: &scriptedTokenSource{tokens: []*oauth2.Token{
				{AccessToken: "a"},
				{AccessToken: "b"},
			}},
			callback: func(*oauth2.Token) { calls++ },
		}

		rts.Token()
		rts.Token()

		if calls != 2 {
			t.Errorf("expected callback for each distinct token, got %d", calls)
		}
	})

	t.Run("Callback Panic Is Contained", func(t *testing.T) {
		rts := &refreshableTokenSource{
			source:   &scriptedTokenSource{tokens: []*oauth2.Token{{AccessToken: "a"}}},
			callback: func(*oauth2.Token) { panic("boom") },
		}

		token, err := rts.Token()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token == nil || token.AccessToken != "a" {
			t.Errorf("expected token despite callback panic, got %v", token)
		}
	})

	t.Run("Source Error Propagates", func(t *testing.T) {
		wantErr := errors.New("refresh failed")
		called := false
		rts := &refreshableTokenSource{
			source:   &scriptedTokenSource{errs: []error{wantErr}},
			callback: func(*oauth2.Token) { called = true },
		}

		token, err := rts.Token()
		if !errors.Is(err, wantErr) {
			t.Errorf("expected source error, got %v", err)
		}
		if token != nil {
			t.Error("expected nil token on error")
		}
		if called {
			t.Error("expected no callback on error")
		}
	})
}
