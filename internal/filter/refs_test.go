package filter

import "testing"

func TestExtractShowID(t *testing.T) {
	t.Run("Bare ID", func(t *testing.T) {
		if got := ExtractShowID("4rOoJ6Egrf8K2IrywzwOMk"); got != "4rOoJ6Egrf8K2IrywzwOMk" {
			t.Errorf("expected bare ID to pass through, got %q", got)
		}
	})

	t.Run("Full URL", func(t *testing.T) {
		if got := ExtractShowID("https://open.spotify.com/show/4rOoJ6Egrf8K2IrywzwOMk"); got != "4rOoJ6Egrf8K2IrywzwOMk" {
			t.Errorf("expected ID from URL, got %q", got)
		}
	})

	t.Run("URL With Query String", func(t *testing.T) {
		if got := ExtractShowID("https://open.spotify.com/show/4rOoJ6Egrf8K2IrywzwOMk?si=abc123"); got != "4rOoJ6Egrf8K2IrywzwOMk" {
			t.Errorf("expected query string stripped, got %q", got)
		}
	})

	t.Run("Non-Show URL Passes Through Unchanged", func(t *testing.T) {
		ref := "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M"
		if got := ExtractShowID(ref); got != ref {
			t.Errorf("expected passthrough for non-show reference, got %q", got)
		}
	})

	t.Run("Empty Input", func(t *testing.T) {
		if got := ExtractShowID(""); got != "" {
			t.Errorf("expected empty result, got %q", got)
		}
	})
}

func TestExtractPlaylistID(t *testing.T) {
	t.Run("Bare ID", func(t *testing.T) {
		if got := ExtractPlaylistID("37i9dQZF1DXcBWIGoYBM5M"); got != "37i9dQZF1DXcBWIGoYBM5M" {
			t.Errorf("expected bare ID to pass through, got %q", got)
		}
	})

	t.Run("Full URL With Query String", func(t *testing.T) {
		if got := ExtractPlaylistID("https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=xyz"); got != "37i9dQZF1DXcBWIGoYBM5M" {
			t.Errorf("expected ID from URL, got %q", got)
		}
	})

	t.Run("Non-Playlist URL Passes Through Unchanged", func(t *testing.T) {
		ref := "https://open.spotify.com/show/4rOoJ6Egrf8K2IrywzwOMk"
		if got := ExtractPlaylistID(ref); got != ref {
			t.Errorf("expected passthrough for non-playlist reference, got %q", got)
		}
	})
}
