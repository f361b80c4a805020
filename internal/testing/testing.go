// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"podsift/internal/services"
)

// MockEpisodeService is a configurable test double for
// [services.EpisodeService]. Zero values return empty results; set the
// fields a test cares about.
type MockEpisodeService struct {
	Show          *services.Show
	ShowErr       error
	EpisodePages  []services.EpisodePage
	EpisodesErr   error
	Playlist      *services.Playlist
	PlaylistErr   error
	ItemPages     []services.PlaylistItemsPage
	ItemsErr      error
	AddErr        error
	AddedURIs     [][]string // URIs recorded per AddPlaylistItems call
	EpisodeCalls  int
	ItemCalls     int
}

func (m *MockEpisodeService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *MockEpisodeService) GetShow(ctx context.Context, showID string) (*services.Show, error) {
	if m.ShowErr != nil {
		return nil, m.ShowErr
	}
	if m.Show != nil {
		return m.Show, nil
	}
	return &services.Show{ID: showID, Name: "Mock Show"}, nil
}

func (m *MockEpisodeService) GetShowEpisodes(ctx context.Context, showID string, limit, offset int) (*services.EpisodePage, error) {
	call := m.EpisodeCalls
	m.EpisodeCalls++
	if m.EpisodesErr != nil {
		return nil, m.EpisodesErr
	}
	if call >= len(m.EpisodePages) {
		return &services.EpisodePage{Limit: limit, Offset: offset}, nil
	}
	page := m.EpisodePages[call]
	return &page, nil
}

func (m *MockEpisodeService) GetPlaylist(ctx context.Context, playlistID string) (*services.Playlist, error) {
	if m.PlaylistErr != nil {
		return nil, m.PlaylistErr
	}
	if m.Playlist != nil {
		return m.Playlist, nil
	}
	return &services.Playlist{ID: playlistID, Name: "Mock Playlist"}, nil
}

func (m *MockEpisodeService) GetPlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*services.PlaylistItemsPage, error) {
	call := m.ItemCalls
	m.ItemCalls++
	if m.ItemsErr != nil {
		return nil, m.ItemsErr
	}
	if call >= len(m.ItemPages) {
		return &services.PlaylistItemsPage{Limit: limit, Offset: offset}, nil
	}
	page := m.ItemPages[call]
	return &page, nil
}

func (m *MockEpisodeService) AddPlaylistItems(ctx context.Context, playlistID string, uris []string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.AddedURIs = append(m.AddedURIs, uris)
	return nil
}

func (m *MockEpisodeService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
