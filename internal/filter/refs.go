package filter

import "strings"

// ExtractShowID reduces a show reference to a bare Spotify ID.
//
// Accepts either a bare ID or an open.spotify.com/show/ URL; a URL form is
// reduced to its trailing identifier segment with any query suffix dropped.
func ExtractShowID(ref string) string {
	return extractID(ref, "show/")
}

// ExtractPlaylistID reduces a playlist reference to a bare Spotify ID.
func ExtractPlaylistID(ref string) string {
	return extractID(ref, "playlist/")
}

func extractID(ref, segment string) string {
	if !strings.Contains(ref, "open.spotify.com/"+segment) {
		return ref
	}

	idx := strings.LastIndex(ref, segment)
	id := ref[idx+len(segment):]
	if q := strings.Index(id, "?"); q >= 0 {
		id = id[:q]
	}

	return id
}
