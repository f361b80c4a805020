package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var goos = func() string { return runtime.GOOS }

// OpenBrowser opens url in the system browser. The auth command uses it
// to hand the Spotify authorization page to the user; callers fall back
// to printing the URL when it fails.
func OpenBrowser(url string) error {
	var name string
	args := []string{url}

	switch goos() {
	case "darwin":
		name = "open"
	case "linux":
		name = "xdg-open"
	case "windows":
		name = "cmd"
		args = []string{"/c", "start", url}
	default:
		return fmt.Errorf("no browser launcher for platform %s", goos())
	}

	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	return nil
}
