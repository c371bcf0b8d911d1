// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

// IsolateHome points the user home at home for the rest of the test and
// returns the platform's user config root inside it, the directory the
// crateprobe config directory is created under.
//
// Platform handling:
//   - Windows: USERPROFILE and APPDATA (home\AppData\Roaming)
//   - macOS: HOME (home/Library/Application Support)
//   - Linux/others: HOME, with XDG_CONFIG_HOME cleared (home/.config)
func IsolateHome(t testing.TB, home string) string {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		root := filepath.Join(home, "AppData", "Roaming")
		t.Cleanup(MustSetenv(t, "USERPROFILE", home))
		t.Cleanup(MustSetenv(t, "APPDATA", root))
		return root
	case "darwin":
		t.Cleanup(MustSetenv(t, "HOME", home))
		return filepath.Join(home, "Library", "Application Support")
	default:
		t.Cleanup(MustSetenv(t, "HOME", home))
		// An empty XDG_CONFIG_HOME falls back to ~/.config.
		t.Cleanup(MustSetenv(t, "XDG_CONFIG_HOME", ""))
		return filepath.Join(home, ".config")
	}
}
