//go:build windows

// path_windows.go resolves the documents directory on Windows.
//
// The known-folder API is not reachable without cgo or x/sys/windows, so the
// profile-relative default is used. Redirected Documents folders can be
// handled by setting storage.root explicitly.

package path

import (
	"os"
	"path/filepath"
)

func documentsDir() (string, error) {
	profile := os.Getenv("USERPROFILE")
	if profile == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return "", ErrNoDocumentsDir
		}
		profile = home
	}
	return filepath.Join(profile, "Documents"), nil
}
