//go:build !windows

// path_unix.go resolves the documents directory on Unix systems (Linux,
// macOS, BSD).
//
// XDG_DOCUMENTS_DIR is honoured when set because desktop environments export
// it for localised folder names ("Dokumente", "Documents", ...). Otherwise the
// conventional ~/Documents is used, which is also the macOS location.

package path

import (
	"os"
	"path/filepath"
)

func documentsDir() (string, error) {
	if dir := os.Getenv("XDG_DOCUMENTS_DIR"); dir != "" && filepath.IsAbs(dir) {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", ErrNoDocumentsDir
	}
	return filepath.Join(home, "Documents"), nil
}
