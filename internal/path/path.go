// Package path resolves the platform locations fermi uses on disk: the
// user's documents directory (default parent of the record store) and the
// per-user fermi home holding configuration and the audit log.
//
// Platform differences live in path_unix.go and path_windows.go. Both expose
// documentsDir, which this file wraps with the test override hook.
package path

import (
	"errors"
	"os"
	"path/filepath"
)

// AppID names the application directory created under the documents
// directory when no storage root is configured.
const AppID = "fermi"

// HomeDirName is the per-user directory holding config.json and the log.
const HomeDirName = ".fermi"

// ErrNoDocumentsDir is returned when neither the platform documents
// directory nor the home directory can be determined.
var ErrNoDocumentsDir = errors.New("cannot determine documents directory")

// documentsDirFunc returns the platform documents directory.
// Tests can override this to use a temp directory.
var documentsDirFunc = documentsDir

// DocumentsDir returns the platform documents directory.
func DocumentsDir() (string, error) {
	return documentsDirFunc()
}

// DefaultRoot returns <documents>/<AppID>, the storage root used when the
// configuration carries no override.
func DefaultRoot() (string, error) {
	docs, err := DocumentsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(docs, AppID), nil
}

// Home returns the per-user fermi directory (~/.fermi). Falls back to a
// relative .fermi when the home directory is unknown, so unusual
// environments (containers, CI) still get somewhere to write.
func Home() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return HomeDirName
	}
	return filepath.Join(home, HomeDirName)
}

// SetDocumentsDirFunc replaces the documents directory lookup and returns a
// function restoring the previous one. Intended for tests.
func SetDocumentsDirFunc(fn func() (string, error)) (restore func()) {
	prev := documentsDirFunc
	documentsDirFunc = fn
	return func() { documentsDirFunc = prev }
}
