// Package storage is the durable, one-directory-per-record store.
//
// Layout under the storage root:
//
//	<root>/
//	  fermi_<id>/
//	    data.json       current record, 2-space indented
//	    backup_1.json   previous version
//	    backup_2.json   ...
//
// Every write rotates the existing data.json into the backup window before
// overwriting it. Backup failures are logged and never block the write.
//
// The store has no in-process locking. Writers to different ids touch
// disjoint directories; writers to the same id are serialised by the caller
// (the collection cache).
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jpl-au/fermi/internal/logging"
	fpath "github.com/jpl-au/fermi/internal/path"
	"github.com/jpl-au/fermi/internal/validate"
)

// RecordPrefix distinguishes record directories from anything else that
// happens to live under the storage root.
const RecordPrefix = "fermi_"

// File names inside a record directory.
const (
	DataFile     = "data.json"
	backupPrefix = "backup_"
	backupSuffix = ".json"
)

var (
	// ErrStorageUnavailable is returned when the root cannot be created or opened.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrRecordNotFound is returned when a record has no data.json.
	ErrRecordNotFound = errors.New("record not found")
	// ErrBackupNotFound is returned when a requested backup slot is empty.
	ErrBackupNotFound = errors.New("backup not found")
	// ErrRead wraps I/O and decode failures when reading a record.
	ErrRead = errors.New("read failed")
	// ErrWrite wraps I/O failures when writing a record.
	ErrWrite = errors.New("write failed")
	// ErrDelete wraps I/O failures when deleting a record.
	ErrDelete = errors.New("delete failed")
)

// Settings supplies the values the store reads on every operation.
// config.Provider satisfies it.
type Settings interface {
	// StorageRoot returns the configured root, or "" for the platform default.
	StorageRoot() string
	// MaxBackups returns the backup retention count.
	MaxBackups() int
}

// Backend is the subset of the store the collection cache depends on.
// Tests substitute it to inject failures.
type Backend interface {
	ListIDs(ctx context.Context) ([]string, error)
	Read(ctx context.Context, id string) ([]byte, error)
	Write(ctx context.Context, id string, raw []byte) error
	Delete(ctx context.Context, id string) error
}

// Store implements Backend on the local filesystem.
type Store struct {
	settings Settings
}

// New returns a store reading its root and retention from settings.
func New(settings Settings) *Store {
	return &Store{settings: settings}
}

// ResolveRoot returns the storage root, creating it if needed.
func (s *Store) ResolveRoot() (string, error) {
	root := s.settings.StorageRoot()
	if root == "" {
		def, err := fpath.DefaultRoot()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
		root = def
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %w", ErrStorageUnavailable, root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrStorageUnavailable, root)
	}
	return root, nil
}

// openRoot resolves the root and opens it for confined access.
func (s *Store) openRoot() (*os.Root, error) {
	dir, err := s.ResolveRoot()
	if err != nil {
		return nil, err
	}
	r, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return r, nil
}

// RecordDir returns the absolute directory for id. The directory may not exist.
func (s *Store) RecordDir(id string) (string, error) {
	if err := validate.ID(id); err != nil {
		return "", err
	}
	root, err := s.ResolveRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, recordDir(id)), nil
}

// ListIDs enumerates record ids in directory-name order. Entries without
// the record prefix, plain files and names that are not valid ids are
// skipped.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	root, err := s.ResolveRoot()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", ErrStorageUnavailable, root, err)
	}

	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id, ok := strings.CutPrefix(e.Name(), RecordPrefix)
		if !ok {
			continue
		}
		if validate.ID(id) != nil {
			logging.Ctx(ctx).Debug().Str("dir", e.Name()).Msg("skipping directory with invalid record id")
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func recordDir(id string) string {
	return RecordPrefix + id
}

func dataPath(id string) string {
	return recordDir(id) + "/" + DataFile
}
