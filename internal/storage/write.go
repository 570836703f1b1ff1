package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jpl-au/fermi/internal/logging"
	"github.com/jpl-au/fermi/internal/validate"
)

// Write replaces id's data.json with raw, re-indented with two spaces.
// The previous content is rotated into the backup window first.
func (s *Store) Write(ctx context.Context, id string, raw []byte) error {
	if err := validate.ID(id); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("%w: %s: invalid JSON: %w", ErrWrite, id, err)
	}
	buf.WriteByte('\n')

	r, err := s.openRoot()
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.MkdirAll(recordDir(id), 0755); err != nil {
		return fmt.Errorf("%w: %s: creating directory: %w", ErrWrite, id, err)
	}

	s.rotate(ctx, r, id)

	if err := writeAtomic(r, dataPath(id), buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, id, err)
	}
	return nil
}

// Delete removes id's directory and every backup in it. A missing record
// is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := validate.ID(id); err != nil {
		return err
	}
	r, err := s.openRoot()
	if err != nil {
		return err
	}
	defer r.Close()

	err = r.RemoveAll(recordDir(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %w", ErrDelete, id, err)
	}
	logging.Ctx(ctx).Debug().Str("id", id).Msg("record directory removed")
	return nil
}

// writeAtomic writes data to a temp file beside name, syncs it and renames
// it into place, so readers see either the old or the new content.
func writeAtomic(r *os.Root, name string, data []byte) error {
	tmp := name + ".tmp-" + uuid.New().String()[:8]
	f, err := r.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = r.Remove(tmp) }()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return r.Rename(tmp, name)
}
