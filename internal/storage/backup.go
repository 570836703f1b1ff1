// backup.go implements the numbered backup window.
//
// Slot 1 is always the version immediately before the current data.json,
// slot N the version N writes ago. At most MaxBackups slots exist. Rotation
// copies rather than renames so that an interrupted rotation leaves the
// current data.json untouched; the worst case is a duplicated slot.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jpl-au/fermi/internal/logging"
	"github.com/jpl-au/fermi/internal/validate"
)

// Backup describes one retained snapshot.
type Backup struct {
	Slot    int       `json:"slot"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
}

func backupPath(id string, slot int) string {
	return recordDir(id) + "/" + backupPrefix + strconv.Itoa(slot) + backupSuffix
}

// rotate shifts the backup window up by one and copies the current
// data.json into slot 1. Nothing happens when there is no current
// document. Failures are logged and otherwise ignored.
func (s *Store) rotate(ctx context.Context, r *os.Root, id string) {
	current := dataPath(id)
	if !exists(r, current) {
		return
	}
	keep := s.settings.MaxBackups()
	log := logging.Ctx(ctx).With().Str("id", id).Logger()

	s.trim(ctx, r, id, keep)

	for i := keep - 1; i >= 1; i-- {
		slot := backupPath(id, i)
		if !exists(r, slot) {
			continue
		}
		if i+1 > keep {
			if err := r.Remove(slot); err != nil && !errors.Is(err, fs.ErrNotExist) {
				log.Warn().Err(err).Int("slot", i).Msg("backup removal failed")
			}
			continue
		}
		if err := copyInRoot(r, slot, backupPath(id, i+1)); err != nil {
			log.Warn().Err(err).Int("slot", i).Msg("backup shift failed")
		}
	}

	if err := copyInRoot(r, current, backupPath(id, 1)); err != nil {
		log.Warn().Err(err).Int("slot", 1).Msg("backup of current version failed")
	}
}

// trim removes slots beyond keep, left behind when the retention count is
// lowered between writes.
func (s *Store) trim(ctx context.Context, r *os.Root, id string, keep int) {
	slots, err := backupSlots(r, id)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("id", id).Msg("listing backups failed")
		return
	}
	for _, n := range slots {
		if n <= keep {
			continue
		}
		if err := r.Remove(backupPath(id, n)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logging.Ctx(ctx).Warn().Err(err).Str("id", id).Int("slot", n).Msg("backup removal failed")
		}
	}
}

// ReadBackup returns the content of backup slot n for id.
func (s *Store) ReadBackup(ctx context.Context, id string, slot int) ([]byte, error) {
	if err := validate.ID(id); err != nil {
		return nil, err
	}
	if slot < 1 {
		return nil, fmt.Errorf("%w: slot %d", ErrBackupNotFound, slot)
	}
	r, err := s.openRoot()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := r.ReadFile(backupPath(id, slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s slot %d", ErrBackupNotFound, id, slot)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s slot %d: %w", ErrRead, id, slot, err)
	}
	return data, nil
}

// ListBackups returns the populated backup slots for id, lowest first.
// A record without backups (or without a directory) yields an empty list.
func (s *Store) ListBackups(ctx context.Context, id string) ([]Backup, error) {
	if err := validate.ID(id); err != nil {
		return nil, err
	}
	r, err := s.openRoot()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	slots, err := backupSlots(r, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, id, err)
	}
	out := make([]Backup, 0, len(slots))
	for _, n := range slots {
		info, err := r.Stat(backupPath(id, n))
		if err != nil {
			continue
		}
		out = append(out, Backup{Slot: n, Size: info.Size(), ModTime: info.ModTime().UTC()})
	}
	return out, nil
}

// backupSlots returns the slot numbers present in id's directory, sorted.
func backupSlots(r *os.Root, id string) ([]int, error) {
	f, err := r.Open(recordDir(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	var slots []int
	for _, name := range names {
		rest, ok := strings.CutPrefix(name, backupPrefix)
		if !ok {
			continue
		}
		num, ok := strings.CutSuffix(rest, backupSuffix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(num)
		if err != nil || n < 1 {
			continue
		}
		slots = append(slots, n)
	}
	slices.Sort(slots)
	return slots, nil
}

func exists(r *os.Root, name string) bool {
	_, err := r.Stat(name)
	return err == nil
}

// copyInRoot copies src over dst atomically.
func copyInRoot(r *os.Root, src, dst string) error {
	data, err := r.ReadFile(src)
	if err != nil {
		return err
	}
	return writeAtomic(r, dst, data)
}
