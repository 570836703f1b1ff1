package storage_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jpl-au/fermi/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotation_Window(t *testing.T) {
	for keep := 1; keep <= 4; keep++ {
		for writes := 1; writes <= 7; writes++ {
			t.Run(fmt.Sprintf("keep=%d/writes=%d", keep, writes), func(t *testing.T) {
				s, cfg := setupStore(t, keep)
				ctx := context.Background()

				for n := 1; n <= writes; n++ {
					require.NoError(t, s.Write(ctx, "r", body(n)))
				}

				backups, err := s.ListBackups(ctx, "r")
				require.NoError(t, err)
				want := min(writes-1, keep)
				require.Len(t, backups, want)

				for slot := 1; slot <= want; slot++ {
					got, err := s.ReadBackup(ctx, "r", slot)
					require.NoError(t, err)
					assert.JSONEq(t, string(body(writes-slot)), string(got), "slot %d", slot)
				}
				assert.NoFileExists(t, filepath.Join(cfg.root, "fermi_r", fmt.Sprintf("backup_%d.json", keep+1)))
			})
		}
	}
}

func TestRotation_Cap(t *testing.T) {
	s, cfg := setupStore(t, 2)
	ctx := context.Background()

	for n := 1; n <= 4; n++ {
		require.NoError(t, s.Write(ctx, "a", body(n)))
	}

	dir := filepath.Join(cfg.root, "fermi_a")
	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		return string(data)
	}
	assert.JSONEq(t, string(body(4)), read("data.json"))
	assert.JSONEq(t, string(body(3)), read("backup_1.json"))
	assert.JSONEq(t, string(body(2)), read("backup_2.json"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, read(e.Name()), `"v": 1`, e.Name())
	}
	assert.Len(t, entries, 3)
}

func TestRotation_FirstWriteHasNoBackup(t *testing.T) {
	s, _ := setupStore(t, 3)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "a", body(1)))
	backups, err := s.ListBackups(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, backups)

	_, err = s.ReadBackup(ctx, "a", 1)
	assert.ErrorIs(t, err, storage.ErrBackupNotFound)
}

func TestRotation_LoweredRetentionTrims(t *testing.T) {
	s, cfg := setupStore(t, 5)
	ctx := context.Background()

	for n := 1; n <= 6; n++ {
		require.NoError(t, s.Write(ctx, "a", body(n)))
	}
	cfg.keep = 2
	require.NoError(t, s.Write(ctx, "a", body(7)))

	backups, err := s.ListBackups(ctx, "a")
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, 1, backups[0].Slot)
	assert.Equal(t, 2, backups[1].Slot)

	got, err := s.ReadBackup(ctx, "a", 2)
	require.NoError(t, err)
	assert.JSONEq(t, string(body(5)), string(got))
}

func TestRotation_BackupFailureDoesNotBlockWrite(t *testing.T) {
	s, cfg := setupStore(t, 3)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "a", body(1)))
	// A directory squatting on the slot 1 name makes the backup copy fail.
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.root, "fermi_a", "backup_1.json", "x"), 0755))

	require.NoError(t, s.Write(ctx, "a", body(2)))
	got, err := s.Read(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, string(body(2)), string(got))
}
