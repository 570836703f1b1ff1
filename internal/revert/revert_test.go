package revert_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jpl-au/fermi/internal/config"
	"github.com/jpl-au/fermi/internal/ferment"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/jpl-au/fermi/internal/revert"
	"github.com/jpl-au/fermi/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, root string) *ferment.Service {
	t.Helper()
	svc, err := ferment.New(context.Background(), config.NewProvider(&config.Config{StorageRoot: root}), ferment.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func addAndRename(t *testing.T, svc *ferment.Service) record.Record {
	t.Helper()
	ctx := context.Background()
	r, err := svc.Add(ctx, record.New("Kombucha", "2026-03-01", "2026-03-14", time.Now()))
	require.NoError(t, err)
	_, err = svc.Update(ctx, r.ID, func(cur record.Record) (record.Record, error) {
		cur.Name = "Jun"
		return cur, nil
	})
	require.NoError(t, err)
	return r
}

func TestRun_RestoresBackup(t *testing.T) {
	ctx := context.Background()
	svc := open(t, t.TempDir())
	orig := addAndRename(t, svc)

	var out bytes.Buffer
	res, err := revert.Run(ctx, &out, svc, orig.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, "Kombucha", res.Record.Name)
	assert.True(t, orig.CreatedAt.Equal(res.Record.CreatedAt))
	assert.Contains(t, out.String(), "from backup 1")

	got, err := svc.Get(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kombucha", got.Name)

	// The renamed version is now the newest backup.
	raw, err := svc.ReadBackup(ctx, orig.ID, 1)
	require.NoError(t, err)
	prev, err := record.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Jun", prev.Name)
}

func TestRun_InvalidSlot(t *testing.T) {
	svc := open(t, t.TempDir())
	orig := addAndRename(t, svc)

	_, err := revert.Run(context.Background(), &bytes.Buffer{}, svc, orig.ID, 0)
	assert.Error(t, err)

	_, err = revert.Run(context.Background(), &bytes.Buffer{}, svc, orig.ID, 5)
	assert.ErrorIs(t, err, storage.ErrBackupNotFound)
}

func TestRun_RepairsRecordThatFailedToLoad(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	first := open(t, root)
	orig := addAndRename(t, first)
	require.NoError(t, first.Close())

	data := filepath.Join(root, storage.RecordPrefix+orig.ID, storage.DataFile)
	require.NoError(t, os.WriteFile(data, []byte(`{"id":`), 0644))

	svc := open(t, root)
	require.Len(t, svc.Failed(), 1)

	res, err := revert.Run(ctx, &bytes.Buffer{}, svc, orig.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "Kombucha", res.Record.Name)
	assert.Empty(t, svc.Failed())

	got, err := svc.Get(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kombucha", got.Name)
}
