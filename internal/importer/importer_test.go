package importer_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jpl-au/fermi/internal/config"
	"github.com/jpl-au/fermi/internal/exporter"
	"github.com/jpl-au/fermi/internal/ferment"
	"github.com/jpl-au/fermi/internal/importer"
	"github.com/jpl-au/fermi/internal/query"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) *ferment.Service {
	t.Helper()
	cfg := config.NewProvider(&config.Config{StorageRoot: t.TempDir()})
	svc, err := ferment.New(context.Background(), cfg, ferment.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func seed(t *testing.T, svc *ferment.Service) []record.Record {
	t.Helper()
	now := time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)
	ctx := context.Background()

	a := record.New("Kimchi", "2026-02-01", "2026-02-10", now)
	a.Container = "Crock"
	a.Ingredients = []record.Ingredient{{Name: "cabbage", Quantity: 1.5, Unit: "kg"}}
	a.Images = []record.Image{{Name: "top.png", MimeType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}}

	b := record.Complete(record.New("Kefir", "2026-01-01", "2026-01-03", now), "2026-01-03",
		record.Ratings{Overall: record.Rating{Stars: record.Stars(5), Notes: "fizzy"}}, now)

	var out []record.Record
	for _, r := range []record.Record{a, b} {
		got, err := svc.Add(ctx, r)
		require.NoError(t, err)
		out = append(out, got)
	}
	return out
}

func TestExportImport_RoundTrip(t *testing.T) {
	for _, format := range []string{exporter.FormatYAML, exporter.FormatJSON} {
		t.Run(format, func(t *testing.T) {
			ctx := context.Background()
			src := setupService(t)
			want := seed(t, src)
			dir := t.TempDir()

			exp, err := exporter.Run(ctx, &bytes.Buffer{}, src, dir, exporter.Options{Format: format})
			require.NoError(t, err)
			assert.Equal(t, 2, exp.Exported)

			dst := setupService(t)
			res, err := importer.Run(ctx, &bytes.Buffer{}, dst, dir, importer.Options{})
			require.NoError(t, err)
			assert.Equal(t, 2, res.Imported)
			assert.Empty(t, res.Failed)

			for _, r := range want {
				got, err := dst.Get(ctx, r.ID)
				require.NoError(t, err)
				assert.Equal(t, r, got)
			}
		})
	}
}

func TestExport_RefusesOverwrite(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)
	seed(t, svc)
	dir := t.TempDir()

	_, err := exporter.Run(ctx, &bytes.Buffer{}, svc, dir, exporter.Options{})
	require.NoError(t, err)
	_, err = exporter.Run(ctx, &bytes.Buffer{}, svc, dir, exporter.Options{})
	assert.ErrorContains(t, err, "file exists")
	_, err = exporter.Run(ctx, &bytes.Buffer{}, svc, dir, exporter.Options{Force: true})
	assert.NoError(t, err)

	_, err = exporter.Run(ctx, &bytes.Buffer{}, svc, dir, exporter.Options{Format: "toml"})
	assert.ErrorIs(t, err, exporter.ErrUnknownFormat)
}

func TestExport_Filtered(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)
	seed(t, svc)

	res, err := exporter.Run(ctx, &bytes.Buffer{}, svc, t.TempDir(), exporter.Options{
		Spec: query.ByState(record.StateCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Exported)
}

func TestImport_ReportsBadFilesIndividually(t *testing.T) {
	ctx := context.Background()
	src := setupService(t)
	seed(t, src)
	dir := t.TempDir()
	_, err := exporter.Run(ctx, &bytes.Buffer{}, src, dir, exporter.Options{})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "invalid.yaml"), []byte("id: x\nstate: failed\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	dst := setupService(t)
	res, err := importer.Run(ctx, &bytes.Buffer{}, dst, dir, importer.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	require.Len(t, res.Failed, 2)

	all, err := dst.List(ctx, query.Spec{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestImport_ExistingIDs(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)
	recs := seed(t, svc)
	dir := t.TempDir()
	_, err := exporter.Run(ctx, &bytes.Buffer{}, svc, dir, exporter.Options{})
	require.NoError(t, err)

	res, err := importer.Run(ctx, &bytes.Buffer{}, svc, dir, importer.Options{})
	require.NoError(t, err)
	assert.Zero(t, res.Imported)
	assert.Len(t, res.Failed, 2)

	res, err = importer.Run(ctx, &bytes.Buffer{}, svc, dir, importer.Options{Replace: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)

	backups, err := svc.Backups(ctx, recs[0].ID)
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestImport_DryRunAndSingleFile(t *testing.T) {
	ctx := context.Background()
	src := setupService(t)
	recs := seed(t, src)
	dir := t.TempDir()
	_, err := exporter.Run(ctx, &bytes.Buffer{}, src, dir, exporter.Options{Format: exporter.FormatJSON})
	require.NoError(t, err)

	dst := setupService(t)
	var buf bytes.Buffer
	res, err := importer.Run(ctx, &buf, dst, dir, importer.Options{DryRun: true})
	require.NoError(t, err)
	assert.Len(t, res.IDs, 2)
	assert.Contains(t, buf.String(), "Would import")
	all, _ := dst.List(ctx, query.Spec{})
	assert.Empty(t, all)

	one := filepath.Join(dir, recs[0].ID+".json")
	res, err = importer.Run(ctx, &bytes.Buffer{}, dst, one, importer.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{recs[0].ID}, res.IDs)
}
