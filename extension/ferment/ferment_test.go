package ferment

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jpl-au/fermi/internal/collection"
	"github.com/jpl-au/fermi/internal/config"
	fsvc "github.com/jpl-au/fermi/internal/ferment"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestParseIngredient(t *testing.T) {
	tests := []struct {
		in      string
		want    record.Ingredient
		wantErr bool
	}{
		{in: "salt:20:g", want: record.Ingredient{Name: "salt", Quantity: 20, Unit: "g"}},
		{in: "cabbage:1.5", want: record.Ingredient{Name: "cabbage", Quantity: 1.5}},
		{in: "water", want: record.Ingredient{Name: "water"}},
		{in: " garlic : 3 : clove ", want: record.Ingredient{Name: "garlic", Quantity: 3, Unit: "clove"}},
		{in: "dill::sprig", want: record.Ingredient{Name: "dill", Unit: "sprig"}},
		{in: "tea:2:bags:extra", want: record.Ingredient{Name: "tea", Quantity: 2, Unit: "bags:extra"}},
		{in: ":1:kg", wantErr: true},
		{in: "salt:a pinch", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseIngredient(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	svc, err := fsvc.New(context.Background(), config.NewProvider(&config.Config{StorageRoot: root}), fsvc.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	ctx := context.Background()
	for _, id := range []string{"abc-1", "abc-2", "xyz-1"} {
		r := record.New(id, "2026-03-01", "2026-03-10", fixedNow)
		r.ID = id
		_, err := svc.Add(ctx, r)
		require.NoError(t, err)
	}

	dir := filepath.Join(root, "fermi_broken-1")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"), []byte("{}"), 0o644))
	_, err = svc.Reload(ctx)
	require.NoError(t, err)

	tests := []struct {
		arg     string
		want    string
		wantErr error
	}{
		{arg: "abc-1", want: "abc-1"},
		{arg: "xyz", want: "xyz-1"},
		{arg: "abc", wantErr: ErrAmbiguous},
		{arg: "nope", wantErr: collection.ErrNotFound},
		{arg: "broken-1", want: "broken-1"},
		{arg: "bro", want: "broken-1"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := resolve(ctx, svc, tt.arg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
