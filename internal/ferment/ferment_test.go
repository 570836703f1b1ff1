package ferment_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jpl-au/fermi/internal/collection"
	"github.com/jpl-au/fermi/internal/config"
	"github.com/jpl-au/fermi/internal/ferment"
	"github.com/jpl-au/fermi/internal/query"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/jpl-au/fermi/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type env struct {
	root    string
	cfg     *config.Provider
	svc     *ferment.Service
	mu      sync.Mutex
	notices []collection.Notice
}

func (e *env) notify(n collection.Notice) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notices = append(e.notices, n)
}

func (e *env) noticeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.notices)
}

// setupService creates a service over a fresh temp root.
func setupService(t *testing.T) *env {
	t.Helper()
	e := &env{root: t.TempDir()}
	e.cfg = config.NewProvider(&config.Config{StorageRoot: e.root})
	svc, err := ferment.New(context.Background(), e.cfg, ferment.Options{
		Notify: e.notify,
		Now:    func() time.Time { return fixed },
	})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	e.svc = svc
	return e
}

func add(t *testing.T, svc service.Service, name string, start, end record.Date) record.Record {
	t.Helper()
	r, err := svc.Add(context.Background(), record.Record{Name: name, StartDate: start, EndDate: end})
	require.NoError(t, err)
	return r
}

func TestAdd_FillsDefaultsAndPersists(t *testing.T) {
	e := setupService(t)

	r := add(t, e.svc, "Kimchi", "2026-03-01", "2026-03-10")
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, fixed, r.CreatedAt)
	assert.Equal(t, record.StateProvisional, r.State())

	raw, err := os.ReadFile(filepath.Join(e.root, "fermi_"+r.ID, "data.json"))
	require.NoError(t, err)
	got, err := record.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Kimchi", got.Name)
}

func TestAdd_RejectsInvalid(t *testing.T) {
	e := setupService(t)

	_, err := e.svc.Add(context.Background(), record.Record{Name: "", StartDate: "2026-03-05", EndDate: "2026-03-01"})
	require.ErrorIs(t, err, record.ErrInvalid)

	var ve *record.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.GreaterOrEqual(t, len(ve.Violations), 2)

	all, err := e.svc.List(context.Background(), query.Spec{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdate_ValidatesResult(t *testing.T) {
	e := setupService(t)
	ctx := context.Background()
	r := add(t, e.svc, "Sauerkraut", "2026-03-01", "2026-03-20")

	_, err := e.svc.Update(ctx, r.ID, func(x record.Record) (record.Record, error) {
		x.EndDate = "2026-02-01"
		return x, nil
	})
	require.ErrorIs(t, err, record.ErrInvalid)

	got, err := e.svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Date("2026-03-20"), got.EndDate)

	up, err := e.svc.Update(ctx, r.ID, func(x record.Record) (record.Record, error) {
		x.Notes = "burp daily"
		return x, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "burp daily", up.Notes)

	backups, err := e.svc.Backups(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, 1, backups[0].Slot)
}

func TestCompleteAndFail(t *testing.T) {
	e := setupService(t)
	ctx := context.Background()
	a := add(t, e.svc, "Kefir", "2026-03-01", "2026-03-03")
	b := add(t, e.svc, "Miso", "2026-01-01", "2026-06-01")

	done, err := e.svc.Complete(ctx, a.ID, "", record.Ratings{Overall: record.Rating{Stars: record.Stars(4)}})
	require.NoError(t, err)
	assert.Equal(t, record.StateCompleted, done.State())
	assert.Equal(t, record.Date("2026-03-10"), done.Details.(record.Completed).CompletedAt)

	_, err = e.svc.Complete(ctx, a.ID, "", record.Ratings{})
	require.ErrorIs(t, err, ferment.ErrNotActive)

	_, err = e.svc.Fail(ctx, b.ID, "  ", "")
	require.ErrorIs(t, err, record.ErrInvalid)

	failed, err := e.svc.Fail(ctx, b.ID, "mould", "2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, record.Failed{Reason: "mould", FailedAt: "2026-03-09"}, failed.Details)
}

func TestDueAndOverdue(t *testing.T) {
	e := setupService(t)
	ctx := context.Background()
	add(t, e.svc, "today", "2026-03-01", "2026-03-10")
	add(t, e.svc, "late", "2026-02-01", "2026-03-05")
	add(t, e.svc, "later", "2026-03-01", "2026-04-01")

	due, err := e.svc.Due(ctx, "")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "today", due[0].Name)

	over, err := e.svc.Overdue(ctx, "")
	require.NoError(t, err)
	require.Len(t, over, 1)
	assert.Equal(t, "late", over[0].Name)
}

func TestDelete_ReturnsPreviousValue(t *testing.T) {
	e := setupService(t)
	ctx := context.Background()
	r := add(t, e.svc, "Kombucha", "2026-03-01", "2026-03-14")

	prev, err := e.svc.Delete(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kombucha", prev.Name)

	_, err = e.svc.Get(ctx, r.ID)
	require.ErrorIs(t, err, collection.ErrNotFound)
	assert.NoDirExists(t, filepath.Join(e.root, "fermi_"+r.ID))

	_, err = e.svc.Delete(ctx, r.ID)
	require.ErrorIs(t, err, collection.ErrNotFound)
}

func TestSuggest(t *testing.T) {
	e := setupService(t)
	ctx := context.Background()
	_, err := e.svc.Add(ctx, record.Record{
		Name: "Hot sauce", Container: "Jar", StartDate: "2026-03-01", EndDate: "2026-03-20",
		Ingredients: []record.Ingredient{{Name: "chilli", Quantity: 500, Unit: "g"}, {Name: "garlic", Quantity: 3, Unit: "clove"}},
	})
	require.NoError(t, err)

	names, err := e.svc.Suggest(ctx, service.SuggestIngredients, []string{"salt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"chilli", "garlic", "salt"}, names)

	units, err := e.svc.Suggest(ctx, service.SuggestUnits, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"clove"}, units)

	_, err = e.svc.Suggest(ctx, "colours", nil)
	require.Error(t, err)
}

func TestLoadFailures_PruneAndReload(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "fermi_broken")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"), []byte("{"), 0644))

	var count int
	cfg := config.NewProvider(&config.Config{StorageRoot: root})
	svc, err := ferment.New(context.Background(), cfg, ferment.Options{
		Notify: func(n collection.Notice) {
			if n.Kind == collection.LoadFailed {
				count++
			}
		},
	})
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, 1, count)
	require.Len(t, svc.Failed(), 1)

	_, err = svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	n, err := svc.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, svc.Failed())
	assert.NoDirExists(t, dir)
}

func TestRootChange_Reloads(t *testing.T) {
	e := setupService(t)
	ctx := context.Background()
	add(t, e.svc, "first", "2026-03-01", "2026-03-20")

	other := t.TempDir()
	seed := setupServiceAt(t, other)
	add(t, seed, "second", "2026-03-01", "2026-03-20")
	require.NoError(t, seed.Close())

	e.cfg.SetRootOverride(other)

	root, err := e.svc.Root()
	require.NoError(t, err)
	assert.Equal(t, other, root)

	all, err := e.svc.List(ctx, query.Spec{SortBy: query.SortName})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "second", all[0].Name)
}

func TestRootUnavailable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	_, err := ferment.New(context.Background(), config.NewProvider(&config.Config{StorageRoot: file}), ferment.Options{})
	require.Error(t, err)
}

func TestBatch_ValidatesEachMutation(t *testing.T) {
	e := setupService(t)
	ctx := context.Background()
	existing := add(t, e.svc, "existing", "2026-03-01", "2026-03-20")

	good := record.New("good", "2026-03-01", "2026-03-02", fixed)
	bad := record.New("", "2026-03-01", "2026-03-02", fixed)

	errs := e.svc.Batch(ctx,
		collection.Mutation{Op: collection.OpInsert, Record: good},
		collection.Mutation{Op: collection.OpInsert, Record: bad},
		collection.Mutation{Op: collection.OpUpdate, ID: existing.ID, Mutate: func(r record.Record) (record.Record, error) {
			return r, errors.New("refused")
		}},
		collection.Mutation{Op: collection.OpUpdate, ID: existing.ID},
	)
	require.Len(t, errs, 4)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], record.ErrInvalid)
	assert.EqualError(t, errs[2], "refused")
	assert.Error(t, errs[3])

	_, err := e.svc.Get(ctx, good.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0, e.noticeCount())
}

func setupServiceAt(t *testing.T, root string) *ferment.Service {
	t.Helper()
	svc, err := ferment.New(context.Background(), config.NewProvider(&config.Config{StorageRoot: root}), ferment.Options{})
	require.NoError(t, err)
	return svc
}
