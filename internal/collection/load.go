package collection

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jpl-au/fermi/internal/logging"
	"github.com/jpl-au/fermi/internal/record"
	"golang.org/x/sync/errgroup"
)

// LoadReport summarises one LoadAll pass.
type LoadReport struct {
	Loaded int
	Failed []LoadFailure
}

type loadResult struct {
	rec record.Record
	err error
}

// LoadAll replaces the collection with the store's contents. Every record
// is read and parsed independently and concurrently; a record that fails
// is added to the failed set and does not affect the others. When any
// record fails, one LoadFailed notice is raised for the whole pass.
//
// Records with a write still in flight keep their in-memory value, since
// memory is ahead of disk for them.
//
// The returned error is non-nil only when the store cannot be listed.
func (c *Collection) LoadAll(ctx context.Context) (LoadReport, error) {
	c.mu.Lock()
	c.loading++
	c.gen++
	gen := c.gen
	c.mu.Unlock()
	c.publish(Change{Kind: LoadStarted})

	defer func() {
		c.mu.Lock()
		c.loading--
		c.mu.Unlock()
		c.publish(Change{Kind: Reloaded})
	}()

	ids, err := c.store.ListIDs(ctx)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("listing records failed")
		return LoadReport{}, err
	}

	results := make([]loadResult, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = c.loadOne(gctx, id)
			return nil
		})
	}
	_ = g.Wait()

	entries := make(map[string]record.Record, len(ids))
	order := make([]string, 0, len(ids))
	failed := make(map[string]error)
	for i, id := range ids {
		res := results[i]
		if res.err != nil {
			failed[id] = res.err
			logging.Ctx(ctx).Warn().Err(res.err).Str("id", id).Msg("record failed to load")
			continue
		}
		entries[id] = res.rec
		order = append(order, id)
	}

	c.mu.Lock()
	if gen != c.gen {
		// A newer pass started; it will reconcile.
		c.mu.Unlock()
		return report(order, failed), nil
	}
	for id, w := range c.tails {
		if w.op == OpDelete {
			delete(entries, id)
			delete(failed, id)
			if i := slices.Index(order, id); i >= 0 {
				order = slices.Delete(order, i, i+1)
			}
			continue
		}
		if _, ok := entries[id]; !ok {
			order = append(order, id)
		}
		entries[id] = w.rec.Clone()
		delete(failed, id)
	}
	c.entries = entries
	c.order = order
	c.failed = failed
	c.mu.Unlock()

	rep := report(order, failed)
	logging.Ctx(ctx).Debug().Int("loaded", rep.Loaded).Int("failed", len(rep.Failed)).Msg("load pass complete")

	if n := len(rep.Failed); n > 0 {
		ids := make([]string, n)
		for i, f := range rep.Failed {
			ids[i] = f.ID
		}
		c.raise(Notice{
			Kind:    LoadFailed,
			Message: fmt.Sprintf("%d record(s) could not be loaded", n),
			Count:   n,
			IDs:     ids,
			Action: &Action{
				Label: "Delete invalid records",
				Run: func(ctx context.Context) error {
					_, err := c.DeleteInvalid(ctx)
					return err
				},
			},
		})
	}
	return rep, nil
}

// loadOne reads and parses a single record.
func (c *Collection) loadOne(ctx context.Context, id string) loadResult {
	raw, err := c.store.Read(ctx, id)
	if err != nil {
		return loadResult{err: err}
	}
	r, err := c.parse(raw)
	if err != nil {
		return loadResult{err: err}
	}
	if r.ID != id {
		return loadResult{err: fmt.Errorf("%w: id %q does not match directory id %q", record.ErrInvalid, r.ID, id)}
	}
	return loadResult{rec: r}
}

func report(order []string, failed map[string]error) LoadReport {
	rep := LoadReport{Loaded: len(order)}
	for id, err := range failed {
		rep.Failed = append(rep.Failed, LoadFailure{ID: id, Err: err})
	}
	slices.SortFunc(rep.Failed, func(a, b LoadFailure) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return rep
}

// DeleteInvalid removes every record in the failed set from the store,
// concurrently. It returns how many were deleted; failures are joined
// into the error and stay in the failed set.
func (c *Collection) DeleteInvalid(ctx context.Context) (int, error) {
	failed := c.Failed()
	if len(failed) == 0 {
		return 0, nil
	}

	pending := make([]*Pending, len(failed))
	for i, f := range failed {
		_, p, err := c.Delete(ctx, f.ID)
		if err != nil {
			// Reinserted or deleted since the listing.
			continue
		}
		pending[i] = p
	}

	var errs []error
	deleted := 0
	for i, err := range Wait(pending...) {
		if pending[i] == nil {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			c.mu.Lock()
			if _, ok := c.entries[failed[i].ID]; !ok {
				c.failed[failed[i].ID] = err
			}
			c.mu.Unlock()
			continue
		}
		deleted++
	}
	return deleted, errors.Join(errs...)
}
