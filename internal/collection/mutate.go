package collection

import (
	"context"
	"fmt"

	"github.com/jpl-au/fermi/internal/logging"
	"github.com/jpl-au/fermi/internal/record"
)

// Pending is the outcome of one asynchronous write.
type Pending struct {
	done chan struct{}
	err  error
}

// Wait blocks until the write finishes and returns its error.
func (p *Pending) Wait() error {
	<-p.done
	return p.err
}

// Done is closed when the write finishes.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// write is one link in an id's persistence chain.
type write struct {
	op      Op
	rec     record.Record // value being persisted, unused for deletes
	prev    *write
	pending *Pending
}

// Insert adds r to memory and persists it in the background. The caller
// is responsible for validating r first.
func (c *Collection) Insert(ctx context.Context, r record.Record) (*Pending, error) {
	raw, err := record.Marshal(r)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if _, ok := c.entries[r.ID]; ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrExists, r.ID)
	}
	c.entries[r.ID] = r.Clone()
	c.order = append(c.order, r.ID)
	delete(c.failed, r.ID)
	p := c.enqueueLocked(ctx, OpInsert, r.ID, r, raw)
	c.mu.Unlock()

	c.publish(Change{Kind: Inserted, ID: r.ID})
	return p, nil
}

// Update replaces the record with mutate's result and persists the full
// new value in the background. mutate receives a copy. An error from
// mutate aborts the update before anything changes.
func (c *Collection) Update(ctx context.Context, id string, mutate func(record.Record) (record.Record, error)) (*Pending, error) {
	c.mu.Lock()
	cur, ok := c.entries[id]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next, err := mutate(cur.Clone())
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if next.ID != id {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s became %s", ErrIDChanged, id, next.ID)
	}
	raw, err := record.Marshal(next)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.entries[id] = next.Clone()
	p := c.enqueueLocked(ctx, OpUpdate, id, next, raw)
	c.mu.Unlock()

	c.publish(Change{Kind: Updated, ID: id})
	return p, nil
}

// Delete removes id from memory and deletes it from the store in the
// background. It returns the removed value so the caller can offer an
// undo (re-insert). Ids that failed to load can be deleted too; the
// returned record is then empty.
func (c *Collection) Delete(ctx context.Context, id string) (record.Record, *Pending, error) {
	c.mu.Lock()
	prev, present := c.entries[id]
	_, invalid := c.failed[id]
	if !present && !invalid {
		c.mu.Unlock()
		return record.Record{}, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if present {
		c.removeLocked(id)
	}
	delete(c.failed, id)
	p := c.enqueueLocked(ctx, OpDelete, id, record.Record{}, nil)
	c.mu.Unlock()

	if present {
		c.publish(Change{Kind: Deleted, ID: id})
	}
	return prev, p, nil
}

// enqueueLocked chains a write behind any earlier write for the same id
// and starts it. Must be called with mu held.
func (c *Collection) enqueueLocked(ctx context.Context, op Op, id string, r record.Record, raw []byte) *Pending {
	w := &write{
		op:      op,
		rec:     r.Clone(),
		prev:    c.tails[id],
		pending: &Pending{done: make(chan struct{})},
	}
	c.tails[id] = w

	ctx = context.WithoutCancel(ctx)
	if logging.OpIDFromContext(ctx) == "" {
		ctx = logging.ContextWithOpID(ctx, logging.NewOpID())
	}

	c.inflight.Add(1)
	go c.persist(ctx, id, w, raw)
	return w.pending
}

// persist waits for the previous write of the same id, performs this one
// and reports a failure exactly once.
func (c *Collection) persist(ctx context.Context, id string, w *write, raw []byte) {
	defer c.inflight.Done()

	if w.prev != nil {
		<-w.prev.pending.done
	}

	var err error
	switch w.op {
	case OpDelete:
		err = c.store.Delete(ctx, id)
	default:
		err = c.store.Write(ctx, id, raw)
	}
	w.pending.err = err

	c.mu.Lock()
	if c.tails[id] == w {
		delete(c.tails, id)
	}
	w.prev = nil
	c.mu.Unlock()

	close(w.pending.done)

	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("id", id).Str("op", string(w.op)).Msg("persisting mutation failed")
		c.raise(Notice{
			Kind:    MutationFailed,
			Message: fmt.Sprintf("Could not %s %s: %v", w.op, id, err),
			Op:      w.op,
			ID:      id,
			Err:     err,
		})
		return
	}
	logging.Ctx(ctx).Debug().Str("id", id).Str("op", string(w.op)).Msg("mutation persisted")
}
