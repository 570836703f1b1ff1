package collection

import (
	"context"
	"fmt"

	"github.com/jpl-au/fermi/internal/record"
)

// Mutation describes one change in a batch.
type Mutation struct {
	Op     Op
	Record record.Record                              // OpInsert
	ID     string                                     // OpUpdate, OpDelete
	Mutate func(record.Record) (record.Record, error) // OpUpdate
}

// Apply performs a single mutation.
func (c *Collection) Apply(ctx context.Context, m Mutation) (*Pending, error) {
	switch m.Op {
	case OpInsert:
		return c.Insert(ctx, m.Record)
	case OpUpdate:
		return c.Update(ctx, m.ID, m.Mutate)
	case OpDelete:
		_, p, err := c.Delete(ctx, m.ID)
		return p, err
	default:
		return nil, fmt.Errorf("unknown mutation %q", m.Op)
	}
}

// Batch applies every mutation and waits for all writes. Writes run
// concurrently and there is no atomicity across the batch: the result
// holds one error per mutation (nil on success), in input order.
func (c *Collection) Batch(ctx context.Context, muts ...Mutation) []error {
	pending := make([]*Pending, len(muts))
	errs := make([]error, len(muts))
	for i, m := range muts {
		p, err := c.Apply(ctx, m)
		if err != nil {
			errs[i] = err
			continue
		}
		pending[i] = p
	}
	for i, err := range Wait(pending...) {
		if pending[i] != nil {
			errs[i] = err
		}
	}
	return errs
}
