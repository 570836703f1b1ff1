package ferment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jpl-au/fermi/internal/collection"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/jpl-au/fermi/internal/service"
)

// ErrNotActive is returned when completing or failing a record that has
// already finished.
var ErrNotActive = errors.New("record is not active")

// Add validates and inserts r. A missing id or timestamp is filled in.
func (s *Service) Add(ctx context.Context, r record.Record) (record.Record, error) {
	now := s.now().UTC()
	if r.ID == "" {
		r.ID = record.NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}
	if r.Details == nil {
		r.Details = record.Provisional{}
	}
	if err := record.Validate(r); err != nil {
		return record.Record{}, err
	}

	p, err := s.coll.Insert(ctx, r)
	if err != nil {
		return record.Record{}, err
	}
	return r, p.Wait()
}

// Update applies fn to id and persists the validated result.
func (s *Service) Update(ctx context.Context, id string, fn service.Mutator) (record.Record, error) {
	var out record.Record
	p, err := s.coll.Update(ctx, id, s.validated(fn, &out))
	if err != nil {
		return record.Record{}, err
	}
	return out, p.Wait()
}

// validated wraps fn so the result is stamped and checked by the schema
// before it reaches the cache.
func (s *Service) validated(fn service.Mutator, out *record.Record) func(record.Record) (record.Record, error) {
	return func(r record.Record) (record.Record, error) {
		next, err := fn(r)
		if err != nil {
			return record.Record{}, err
		}
		next.UpdatedAt = s.now().UTC()
		if err := record.Validate(next); err != nil {
			return record.Record{}, err
		}
		*out = next
		return next, nil
	}
}

// Complete moves id to completed. An empty date means today.
func (s *Service) Complete(ctx context.Context, id string, at record.Date, ratings record.Ratings) (record.Record, error) {
	if at == "" {
		at = s.today()
	}
	return s.Update(ctx, id, func(r record.Record) (record.Record, error) {
		if !r.Active() {
			return r, fmt.Errorf("%w: %s is %s", ErrNotActive, id, r.State())
		}
		return record.Complete(r, at, ratings, s.now()), nil
	})
}

// Fail moves id to failed. An empty date means today.
func (s *Service) Fail(ctx context.Context, id string, reason string, at record.Date) (record.Record, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return record.Record{}, fmt.Errorf("%w: reason is required", record.ErrInvalid)
	}
	if at == "" {
		at = s.today()
	}
	return s.Update(ctx, id, func(r record.Record) (record.Record, error) {
		if !r.Active() {
			return r, fmt.Errorf("%w: %s is %s", ErrNotActive, id, r.State())
		}
		return record.Fail(r, reason, at, s.now()), nil
	})
}

// Delete removes id and returns the value it held.
func (s *Service) Delete(ctx context.Context, id string) (record.Record, error) {
	prev, p, err := s.coll.Delete(ctx, id)
	if err != nil {
		return record.Record{}, err
	}
	return prev, p.Wait()
}

// Batch applies mutations; inserts and update results are validated first.
func (s *Service) Batch(ctx context.Context, muts ...collection.Mutation) []error {
	errs := make([]error, len(muts))
	var valid []collection.Mutation
	var index []int
	for i, m := range muts {
		switch m.Op {
		case collection.OpInsert:
			if err := record.Validate(m.Record); err != nil {
				errs[i] = err
				continue
			}
		case collection.OpUpdate:
			if m.Mutate == nil {
				errs[i] = fmt.Errorf("update of %s has no mutator", m.ID)
				continue
			}
			var discard record.Record
			m.Mutate = s.validated(m.Mutate, &discard)
		}
		valid = append(valid, m)
		index = append(index, i)
	}
	for j, err := range s.coll.Batch(ctx, valid...) {
		errs[index[j]] = err
	}
	return errs
}
