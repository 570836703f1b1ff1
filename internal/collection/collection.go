// Package collection is the in-memory mirror of every record in the store.
//
// Reads are served from memory. Mutations apply to memory first and are
// then written to the store asynchronously. A failed write is reported to
// the Notifier and through the returned Pending, but the in-memory change
// is kept: there is no rollback. The user recovers by repeating the
// mutation or, for deletes, re-inserting the previous value.
//
// Writes for one id are persisted in mutation order. Writes for different
// ids run concurrently and fail independently.
package collection

import (
	"errors"
	"slices"
	"sort"
	"sync"

	"github.com/jpl-au/fermi/internal/record"
	"github.com/jpl-au/fermi/internal/storage"
)

var (
	// ErrNotFound is returned when updating or deleting an id not in memory.
	ErrNotFound = errors.New("record not in collection")
	// ErrExists is returned when inserting an id already in memory.
	ErrExists = errors.New("record already exists")
	// ErrIDChanged is returned when an update mutator changes the record id.
	ErrIDChanged = errors.New("update must not change the record id")
)

// DefaultConcurrency bounds parallel reads during LoadAll.
const DefaultConcurrency = 16

// Options configures a Collection.
type Options struct {
	// Notify receives user-facing notices. May be nil.
	Notify Notifier
	// Concurrency bounds parallel record loads (default 16).
	Concurrency int
	// Parse converts raw documents to records (default record.Parse).
	Parse func([]byte) (record.Record, error)
}

// Collection is the process-wide record cache. Construct one per store
// with New and share the pointer.
type Collection struct {
	store       storage.Backend
	notify      Notifier
	parse       func([]byte) (record.Record, error)
	concurrency int

	mu      sync.RWMutex
	entries map[string]record.Record
	order   []string
	failed  map[string]error
	loading int
	gen     int

	// per-id persistence chain, guarded by mu
	tails    map[string]*write
	inflight sync.WaitGroup

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// New returns an empty collection over store. Call LoadAll to populate it.
func New(store storage.Backend, opts Options) *Collection {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Parse == nil {
		opts.Parse = record.Parse
	}
	return &Collection{
		store:       store,
		notify:      opts.Notify,
		parse:       opts.Parse,
		concurrency: opts.Concurrency,
		entries:     make(map[string]record.Record),
		failed:      make(map[string]error),
		tails:       make(map[string]*write),
		subs:        make(map[int]func(Change)),
	}
}

// Get returns a copy of the record with id.
func (c *Collection) Get(id string) (record.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[id]
	if !ok {
		return record.Record{}, false
	}
	return r.Clone(), true
}

// All returns copies of every record in insertion/enumeration order.
func (c *Collection) All() []record.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]record.Record, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id].Clone())
	}
	return out
}

// IDs returns the ids in order.
func (c *Collection) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

// Len returns the number of records in memory.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Loading reports whether a LoadAll pass is in progress.
func (c *Collection) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading > 0
}

// LoadFailure is a record that could not be read or parsed.
type LoadFailure struct {
	ID  string `json:"id"`
	Err error  `json:"-"`
}

// Failed returns the records that failed to load in the last pass,
// sorted by id.
func (c *Collection) Failed() []LoadFailure {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]LoadFailure, 0, len(c.failed))
	for id, err := range c.failed {
		out = append(out, LoadFailure{ID: id, Err: err})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Flush blocks until every outstanding write has finished.
func (c *Collection) Flush() {
	c.inflight.Wait()
}

// removeLocked drops id from the ordered mapping.
func (c *Collection) removeLocked(id string) {
	delete(c.entries, id)
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}

// Wait blocks on every pending mutation and returns their errors in the
// same order. A nil entry means that write succeeded.
func Wait(pending ...*Pending) []error {
	errs := make([]error, len(pending))
	for i, p := range pending {
		if p == nil {
			continue
		}
		errs[i] = p.Wait()
	}
	return errs
}
