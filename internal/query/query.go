// Package query derives read-only, self-updating views over the record
// collection. Views never touch storage: they subscribe to collection
// changes and re-run their filter and sort in memory.
package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/jpl-au/fermi/internal/collection"
	"github.com/jpl-au/fermi/internal/record"
)

// ErrUnknownSortKey is returned for a SortBy value not in SortKeys.
var ErrUnknownSortKey = errors.New("unknown sort key")

// Sort keys accepted by Spec.SortBy. The empty key keeps collection order.
const (
	SortNone      = ""
	SortName      = "name"
	SortState     = "state"
	SortStartDate = "startDate"
	SortEndDate   = "endDate"
	SortCreatedAt = "createdAt"
	SortUpdatedAt = "updatedAt"
)

// SortKeys lists the valid Spec.SortBy values.
func SortKeys() []string {
	return []string{SortName, SortState, SortStartDate, SortEndDate, SortCreatedAt, SortUpdatedAt}
}

// Spec declares what a live query selects and how it orders the result.
type Spec struct {
	// Where is an optional expr-lang boolean expression over Env.
	Where string
	// Filter is an optional Go predicate, applied together with Where.
	Filter func(record.Record) bool
	// SortBy orders the result. Ties keep collection order.
	SortBy string
	// Desc reverses SortBy. Ties still keep collection order.
	Desc bool
	// Limit caps the result length when positive.
	Limit int
	// Today is exposed to Where as `today` (default: local date).
	Today record.Date
}

// Live is a query result kept current with the collection.
type Live struct {
	coll *collection.Collection
	spec Spec
	pred predicate

	mu      sync.RWMutex
	results []record.Record
	members map[string]bool

	subMu   sync.Mutex
	subs    map[int]func([]record.Record)
	nextSub int

	unsub func()
}

// New evaluates spec against c and keeps the result current until Close.
func New(c *collection.Collection, spec Spec) (*Live, error) {
	if spec.Today == "" {
		spec.Today = record.Today()
	}
	if !slices.Contains(SortKeys(), spec.SortBy) && spec.SortBy != SortNone {
		return nil, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownSortKey, spec.SortBy, strings.Join(SortKeys(), ", "))
	}
	pred, err := compile(spec)
	if err != nil {
		return nil, err
	}

	l := &Live{
		coll: c,
		spec: spec,
		pred: pred,
		subs: make(map[int]func([]record.Record)),
	}
	l.recompute()
	l.unsub = c.Subscribe(l.onChange)
	return l, nil
}

// Run evaluates spec once without subscribing.
func Run(c *collection.Collection, spec Spec) ([]record.Record, error) {
	l, err := New(c, spec)
	if err != nil {
		return nil, err
	}
	defer l.Close()
	return l.Results(), nil
}

// Results returns the current result.
func (l *Live) Results() []record.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.results)
}

// Loading reports whether the collection is mid-load, so the result may
// be about to change wholesale.
func (l *Live) Loading() bool {
	return l.coll.Loading()
}

// Subscribe registers fn to receive every new result.
func (l *Live) Subscribe(fn func([]record.Record)) (unsubscribe func()) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	return func() {
		l.subMu.Lock()
		defer l.subMu.Unlock()
		delete(l.subs, id)
	}
}

// Close stops tracking the collection.
func (l *Live) Close() {
	if l.unsub != nil {
		l.unsub()
		l.unsub = nil
	}
}

// onChange re-evaluates when the change can affect the result: a full
// reload, or a record that was or now is a member.
func (l *Live) onChange(ch collection.Change) {
	switch ch.Kind {
	case collection.LoadStarted:
		l.publish()
		return
	case collection.Reloaded:
	default:
		l.mu.RLock()
		was := l.members[ch.ID]
		l.mu.RUnlock()
		rec, ok := l.coll.Get(ch.ID)
		if !was && (!ok || !l.pred(rec)) {
			return
		}
	}
	l.recompute()
	l.publish()
}

func (l *Live) recompute() {
	all := l.coll.All()
	out := make([]record.Record, 0, len(all))
	for _, r := range all {
		if l.pred(r) {
			out = append(out, r)
		}
	}
	sortRecords(out, l.spec.SortBy, l.spec.Desc)
	if l.spec.Limit > 0 && len(out) > l.spec.Limit {
		out = out[:l.spec.Limit]
	}
	members := make(map[string]bool, len(out))
	for _, r := range out {
		members[r.ID] = true
	}

	l.mu.Lock()
	l.results = out
	l.members = members
	l.mu.Unlock()
}

func (l *Live) publish() {
	res := l.Results()
	l.subMu.Lock()
	fns := make([]func([]record.Record), 0, len(l.subs))
	for i := 0; i < l.nextSub; i++ {
		if fn, ok := l.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	l.subMu.Unlock()
	for _, fn := range fns {
		fn(res)
	}
}

// sortRecords stable-sorts in place so equal keys keep collection order.
func sortRecords(rs []record.Record, key string, desc bool) {
	if key == SortNone {
		if desc {
			slices.Reverse(rs)
		}
		return
	}
	cmp := func(a, b record.Record) int {
		var c int
		switch key {
		case SortName:
			c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case SortState:
			c = strings.Compare(string(a.State()), string(b.State()))
		case SortStartDate:
			c = strings.Compare(string(a.StartDate), string(b.StartDate))
		case SortEndDate:
			c = strings.Compare(string(a.EndDate), string(b.EndDate))
		case SortCreatedAt:
			c = a.CreatedAt.Compare(b.CreatedAt)
		case SortUpdatedAt:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		}
		if desc {
			return -c
		}
		return c
	}
	slices.SortStableFunc(rs, cmp)
}
