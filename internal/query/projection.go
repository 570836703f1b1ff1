package query

import (
	"slices"
	"strings"
	"sync"

	"github.com/jpl-au/fermi/internal/collection"
	"github.com/jpl-au/fermi/internal/record"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// PredefinedUnits are offered by the form layer already, so Units leaves
// them out of its suggestions.
var PredefinedUnits = []string{
	"g", "kg", "mg", "ml", "l", "tsp", "tbsp", "cup", "oz", "lb", "piece",
}

// Projector maps the collection to a list of strings.
type Projector func(rs []record.Record) []string

// IngredientNames projects every ingredient name.
func IngredientNames(rs []record.Record) []string {
	var out []string
	for _, r := range rs {
		for _, in := range r.Ingredients {
			out = append(out, in.Name)
		}
	}
	return out
}

// ContainerNames projects every container.
func ContainerNames(rs []record.Record) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Container)
	}
	return out
}

// CustomUnits projects every ingredient unit not in PredefinedUnits.
func CustomUnits(rs []record.Record) []string {
	var out []string
	for _, r := range rs {
		for _, in := range r.Ingredients {
			if !slices.Contains(PredefinedUnits, strings.ToLower(strings.TrimSpace(in.Unit))) {
				out = append(out, in.Unit)
			}
		}
	}
	return out
}

// Distinct merges values with supplement, drops blanks and duplicates and
// sorts by the collation rules of tag.
func Distinct(values, supplement []string, tag language.Tag) []string {
	seen := make(map[string]bool, len(values)+len(supplement))
	out := make([]string, 0, len(values)+len(supplement))
	for _, list := range [][]string{values, supplement} {
		for _, v := range list {
			v = strings.TrimSpace(v)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	collate.New(tag).SortStrings(out)
	return out
}

// Projection is a live, deduplicated and collated list derived from the
// collection plus a caller-supplied supplement.
type Projection struct {
	coll *collection.Collection
	fn   Projector
	tag  language.Tag

	mu         sync.RWMutex
	supplement []string
	values     []string

	subMu   sync.Mutex
	subs    map[int]func([]string)
	nextSub int

	unsub func()
}

// NewProjection starts tracking fn over c.
func NewProjection(c *collection.Collection, fn Projector, tag language.Tag) *Projection {
	p := &Projection{coll: c, fn: fn, tag: tag, subs: make(map[int]func([]string))}
	p.recompute()
	p.unsub = c.Subscribe(func(ch collection.Change) {
		if ch.Kind == collection.LoadStarted {
			return
		}
		p.recompute()
		p.publish()
	})
	return p
}

// Project evaluates fn once.
func Project(c *collection.Collection, fn Projector, supplement []string, tag language.Tag) []string {
	return Distinct(fn(c.All()), supplement, tag)
}

// Values returns the current list.
func (p *Projection) Values() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.values)
}

// SetSupplement replaces the extra values merged into the list.
func (p *Projection) SetSupplement(values []string) {
	p.mu.Lock()
	p.supplement = slices.Clone(values)
	p.mu.Unlock()
	p.recompute()
	p.publish()
}

// Subscribe registers fn to receive every new list.
func (p *Projection) Subscribe(fn func([]string)) (unsubscribe func()) {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.subMu.Lock()
		defer p.subMu.Unlock()
		delete(p.subs, id)
	}
}

// Close stops tracking the collection.
func (p *Projection) Close() {
	if p.unsub != nil {
		p.unsub()
		p.unsub = nil
	}
}

func (p *Projection) recompute() {
	p.mu.RLock()
	sup := p.supplement
	p.mu.RUnlock()
	vals := Distinct(p.fn(p.coll.All()), sup, p.tag)
	p.mu.Lock()
	p.values = vals
	p.mu.Unlock()
}

func (p *Projection) publish() {
	vals := p.Values()
	p.subMu.Lock()
	fns := make([]func([]string), 0, len(p.subs))
	for i := 0; i < p.nextSub; i++ {
		if fn, ok := p.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	p.subMu.Unlock()
	for _, fn := range fns {
		fn(vals)
	}
}
