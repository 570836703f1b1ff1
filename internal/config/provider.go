// provider.go holds the live, process-wide configuration.
//
// The Provider is the single place the rest of the program reads settings
// from. Components ask it on every use (the storage layer resolves the root
// and retention count per operation) so a change applies immediately, and
// listeners registered with OnChange are told about it so the collection can
// reload when the storage root moves.

package config

import (
	"sync"
)

// Listener receives the previous and new configuration after an update.
type Listener func(prev, next Config)

// Provider serves the current configuration and publishes changes.
type Provider struct {
	mu        sync.RWMutex
	cfg       *Config
	override  string // --root / FERMI_ROOT, not persisted
	listeners map[int]Listener
	nextID    int
}

// NewProvider wraps a loaded configuration. A nil cfg behaves like an
// empty global config.
func NewProvider(cfg *Config) *Provider {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Provider{cfg: cfg.Clone(), listeners: make(map[int]Listener)}
}

// Current returns a copy of the current configuration.
func (p *Provider) Current() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return *p.cfg.Clone()
}

// StorageRoot returns the storage root override or the configured root.
// Empty means "use the platform default".
func (p *Provider) StorageRoot() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.override != "" {
		return p.override
	}
	return p.cfg.StorageRoot
}

// MaxBackups returns the configured backup retention count.
func (p *Provider) MaxBackups() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.MaxBackups()
}

// SetRootOverride sets a process-only storage root taking precedence over
// the persisted value. Listeners are notified as for a persisted change.
func (p *Provider) SetRootOverride(root string) {
	p.mu.Lock()
	prev := *p.effectiveLocked()
	p.override = root
	next := *p.effectiveLocked()
	ls := p.snapshotListenersLocked()
	p.mu.Unlock()

	notify(ls, prev, next)
}

// Update applies fn to a copy of the configuration, validates the result,
// saves it to disk and then swaps it in and notifies listeners. If any step
// fails the current configuration is left untouched.
func (p *Provider) Update(fn func(*Config) error) error {
	p.mu.Lock()
	next := p.cfg.Clone()
	if err := fn(next); err != nil {
		p.mu.Unlock()
		return err
	}
	if err := next.Validate(); err != nil {
		p.mu.Unlock()
		return err
	}
	if err := next.Save(); err != nil {
		p.mu.Unlock()
		return err
	}
	prev := *p.effectiveLocked()
	p.cfg = next
	now := *p.effectiveLocked()
	ls := p.snapshotListenersLocked()
	p.mu.Unlock()

	notify(ls, prev, now)
	return nil
}

// OnChange registers a listener and returns a function removing it.
func (p *Provider) OnChange(l Listener) (remove func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = l
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

// effectiveLocked returns the config as seen by readers: the override, if
// any, replaces the persisted storage root.
func (p *Provider) effectiveLocked() *Config {
	c := p.cfg.Clone()
	if p.override != "" {
		c.StorageRoot = p.override
	}
	return c
}

func (p *Provider) snapshotListenersLocked() []Listener {
	ls := make([]Listener, 0, len(p.listeners))
	for i := 0; i < p.nextID; i++ {
		if l, ok := p.listeners[i]; ok {
			ls = append(ls, l)
		}
	}
	return ls
}

func notify(ls []Listener, prev, next Config) {
	for _, l := range ls {
		l(prev, next)
	}
}
