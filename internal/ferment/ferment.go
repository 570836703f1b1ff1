// Package ferment wires configuration, the durable store, the collection
// cache and the query layer into one service. It is the composition root
// for a process: construct one Service and share it.
package ferment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jpl-au/fermi/internal/collection"
	"github.com/jpl-au/fermi/internal/config"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/jpl-au/fermi/internal/logging"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/jpl-au/fermi/internal/service"
	"github.com/jpl-au/fermi/internal/storage"
	"golang.org/x/text/language"
)

// Options configures a Service.
type Options struct {
	// Notify receives collection notices (load failures, failed writes).
	Notify collection.Notifier
	// Now overrides the clock for timestamps.
	Now func() time.Time
	// Locale drives collation of suggestion lists (default English).
	Locale language.Tag
	// Concurrency bounds parallel loads.
	Concurrency int
}

// Service implements service.Service.
type Service struct {
	cfg    *config.Provider
	store  *storage.Store
	coll   *collection.Collection
	now    func() time.Time
	locale language.Tag

	mu         sync.Mutex
	root       string
	stopConfig func()
}

var _ service.Service = (*Service)(nil)

// New resolves the storage root, loads every record and starts following
// configuration changes. A storage root that cannot be created is fatal;
// individual records that fail to load are not.
func New(ctx context.Context, cfg *config.Provider, opts Options) (*Service, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}

	st := storage.New(cfg)
	root, err := st.ResolveRoot()
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:    cfg,
		store:  st,
		now:    opts.Now,
		locale: opts.Locale,
		root:   root,
		coll: collection.New(st, collection.Options{
			Notify:      opts.Notify,
			Concurrency: opts.Concurrency,
		}),
	}
	log.SetRoot(root)

	if _, err := s.coll.LoadAll(ctx); err != nil {
		return nil, err
	}
	s.stopConfig = cfg.OnChange(s.onConfigChange)
	return s, nil
}

// onConfigChange reloads the collection when the storage root moves.
// Retention changes need nothing: the store reads it on every write.
func (s *Service) onConfigChange(prev, next config.Config) {
	if prev.StorageRoot == next.StorageRoot {
		return
	}
	s.coll.Flush()

	root, err := s.store.ResolveRoot()
	if err != nil {
		logging.Error().Err(err).Msg("new storage root unavailable")
		return
	}
	s.mu.Lock()
	s.root = root
	s.mu.Unlock()
	log.SetRoot(root)

	logging.Info().Str("root", root).Msg("storage root changed, reloading")
	if _, err := s.coll.LoadAll(context.Background()); err != nil {
		logging.Error().Err(err).Msg("reload after root change failed")
	}
}

// Close waits for pending writes and stops following configuration.
func (s *Service) Close() error {
	if s.stopConfig != nil {
		s.stopConfig()
		s.stopConfig = nil
	}
	s.coll.Flush()
	return nil
}

// Root returns the storage root.
func (s *Service) Root() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root, nil
}

// Config returns the live configuration.
func (s *Service) Config() *config.Provider {
	return s.cfg
}

// Collection exposes the cache for live queries.
func (s *Service) Collection() *collection.Collection {
	return s.coll
}

// Reload re-reads every record.
func (s *Service) Reload(ctx context.Context) (collection.LoadReport, error) {
	return s.coll.LoadAll(ctx)
}

// Failed lists records that did not load in the last pass.
func (s *Service) Failed() []collection.LoadFailure {
	return s.coll.Failed()
}

// Prune deletes every record that failed to load.
func (s *Service) Prune(ctx context.Context) (int, error) {
	return s.coll.DeleteInvalid(ctx)
}

func (s *Service) today() record.Date {
	return record.DateOf(s.now())
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", collection.ErrNotFound, id)
}
