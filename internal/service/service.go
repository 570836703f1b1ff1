// Package service defines the record operations shared by CLI commands,
// MCP tools and the import/export helpers. Consumers depend on this
// interface; internal/ferment provides the implementation.
package service

import (
	"context"

	"github.com/jpl-au/fermi/internal/collection"
	"github.com/jpl-au/fermi/internal/config"
	"github.com/jpl-au/fermi/internal/query"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/jpl-au/fermi/internal/storage"
)

// Suggestion selects a projection for Suggest.
type Suggestion string

const (
	SuggestIngredients Suggestion = "ingredients"
	SuggestContainers  Suggestion = "containers"
	SuggestUnits       Suggestion = "units"
)

// Mutator transforms a record in an update. It receives a copy.
type Mutator func(record.Record) (record.Record, error)

// Service defines all record operations.
//
// Obtain one with ferment.New and always Close it: Close waits for
// outstanding writes.
//
//	svc, err := ferment.New(ctx, provider, ferment.Options{})
//	if err != nil {
//	    return err
//	}
//	defer svc.Close()
//	due, err := svc.Due(ctx, record.Today())
type Service interface {
	// Close waits for pending writes and detaches from configuration.
	Close() error

	// Root returns the resolved storage root.
	Root() (string, error)

	// Config returns the live configuration.
	Config() *config.Provider

	// Reload re-reads every record from disk.
	Reload(ctx context.Context) (collection.LoadReport, error)

	// Get returns one record. Returns collection.ErrNotFound if absent.
	Get(ctx context.Context, id string) (record.Record, error)

	// List evaluates spec over the in-memory records.
	List(ctx context.Context, spec query.Spec) ([]record.Record, error)

	// Due returns active records ending today.
	Due(ctx context.Context, today record.Date) ([]record.Record, error)

	// Overdue returns active records whose end date has passed.
	Overdue(ctx context.Context, today record.Date) ([]record.Record, error)

	// Suggest returns the distinct, collated values of one projection
	// merged with supplement.
	Suggest(ctx context.Context, kind Suggestion, supplement []string) ([]string, error)

	// Add validates r, fills a missing id and timestamps, inserts it and
	// waits for the write. On a write error the record stays in memory.
	Add(ctx context.Context, r record.Record) (record.Record, error)

	// Update applies fn, stamps UpdatedAt, validates the result and
	// waits for the write.
	Update(ctx context.Context, id string, fn Mutator) (record.Record, error)

	// Complete moves an active record to completed.
	Complete(ctx context.Context, id string, at record.Date, ratings record.Ratings) (record.Record, error)

	// Fail moves an active record to failed.
	Fail(ctx context.Context, id string, reason string, at record.Date) (record.Record, error)

	// Delete removes a record and returns its last value for undo.
	Delete(ctx context.Context, id string) (record.Record, error)

	// Batch applies mutations concurrently and independently.
	Batch(ctx context.Context, muts ...collection.Mutation) []error

	// Failed lists the records that did not load.
	Failed() []collection.LoadFailure

	// Prune deletes every record that failed to load.
	Prune(ctx context.Context) (int, error)

	// Current returns the raw data.json of a record.
	Current(ctx context.Context, id string) ([]byte, error)

	// Backups lists a record's retained backup slots.
	Backups(ctx context.Context, id string) ([]storage.Backup, error)

	// ReadBackup returns the raw content of one backup slot.
	ReadBackup(ctx context.Context, id string, slot int) ([]byte, error)
}
