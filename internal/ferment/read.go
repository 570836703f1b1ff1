package ferment

import (
	"context"
	"fmt"

	"github.com/jpl-au/fermi/internal/query"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/jpl-au/fermi/internal/service"
	"github.com/jpl-au/fermi/internal/storage"
)

// Get returns the record with id.
func (s *Service) Get(_ context.Context, id string) (record.Record, error) {
	r, ok := query.FindByID(s.coll, id)
	if !ok {
		return record.Record{}, notFound(id)
	}
	return r, nil
}

// List evaluates spec. An empty Today defaults to the service clock.
func (s *Service) List(_ context.Context, spec query.Spec) ([]record.Record, error) {
	if spec.Today == "" {
		spec.Today = s.today()
	}
	return query.Run(s.coll, spec)
}

// Due returns active records ending today.
func (s *Service) Due(ctx context.Context, today record.Date) ([]record.Record, error) {
	if today == "" {
		today = s.today()
	}
	return s.List(ctx, query.DueToday(today))
}

// Overdue returns active records past their end date.
func (s *Service) Overdue(ctx context.Context, today record.Date) ([]record.Record, error) {
	if today == "" {
		today = s.today()
	}
	return s.List(ctx, query.Overdue(today))
}

// Suggest returns one distinct, collated projection.
func (s *Service) Suggest(_ context.Context, kind service.Suggestion, supplement []string) ([]string, error) {
	var fn query.Projector
	switch kind {
	case service.SuggestIngredients:
		fn = query.IngredientNames
	case service.SuggestContainers:
		fn = query.ContainerNames
	case service.SuggestUnits:
		fn = query.CustomUnits
	default:
		return nil, fmt.Errorf("unknown suggestion list %q", kind)
	}
	return query.Project(s.coll, fn, supplement, s.locale), nil
}

// Current returns the raw data.json of id.
func (s *Service) Current(ctx context.Context, id string) ([]byte, error) {
	return s.store.Read(ctx, id)
}

// Backups lists id's backup slots.
func (s *Service) Backups(ctx context.Context, id string) ([]storage.Backup, error) {
	return s.store.ListBackups(ctx, id)
}

// ReadBackup returns one backup slot of id.
func (s *Service) ReadBackup(ctx context.Context, id string, slot int) ([]byte, error) {
	return s.store.ReadBackup(ctx, id, slot)
}
