package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/goccy/go-json"
	"github.com/jpl-au/fermi/internal/validate"
)

// Read returns the raw contents of id's data.json.
func (s *Store) Read(ctx context.Context, id string) ([]byte, error) {
	if err := validate.ID(id); err != nil {
		return nil, err
	}
	r, err := s.openRoot()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := r.ReadFile(dataPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, id, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s: data.json is not valid JSON", ErrRead, id)
	}
	return data, nil
}
