// Package ls lists records with filtering and sorting.
//
// Filters combine: a state, a container, a free-text search and an
// optional expression are all applied together. The listing is a one-shot
// evaluation of a query over the loaded collection; nothing is read from
// disk.
package ls

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jpl-au/fermi/internal/format"
	"github.com/jpl-au/fermi/internal/query"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/jpl-au/fermi/internal/service"
)

// Options configures a list operation.
type Options struct {
	State     record.State // Only records in this state
	Container string       // Only records in this container (case-insensitive)
	Search    string       // Free-text match on name, container, notes, ingredients
	Where     string       // Expression filter
	Sort      string       // One of query.SortKeys (default endDate)
	Reverse   bool         // Reverse sort order
	Limit     int          // Maximum records (0 = all)
	Long      bool         // Long format with state and dates
	Today     record.Date  // Reference date for overdue marking
}

// Result contains the outcome of a list operation.
type Result struct {
	Records []record.Record `json:"records"`
}

// Spec translates opts into a query.
func Spec(opts Options) (query.Spec, error) {
	if opts.State != "" && !slices.Contains(record.States(), opts.State) {
		return query.Spec{}, fmt.Errorf("unknown state %q", opts.State)
	}
	sortBy := opts.Sort
	if sortBy == "" {
		sortBy = query.SortEndDate
	}
	search := query.Search(opts.Search).Filter
	container := strings.TrimSpace(opts.Container)

	return query.Spec{
		Where: opts.Where,
		Filter: func(r record.Record) bool {
			if opts.State != "" && r.State() != opts.State {
				return false
			}
			if container != "" && !strings.EqualFold(r.Container, container) {
				return false
			}
			return search(r)
		},
		SortBy: sortBy,
		Desc:   opts.Reverse,
		Limit:  opts.Limit,
		Today:  opts.Today,
	}, nil
}

// Run lists records and writes formatted output to w.
func Run(ctx context.Context, w io.Writer, svc service.Service, opts Options) (Result, error) {
	var result Result

	spec, err := Spec(opts)
	if err != nil {
		return result, err
	}
	rs, err := svc.List(ctx, spec)
	if err != nil {
		return result, err
	}
	result.Records = rs

	if opts.Long {
		today := opts.Today
		if today == "" {
			today = record.Today()
		}
		return result, format.Long(w, rs, today)
	}
	return result, format.List(w, rs)
}
