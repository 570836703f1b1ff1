// Package revert restores a record from one of its backup slots.
//
// Restoring is a normal update: the current value is rotated into
// backup_1.json first, so a restore can itself be undone by restoring
// slot 1. A record whose data.json failed to load is restored by
// inserting the backup; the broken file is rotated the same way.
package revert

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jpl-au/fermi/internal/collection"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/jpl-au/fermi/internal/service"
)

// Result contains the outcome of a restore.
type Result struct {
	ID     string        `json:"id"`
	Slot   int           `json:"slot"`
	Record record.Record `json:"record"`
}

// Run replaces id with the content of backup slot. The backup must parse
// and validate, and must belong to the same record.
func Run(ctx context.Context, w io.Writer, svc service.Service, id string, slot int) (Result, error) {
	result := Result{ID: id, Slot: slot}
	if slot < 1 {
		return result, fmt.Errorf("invalid backup slot %d: must be 1 or higher", slot)
	}

	raw, err := svc.ReadBackup(ctx, id, slot)
	if err != nil {
		return result, err
	}
	old, err := record.Parse(raw)
	if err != nil {
		return result, fmt.Errorf("backup %d of %s: %w", slot, id, err)
	}
	if old.ID != id {
		return result, fmt.Errorf("backup %d of %s belongs to %s", slot, id, old.ID)
	}

	var r record.Record
	_, err = svc.Get(ctx, id)
	switch {
	case err == nil:
		// Created time is kept from the current record; everything else
		// comes from the backup.
		r, err = svc.Update(ctx, id, func(cur record.Record) (record.Record, error) {
			old.CreatedAt = cur.CreatedAt
			return old, nil
		})
	case errors.Is(err, collection.ErrNotFound) && failedToLoad(svc, id):
		r, err = svc.Add(ctx, old)
	}
	if err != nil {
		return result, fmt.Errorf("restore %s: %w", id, err)
	}
	result.Record = r

	fmt.Fprintf(w, "Restored %s from backup %d\n", id, slot)
	return result, nil
}

func failedToLoad(svc service.Service, id string) bool {
	for _, f := range svc.Failed() {
		if f.ID == id {
			return true
		}
	}
	return false
}
