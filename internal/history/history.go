// Package history lists the backup slots kept for a record, optionally
// with the diff each write introduced.
//
// Slots are newest first: backup_1.json is the value before the most
// recent write. With diffs enabled each entry is compared with the next
// newer revision, ending at the current data.json.
package history

import (
	"context"
	"fmt"
	"io"

	"github.com/jpl-au/fermi/internal/diff"
	"github.com/jpl-au/fermi/internal/format"
	"github.com/jpl-au/fermi/internal/storage"
)

// Source provides the backups of a record and the raw revisions to diff.
type Source interface {
	diff.Differ
	Backups(ctx context.Context, id string) ([]storage.Backup, error)
}

// Options configures a history operation.
type Options struct {
	Limit    int  // Maximum slots to return (0 = all)
	ShowDiff bool // Show diffs between revisions
	Colour   bool // Colourise diff output
}

// Result contains the outcome of a history operation.
type Result struct {
	ID      string           `json:"id"`
	Backups []storage.Backup `json:"backups"`
	Diffs   []diff.Result    `json:"diffs,omitempty"`
}

// Run lists the backups of id and writes them to w.
func Run(ctx context.Context, w io.Writer, svc Source, id string, opts Options) (Result, error) {
	result := Result{ID: id}

	backups, err := svc.Backups(ctx, id)
	if err != nil {
		return result, err
	}
	if opts.Limit > 0 && len(backups) > opts.Limit {
		backups = backups[:opts.Limit]
	}
	result.Backups = backups

	if len(backups) == 0 {
		fmt.Fprintf(w, "no backups for %s\n", id)
		return result, nil
	}

	if !opts.ShowDiff {
		return result, format.Backups(w, backups)
	}

	for _, b := range backups {
		var d diff.Result
		d, err = diff.Run(ctx, io.Discard, svc, id, diff.Options{From: b.Slot, To: b.Slot - 1}, opts.Colour)
		if err != nil {
			return result, err
		}
		result.Diffs = append(result.Diffs, d)
	}
	return result, format.BackupDiffs(w, backups, result.Diffs, opts.Colour)
}
