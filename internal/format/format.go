// Package format provides output formatting utilities for CLI display.
//
// Centralises formatting logic so that command implementations focus on
// record operations while this package handles presentation concerns like
// column alignment, markdown rendering of a single record and colourised
// diffs.
package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/jpl-au/fermi/internal/collection"
	"github.com/jpl-au/fermi/internal/diff"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/jpl-au/fermi/internal/storage"
)

// shortID is the number of id characters shown in tables.
const shortID = 8

// humanSize formats a byte count as human-readable (e.g., "1.2K", "3.4M").
func humanSize(bytes int64) string {
	const (
		_        = iota
		KB int64 = 1 << (10 * iota)
		MB
		GB
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1fG", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1fM", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1fK", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}

// Short truncates an id for display.
func Short(id string) string {
	if len(id) > shortID {
		return id[:shortID]
	}
	return id
}

// List prints records in simple list format.
func List(w io.Writer, rs []record.Record) error {
	for _, r := range rs {
		fmt.Fprintf(w, "%s  %s\n", Short(r.ID), r.Name)
	}
	return nil
}

// IDs prints full record ids, one per line.
func IDs(w io.Writer, rs []record.Record) error {
	for _, r := range rs {
		fmt.Fprintln(w, r.ID)
	}
	return nil
}

// Long prints records in long format. Records whose end date is before
// today and that are still active are marked overdue.
//
// Column order is ID, STATE, START, END, CONTAINER, NAME. Fixed-width
// columns come first; NAME goes last so long names do not break the
// alignment.
func Long(w io.Writer, rs []record.Record, today record.Date) error {
	if len(rs) == 0 {
		return nil
	}

	maxContainer := len("CONTAINER")
	for _, r := range rs {
		maxContainer = max(maxContainer, len(r.Container))
	}

	fmt.Fprintf(w, "%-8s  %-11s  %-10s  %-10s  %-*s  %s\n", "ID", "STATE", "START", "END", maxContainer, "CONTAINER", "NAME")
	for _, r := range rs {
		container := r.Container
		if container == "" {
			container = "-"
		}
		flag := ""
		switch {
		case r.Active() && r.EndDate.Before(today):
			flag = " [overdue]"
		case r.Active() && r.EndDate == today:
			flag = " [due]"
		}
		fmt.Fprintf(w, "%-8s  %-11s  %s  %s  %-*s  %s%s\n",
			Short(r.ID), r.State(), r.StartDate, r.EndDate, maxContainer, container, r.Name, flag)
	}
	return nil
}

// Markdown renders one record as a markdown document suitable for
// terminal rendering.
func Markdown(r record.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Name)
	fmt.Fprintf(&b, "- **ID:** `%s`\n", r.ID)
	fmt.Fprintf(&b, "- **State:** %s\n", r.State())
	if r.Container != "" {
		fmt.Fprintf(&b, "- **Container:** %s\n", r.Container)
	}
	fmt.Fprintf(&b, "- **Dates:** %s to %s\n", r.StartDate, r.EndDate)

	switch d := r.Details.(type) {
	case record.Completed:
		fmt.Fprintf(&b, "- **Completed:** %s\n", d.CompletedAt)
		b.WriteString("\n## Ratings\n\n| Aspect | Stars | Notes |\n|---|---|---|\n")
		for _, row := range []struct {
			name string
			r    record.Rating
		}{
			{"Overall", d.Ratings.Overall},
			{"Taste", d.Ratings.Taste},
			{"Aroma", d.Ratings.Aroma},
			{"Texture", d.Ratings.Texture},
			{"Appearance", d.Ratings.Appearance},
		} {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", row.name, stars(row.r.Stars), row.r.Notes)
		}
	case record.Failed:
		fmt.Fprintf(&b, "- **Failed:** %s\n\n> %s\n", d.FailedAt, d.Reason)
	}

	if len(r.Ingredients) > 0 {
		b.WriteString("\n## Ingredients\n\n")
		for _, in := range r.Ingredients {
			qty := strings.TrimSpace(fmt.Sprintf("%g %s", in.Quantity, in.Unit))
			fmt.Fprintf(&b, "- %s (%s)\n", in.Name, qty)
		}
	}
	if len(r.Images) > 0 {
		b.WriteString("\n## Images\n\n")
		for _, img := range r.Images {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", img.Name, img.MimeType, humanSize(int64(len(img.Data))))
		}
	}
	if r.Notes != "" {
		fmt.Fprintf(&b, "\n## Notes\n\n%s\n", r.Notes)
	}
	return b.String()
}

func stars(n *int) string {
	if n == nil {
		return "-"
	}
	return strings.Repeat("★", *n) + strings.Repeat("☆", 5-*n)
}

// Backups prints backup slots, newest first.
func Backups(w io.Writer, bs []storage.Backup) error {
	fmt.Fprintf(w, "%4s  %6s  %s\n", "SLOT", "SIZE", "MODIFIED")
	for _, b := range bs {
		fmt.Fprintf(w, "%4d  %6s  %s\n", b.Slot, humanSize(b.Size), b.ModTime.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// BackupDiffs prints each backup with the change the following write made.
func BackupDiffs(w io.Writer, bs []storage.Backup, diffs []diff.Result, colour bool) error {
	for i, b := range bs {
		if i >= len(diffs) {
			break
		}
		fmt.Fprintf(w, "=== slot %d (%s) ===\n", b.Slot, b.ModTime.Local().Format("2006-01-02 15:04"))
		fmt.Fprint(w, diffs[i].Format(colour))
		fmt.Fprintln(w)
	}
	return nil
}

// Failures prints records that could not be loaded.
func Failures(w io.Writer, fs []collection.LoadFailure) error {
	for _, f := range fs {
		fmt.Fprintf(w, "%s  %v\n", f.ID, f.Err)
	}
	return nil
}
