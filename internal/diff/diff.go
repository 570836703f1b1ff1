// Package diff compares a record's current data.json with one of its
// backup slots, or two slots with each other.
package diff

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is the number of unchanged lines shown before/after changes.
// When equal sections exceed 2*contextLines, they're collapsed with "...".
const contextLines = 3

// Current names the live data.json in a slot range.
const Current = 0

// Options selects the two sides of the comparison. Slot 0 is the current
// file; 1..n are backups, 1 being the newest.
type Options struct {
	From int
	To   int
}

// Differ reads the raw revisions of a record.
type Differ interface {
	Current(ctx context.Context, id string) ([]byte, error)
	ReadBackup(ctx context.Context, id string, slot int) ([]byte, error)
}

// Result holds diff output.
type Result struct {
	ID   string `json:"id"`
	Old  string `json:"old"`
	New  string `json:"new"`
	Diff string `json:"diff"`
}

// Run diffs two revisions of id and writes the formatted diff to w.
func Run(ctx context.Context, w io.Writer, svc Differ, id string, opts Options, colour bool) (Result, error) {
	oldRaw, err := read(ctx, svc, id, opts.From)
	if err != nil {
		return Result{ID: id}, err
	}
	newRaw, err := read(ctx, svc, id, opts.To)
	if err != nil {
		return Result{ID: id}, err
	}

	r := Compute(string(oldRaw), string(newRaw), Label(opts.From), Label(opts.To))
	r.ID = id
	fmt.Fprint(w, r.Format(colour))
	return r, nil
}

func read(ctx context.Context, svc Differ, id string, slot int) ([]byte, error) {
	if slot == Current {
		return svc.Current(ctx, id)
	}
	return svc.ReadBackup(ctx, id, slot)
}

// Label names a slot the way it appears on disk.
func Label(slot int) string {
	if slot == Current {
		return "data.json"
	}
	return "backup_" + strconv.Itoa(slot) + ".json"
}

// Compute returns a diff between old and new content.
func Compute(oldContent, newContent, oldLabel, newLabel string) Result {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldContent, newContent)
	d := dmp.DiffMain(a, b, false)
	d = dmp.DiffCharsToLines(d, lines)

	return Result{
		Old:  oldLabel,
		New:  newLabel,
		Diff: format(d),
	}
}

// format converts diffs to unified-style text.
func format(diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		// Trim trailing newline to avoid artefact empty string from Split
		text := strings.TrimSuffix(d.Text, "\n")
		if text == "" {
			continue
		}
		lines := strings.Split(text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			for _, l := range lines {
				b.WriteString("- " + l + "\n")
			}
		case diffmatchpatch.DiffInsert:
			for _, l := range lines {
				b.WriteString("+ " + l + "\n")
			}
		case diffmatchpatch.DiffEqual:
			if len(lines) > 2*contextLines {
				for i := range contextLines {
					b.WriteString("  " + lines[i] + "\n")
				}
				b.WriteString("  ...\n")
				for i := len(lines) - contextLines; i < len(lines); i++ {
					b.WriteString("  " + lines[i] + "\n")
				}
			} else {
				for _, l := range lines {
					b.WriteString("  " + l + "\n")
				}
			}
		}
	}
	return b.String()
}

// Colourise adds ANSI colours to diff output.
func Colourise(d string) string {
	const (
		red   = "\033[31m"
		green = "\033[32m"
		reset = "\033[0m"
	)

	var b strings.Builder
	for _, line := range strings.Split(d, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "- "):
			b.WriteString(red + line + reset + "\n")
		case strings.HasPrefix(line, "+ "):
			b.WriteString(green + line + reset + "\n")
		default:
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

// Format returns the full diff with header.
func (r Result) Format(colour bool) string {
	header := fmt.Sprintf("--- %s\n+++ %s\n", r.Old, r.New)
	if colour {
		return header + Colourise(r.Diff)
	}
	return header + r.Diff
}

// Changed reports whether the two sides differ.
func (r Result) Changed() bool {
	for _, line := range strings.Split(r.Diff, "\n") {
		if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "+ ") {
			return true
		}
	}
	return false
}

// ParseSlotRange parses "FROM:TO" into two slots. "1" alone means backup 1
// against the current file.
func ParseSlotRange(s string) (from, to int, err error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		from, err = parseSlot(parts[0], "slot")
		return from, Current, err
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return 0, 0, fmt.Errorf("invalid slot range %q: both slots required", s)
		}
		if from, err = parseSlot(parts[0], "start slot"); err != nil {
			return 0, 0, err
		}
		if to, err = parseSlot(parts[1], "end slot"); err != nil {
			return 0, 0, err
		}
		if from == to {
			return 0, 0, fmt.Errorf("invalid slot range %q: slots are the same", s)
		}
		return from, to, nil
	default:
		return 0, 0, fmt.Errorf("invalid slot range %q (expected from:to)", s)
	}
}

func parseSlot(s, what string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", what, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s: %d is negative", what, n)
	}
	return n, nil
}
