// Package exporter writes records to the filesystem as YAML or JSON, one
// file per record named after its id.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/jpl-au/fermi/internal/progress"
	"github.com/jpl-au/fermi/internal/query"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/jpl-au/fermi/internal/service"
	"gopkg.in/yaml.v3"
)

// Formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned for a format other than yaml or json.
var ErrUnknownFormat = errors.New("unknown export format")

// Options configures an export operation.
type Options struct {
	Format string     // yaml (default) or json
	Force  bool       // Overwrite existing files
	Spec   query.Spec // Which records to export (default all)
}

// Result contains the outcome of an export operation.
type Result struct {
	Exported int      `json:"exported"`
	Paths    []string `json:"paths"`
}

// Run exports the records selected by opts.Spec into dst, creating it if
// needed. Writes are confined to dst with os.Root.
func Run(ctx context.Context, w io.Writer, svc service.Service, dst string, opts Options) (Result, error) {
	var result Result

	ext, err := extension(opts.Format)
	if err != nil {
		return result, err
	}

	rs, err := svc.List(ctx, opts.Spec)
	if err != nil {
		return result, err
	}
	if len(rs) == 0 {
		return result, fmt.Errorf("no records to export")
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return result, fmt.Errorf("creating destination directory: %w", err)
	}
	root, err := os.OpenRoot(dst)
	if err != nil {
		return result, fmt.Errorf("opening destination root: %w", err)
	}
	defer root.Close()

	prog := progress.New("Exporting", len(rs))
	defer prog.Done()

	for _, r := range rs {
		data, err := Encode(r, opts.Format)
		if err != nil {
			return result, fmt.Errorf("encoding %s: %w", r.ID, err)
		}
		name := r.ID + ext
		if err := writeFileInRoot(root, name, data, opts.Force); err != nil {
			return result, err
		}

		prog.Increment()
		outPath := filepath.Join(dst, name)
		result.Paths = append(result.Paths, outPath)
		result.Exported++
		fmt.Fprintf(w, "Exported: %s -> %s\n", r.ID, outPath)
	}
	return result, nil
}

// Encode renders r in format. YAML is produced from the canonical JSON
// form so both formats carry the same keys.
func Encode(r record.Record, format string) ([]byte, error) {
	raw, err := record.Marshal(r)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return append(raw, '\n'), nil
	case FormatYAML, "":
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func extension(format string) (string, error) {
	switch format {
	case FormatYAML, "":
		return ".yaml", nil
	case FormatJSON:
		return ".json", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// writeFileInRoot writes content to a file within an os.Root, refusing to
// overwrite unless force is set.
func writeFileInRoot(root *os.Root, name string, content []byte, force bool) error {
	if !force {
		if _, err := root.Stat(name); err == nil {
			return fmt.Errorf("file exists: %s (use --force to overwrite)", name)
		}
	}

	f, err := root.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", name, err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return fmt.Errorf("writing file %s: %w", name, err)
	}
	return f.Close()
}
