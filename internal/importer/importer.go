// Package importer reads YAML or JSON record files and inserts them.
//
// Every file is parsed and validated on its own; a bad file is reported
// and the rest are still imported. Valid records are inserted as one
// batch, so writes run concurrently and a write failure affects only its
// own record.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jpl-au/fermi/internal/collection"
	"github.com/jpl-au/fermi/internal/progress"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/jpl-au/fermi/internal/service"
	"gopkg.in/yaml.v3"
)

// Options configures an import operation.
type Options struct {
	Replace bool // Overwrite records whose id already exists
	Hidden  bool // Include hidden files/directories
	DryRun  bool // Parse and report without writing
}

// Failure is one file that could not be imported.
type Failure struct {
	File  string `json:"file"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

// Result contains the outcome of an import operation.
type Result struct {
	Imported int       `json:"imported"`
	IDs      []string  `json:"ids"`
	Failed   []Failure `json:"failed,omitempty"`
}

type parsed struct {
	file string
	rec  record.Record
}

// Run imports src, a single file or a directory scanned recursively.
// Reads are confined to the source directory with os.Root.
func Run(ctx context.Context, w io.Writer, svc service.Service, src string, opts Options) (Result, error) {
	var result Result

	info, err := os.Stat(src)
	if err != nil {
		return result, err
	}

	dir, files := filepath.Dir(src), []string{filepath.Base(src)}
	if info.IsDir() {
		dir = src
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return result, fmt.Errorf("opening source root: %w", err)
	}
	defer root.Close()

	if info.IsDir() {
		if files, err = scanRoot(root, "", opts.Hidden); err != nil {
			return result, fmt.Errorf("scanning %s: %w", src, err)
		}
	}

	var recs []parsed
	for _, name := range files {
		data, err := root.ReadFile(name)
		if err == nil {
			var r record.Record
			if r, err = Decode(name, data); err == nil {
				recs = append(recs, parsed{file: name, rec: r})
				continue
			}
		}
		result.Failed = append(result.Failed, Failure{File: name, Error: err.Error()})
		fmt.Fprintf(w, "Skipped: %s: %v\n", name, err)
	}

	if opts.DryRun {
		for _, p := range recs {
			result.IDs = append(result.IDs, p.rec.ID)
			fmt.Fprintf(w, "Would import: %s -> %s\n", p.file, p.rec.ID)
		}
		return result, nil
	}

	muts := make([]collection.Mutation, len(recs))
	for i, p := range recs {
		muts[i] = mutation(ctx, svc, p.rec, opts.Replace)
	}

	prog := progress.New("Importing", len(muts))
	defer prog.Done()

	for i, err := range svc.Batch(ctx, muts...) {
		prog.Increment()
		p := recs[i]
		if err != nil {
			result.Failed = append(result.Failed, Failure{File: p.file, ID: p.rec.ID, Error: err.Error()})
			fmt.Fprintf(w, "Failed: %s: %v\n", p.file, err)
			continue
		}
		result.Imported++
		result.IDs = append(result.IDs, p.rec.ID)
		fmt.Fprintf(w, "Imported: %s -> %s\n", p.file, p.rec.ID)
	}
	return result, nil
}

// mutation inserts r, or replaces an existing record when replace is set.
func mutation(ctx context.Context, svc service.Service, r record.Record, replace bool) collection.Mutation {
	if replace {
		if _, err := svc.Get(ctx, r.ID); err == nil {
			return collection.Mutation{
				Op: collection.OpUpdate,
				ID: r.ID,
				Mutate: func(record.Record) (record.Record, error) {
					return r, nil
				},
			}
		}
	}
	return collection.Mutation{Op: collection.OpInsert, Record: r}
}

// Decode parses one record file by extension. YAML is converted to JSON
// first so both formats pass the same schema checks.
func Decode(name string, data []byte) (record.Record, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return record.Parse(data)
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return record.Record{}, fmt.Errorf("%w: %v", record.ErrInvalid, err)
		}
		if doc == nil {
			return record.Record{}, fmt.Errorf("%w: empty document", record.ErrInvalid)
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return record.Record{}, fmt.Errorf("%w: %v", record.ErrInvalid, err)
		}
		return record.Parse(raw)
	default:
		return record.Record{}, errors.New("not a .yaml, .yml or .json file")
	}
}

// scanRoot recursively finds record files within an os.Root. Returns
// relative paths from the root.
func scanRoot(root *os.Root, dir string, includeHidden bool) ([]string, error) {
	var files []string

	path := dir
	if path == "" {
		path = "."
	}

	f, err := root.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		name := entry.Name()
		if !includeHidden && strings.HasPrefix(name, ".") {
			continue
		}

		rel := name
		if dir != "" {
			rel = filepath.Join(dir, name)
		}

		if entry.IsDir() {
			sub, err := scanRoot(root, rel, includeHidden)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
			continue
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".yaml", ".yml", ".json":
			files = append(files, rel)
		}
	}
	return files, nil
}
