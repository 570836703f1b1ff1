// Package log is the audit trail of fermi operations. Entries are stored
// in ~/.fermi/log/fermi-log.db and record every CLI command and MCP tool
// call, across storage roots.
//
// Diagnostic output (warnings, debug traces) goes through internal/logging
// instead; this package only records what was done and whether it worked.
//
// # Fluent API
//
//	log.Event("ferment:complete", "update").
//		Actor(cmd.Actor()).
//		Record(id).
//		Detail("stars", stars).
//		Write(err)
//
// Source is "{extension}:{command}" for CLI commands and "mcp:{tool}" for
// MCP tools.
package log

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry is one audit record.
type Entry struct {
	Source string // "ferment:add", "mcp:fermi_due"
	Actor  string // who ran it: the OS user for the CLI, "mcp" for tools
	Action string // read, insert, update, delete, list, export, ...
	Record string // record id, when the operation targets one
	Slot   int    // backup slot read or restored, 0 for none

	Start int64 // unix millis when Event was called
	End   int64 // unix millis when Write was called

	Success bool
	Error   string
	Detail  map[string]any
}

// Builder accumulates an Entry. Create with Event, finish with Write.
type Builder struct {
	entry Entry
}

// Event starts an entry for source performing action.
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().UnixMilli(),
		},
	}
}

// Actor sets who performed the operation.
func (b *Builder) Actor(actor string) *Builder {
	b.entry.Actor = actor
	return b
}

// Record sets the record id the operation targets.
func (b *Builder) Record(id string) *Builder {
	b.entry.Record = id
	return b
}

// Slot sets the backup slot involved.
func (b *Builder) Slot(slot int) *Builder {
	b.entry.Slot = slot
	return b
}

// Detail adds a key-value pair. Can be called repeatedly.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write stores the entry; err decides success.
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().UnixMilli()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger. Safe to call more than once.
// Callers usually treat errors as warnings: auditing is best-effort.
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	global = &Logger{db: db}
	return nil
}

// SetRoot tags subsequent entries with a hash of the storage root.
func SetRoot(root string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.root = hash(root)
	}
}

// Log writes e. A no-op when the logger is not open.
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Recent returns up to n of the newest entries, newest first.
func Recent(n int) ([]Entry, error) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return nil, nil
	}
	return l.recent(n)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}
