// log_storage.go persists audit entries in SQLite.
//
// Write errors are reported on stderr and otherwise ignored: a record
// update must succeed even when the audit trail cannot be written. The
// root column is a BLAKE2b hash of the storage root, so entries from
// different roots can be told apart without storing the path.

package log

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	fpath "github.com/jpl-au/fermi/internal/path"
	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

// Logger writes audit entries to a SQLite database.
type Logger struct {
	db   *sql.DB
	root string
}

func (l *Logger) log(e Entry) {
	var detail *string
	if len(e.Detail) > 0 {
		if b, err := json.Marshal(e.Detail); err == nil {
			s := string(b)
			detail = &s
		}
	}

	success := 0
	if e.Success {
		success = 1
	}

	_, err := l.db.Exec(`
		INSERT INTO audit (start_ms, end_ms, root, source, actor, action, record, slot,
		                   success, error, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Start, e.End, l.root, e.Source, nilIfEmpty(e.Actor), e.Action,
		nilIfEmpty(e.Record), nilIfZero(e.Slot),
		success, nilIfEmpty(e.Error), detail,
	)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "fermi: audit log write failed: %v\n", err)
	}
}

func (l *Logger) recent(n int) ([]Entry, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := l.db.Query(`
		SELECT start_ms, end_ms, source, actor, action, record, slot, success, error, detail
		FROM audit ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                    Entry
			actor, rec, msg, det sql.NullString
			slot                 sql.NullInt64
			success              int
		)
		if err := rows.Scan(&e.Start, &e.End, &e.Source, &actor, &e.Action, &rec, &slot, &success, &msg, &det); err != nil {
			return nil, err
		}
		e.Actor = actor.String
		e.Record = rec.String
		e.Slot = int(slot.Int64)
		e.Success = success == 1
		e.Error = msg.String
		if det.Valid {
			_ = json.Unmarshal([]byte(det.String), &e.Detail)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// dbPathFunc returns the database path. Tests override it.
var dbPathFunc = func() string {
	return filepath.Join(fpath.Home(), "log", "fermi-log.db")
}

func dbPath() string {
	return dbPathFunc()
}

// DBPath returns the path to the audit database.
func DBPath() string {
	return dbPath()
}

// hash returns a 64-bit BLAKE2b digest of s in hex.
func hash(s string) string {
	h, err := blake2b.New(8, nil)
	if err != nil {
		panic("blake2b.New failed: " + err.Error())
	}
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			start_ms INTEGER NOT NULL,
			end_ms   INTEGER NOT NULL,
			root     TEXT NOT NULL,
			source   TEXT NOT NULL,
			actor    TEXT,
			action   TEXT NOT NULL,
			record   TEXT,
			slot     INTEGER,
			success  INTEGER NOT NULL,
			error    TEXT,
			detail   TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_audit_start ON audit(start_ms);
		CREATE INDEX IF NOT EXISTS idx_audit_root ON audit(root);
		CREATE INDEX IF NOT EXISTS idx_audit_record ON audit(record);
	`)
	return err
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nilIfZero(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
