package backend

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Backend abstracts one DBMS behind a uniform capability surface:
// connecting, literal escaping, row iteration and schema introspection.
type Backend interface {
	// Close releases the underlying connection. Call it exactly once.
	Close() error

	// Escape renders v as an injection-safe SQL literal for this dialect,
	// suitable for splicing directly into generated statement text.
	Escape(v any) string

	// Query executes a statement and returns a single-pass row iterator.
	// The caller must Close it.
	Query(query string, args ...any) (Rows, error)

	// Exec runs one statement that returns no rows.
	Exec(stmt string) error

	// Tables lists the base table names of the connected database.
	Tables() ([]string, error)

	// Columns describes the columns of a table, in declaration order.
	Columns(table string) ([]Column, error)

	// Keys describes the non-primary keys of a table. The primary key is
	// reported through Column.PrimaryKeySeq instead.
	Keys(table string) ([]Key, error)

	// InsertVerb returns the dialect's INSERT verb, including the
	// duplicate-ignore keyword when ignore is set and the dialect has one
	// (e.g. "insert ignore" on MySQL, "insert or ignore" on SQLite).
	InsertVerb(ignore bool) string

	// InsertSuffix returns a trailing duplicate-ignore clause for dialects
	// that place it after the value list (e.g. PostgreSQL's
	// "on conflict do nothing"), or "".
	InsertSuffix(ignore bool) string
}

// Column is a normalized column descriptor. Type and Default stay in the
// source dialect's native form.
type Column struct {
	Name    string
	Type    string
	NotNull bool
	Default any // nil when the column has no default

	// PrimaryKeySeq is the 1-based position of the column within the
	// table's primary key, or 0 when the column is not part of it.
	PrimaryKeySeq int
}

// Key is a normalized descriptor for a non-primary key. Field order
// reproduces the key definition and is significant.
type Key struct {
	Name   string
	Unique bool
	Fields []string
}

// Row is one result row as generic values.
type Row []any

// Rows is a pull-based, single-pass row sequence. It is not restartable;
// release it with Close as soon as iteration ends.
type Rows interface {
	Next() bool
	Row() Row
	Err() error
	Close() error
}

// ErrKeySequence reports key fields arriving out of sequence during
// introspection. The schema is inconsistent; no partial repair is
// attempted.
var ErrKeySequence = errors.New("key fields not returned in sequence")

// ErrIndexDDL reports stored index DDL that the reverse-parser does not
// recognize. No partial key is produced for that index.
var ErrIndexDDL = errors.New("unrecognized index definition")

// UsageError is a caller mistake detected before any connection attempt:
// a malformed parameter string, an unknown backend identifier or an
// unknown parameter name.
type UsageError struct {
	msg string
}

func (e *UsageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &UsageError{msg: fmt.Sprintf(format, args...)}
}

// sqlRows adapts database/sql result sets to the Rows iterator, scanning
// every row into generic values.
type sqlRows struct {
	rows      *sql.Rows
	keepBytes []bool // per column: binary stays []byte
	cur       Row
	err       error
}

func newSQLRows(rows *sql.Rows) *sqlRows {
	return &sqlRows{rows: rows}
}

// binaryType reports declared column types whose values must stay raw
// bytes rather than become text.
func binaryType(dbType string) bool {
	switch {
	case strings.Contains(dbType, "BLOB"),
		strings.Contains(dbType, "BINARY"),
		strings.Contains(dbType, "BYTEA"),
		strings.Contains(dbType, "RAW"),
		strings.Contains(dbType, "IMAGE"):
		return true
	}
	return false
}

func (r *sqlRows) Next() bool {
	if r.err != nil {
		return false
	}
	if !r.rows.Next() {
		r.err = r.rows.Err()
		return false
	}
	if r.keepBytes == nil {
		types, err := r.rows.ColumnTypes()
		if err != nil {
			r.err = err
			return false
		}
		r.keepBytes = make([]bool, len(types))
		for i, ct := range types {
			r.keepBytes[i] = binaryType(strings.ToUpper(ct.DatabaseTypeName()))
		}
	}
	vals := make([]any, len(r.keepBytes))
	ptrs := make([]any, len(r.keepBytes))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		r.err = err
		return false
	}
	// MySQL's text protocol hands most values back as []byte; normalize
	// text columns to string so callers can switch on a small set of
	// types. Binary columns keep their bytes for blob-literal escaping.
	for i, v := range vals {
		if b, ok := v.([]byte); ok && !r.keepBytes[i] {
			vals[i] = string(b)
		}
	}
	r.cur = vals
	return true
}

func (r *sqlRows) Row() Row     { return r.cur }
func (r *sqlRows) Err() error   { return r.err }
func (r *sqlRows) Close() error { return r.rows.Close() }

// sqlBackend carries the connection handling shared by every
// database/sql backed implementation.
type sqlBackend struct {
	db *sql.DB
}

func (b *sqlBackend) Close() error {
	return b.db.Close()
}

func (b *sqlBackend) Exec(stmt string) error {
	_, err := b.db.Exec(stmt)
	return err
}

func (b *sqlBackend) Query(q string, args ...any) (Rows, error) {
	rows, err := b.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return newSQLRows(rows), nil
}

// open dials a driver and verifies the connection immediately, so that
// authentication and transport failures surface at construction.
func open(driverName, dsn, backendName string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s open: %w", backendName, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s connect: %w", backendName, err)
	}
	return db, nil
}
