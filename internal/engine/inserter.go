package engine

import (
	"fmt"
	"strings"

	"db-bridge/internal/backend"
)

// InsertLimit is the batch ceiling: the buffer never holds more rows than
// this. MySQL could take larger batches, but SQLite can't handle more.
const InsertLimit = 500

// Inserter buffers records for a table and writes them out as grouped
// multi-row INSERT statements. Values are escaped through the bound
// backend the moment they are added.
//
// Nothing flushes automatically at end of stream: the caller MUST call
// Flush after the last Add, or the tail of the data is lost.
type Inserter struct {
	be               backend.Backend
	table            string
	fields           []string
	ignoreDuplicates bool
	buf              [][]string // pre-escaped literal rows
}

// NewInserter binds an inserter to a backend, a target table and a fixed
// field order. With ignoreDuplicates set, rows violating a uniqueness
// constraint are silently skipped where the dialect supports it.
func NewInserter(be backend.Backend, table string, fields []string, ignoreDuplicates bool) *Inserter {
	return &Inserter{
		be:               be,
		table:            table,
		fields:           append([]string(nil), fields...),
		ignoreDuplicates: ignoreDuplicates,
	}
}

// Pending reports how many records are buffered but not yet flushed.
func (ins *Inserter) Pending() int { return len(ins.buf) }

// Add buffers one record given positionally in field order. If the buffer
// is already at the batch ceiling it is flushed first.
func (ins *Inserter) Add(values ...any) error {
	if len(values) != len(ins.fields) {
		return fmt.Errorf("record has %d values, want %d", len(values), len(ins.fields))
	}
	record := make([]string, len(values))
	for i, v := range values {
		record[i] = ins.be.Escape(v)
	}
	return ins.push(record)
}

// AddMap buffers one record given as a mapping keyed by field name.
func (ins *Inserter) AddMap(values map[string]any) error {
	record := make([]string, len(ins.fields))
	for i, field := range ins.fields {
		v, ok := values[field]
		if !ok {
			return fmt.Errorf("record is missing field %s", field)
		}
		record[i] = ins.be.Escape(v)
	}
	return ins.push(record)
}

func (ins *Inserter) push(record []string) error {
	if len(ins.buf) == InsertLimit {
		if err := ins.Flush(); err != nil {
			return err
		}
	}
	ins.buf = append(ins.buf, record)
	return nil
}

// Flush writes all buffered records in one INSERT statement and clears
// the buffer. Empty buffer is a no-op. On execution failure the backend's
// error is returned unchanged and the buffer is kept for inspection.
func (ins *Inserter) Flush() error {
	if len(ins.buf) == 0 {
		return nil
	}
	var stmt strings.Builder
	stmt.WriteString(ins.be.InsertVerb(ins.ignoreDuplicates))
	stmt.WriteString(" into ")
	stmt.WriteString(ins.table)
	stmt.WriteString(" (")
	stmt.WriteString(strings.Join(ins.fields, ", "))
	stmt.WriteString(") values")
	for i, record := range ins.buf {
		if i > 0 {
			stmt.WriteString(",")
		}
		stmt.WriteString(" (")
		stmt.WriteString(strings.Join(record, ", "))
		stmt.WriteString(")")
	}
	stmt.WriteString(ins.be.InsertSuffix(ins.ignoreDuplicates))

	if err := ins.be.Exec(stmt.String()); err != nil {
		return fmt.Errorf("insert into %s failed: %w", ins.table, err)
	}
	ins.buf = ins.buf[:0]
	return nil
}
