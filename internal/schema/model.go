package schema

import (
	"fmt"

	"db-bridge/internal/backend"
)

// Table is the normalized schema view of one table, independent of the
// source dialect.
type Table struct {
	Name    string
	Columns []backend.Column
	Keys    []backend.Key
}

// Describe walks tables, columns and keys of a connected backend into
// normalized descriptors.
func Describe(b backend.Backend) ([]*Table, error) {
	names, err := b.Tables()
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	var tables []*Table
	for _, name := range names {
		cols, err := b.Columns(name)
		if err != nil {
			return nil, fmt.Errorf("failed to describe columns of %s: %w", name, err)
		}
		keys, err := b.Keys(name)
		if err != nil {
			return nil, fmt.Errorf("failed to describe keys of %s: %w", name, err)
		}
		tables = append(tables, &Table{Name: name, Columns: cols, Keys: keys})
	}
	return tables, nil
}

// PrimaryKey returns the primary-key field names in key order, built from
// the per-column sequence positions. The positions must form a
// permutation of 1..k; a gap or duplicate is a fatal inconsistency, not
// something to paper over with a hole in the field list.
func (t *Table) PrimaryKey() ([]string, error) {
	arity := 0
	for _, c := range t.Columns {
		if c.PrimaryKeySeq > 0 {
			arity++
		}
	}
	if arity == 0 {
		return nil, nil
	}
	fields := make([]string, arity)
	for _, c := range t.Columns {
		seq := c.PrimaryKeySeq
		if seq == 0 {
			continue
		}
		if seq < 1 || seq > arity {
			return nil, fmt.Errorf("table %s: primary key field %s at position %d of %d: %w",
				t.Name, c.Name, seq, arity, backend.ErrKeySequence)
		}
		if fields[seq-1] != "" {
			return nil, fmt.Errorf("table %s: primary key fields %s and %s both at position %d: %w",
				t.Name, fields[seq-1], c.Name, seq, backend.ErrKeySequence)
		}
		fields[seq-1] = c.Name
	}
	return fields, nil
}

// FieldNames returns the column names in declaration order.
func (t *Table) FieldNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
