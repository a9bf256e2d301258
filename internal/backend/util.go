package backend

import (
	"fmt"
	"strconv"
	"strings"
)

// keyRow is one introspection result row describing a single field of a
// non-primary key. Backends produce these ordered by key name, then by
// field sequence.
type keyRow struct {
	Key    string
	Unique bool
	Field  string
	Seq    int
}

// groupKeyRows folds consecutive key rows into Key descriptors. Rows for
// one key must carry sequence numbers 1,2,3… with no gaps; anything else
// means the catalog is inconsistent and introspection halts with
// ErrKeySequence.
func groupKeyRows(rows []keyRow) ([]Key, error) {
	var keys []Key
	var cur *Key
	lastSeq := 0
	for _, r := range rows {
		if cur == nil || r.Key != cur.Name {
			if cur != nil {
				keys = append(keys, *cur)
			}
			cur = &Key{Name: r.Key, Unique: r.Unique}
			lastSeq = 0
		}
		if r.Seq != lastSeq+1 {
			return nil, fmt.Errorf("key %s field %s at position %d, want %d: %w",
				r.Key, r.Field, r.Seq, lastSeq+1, ErrKeySequence)
		}
		cur.Fields = append(cur.Fields, r.Field)
		lastSeq = r.Seq
	}
	if cur != nil {
		keys = append(keys, *cur)
	}
	return keys, nil
}

// checkPrimarySeq verifies that the PrimaryKeySeq values across a table's
// columns form a permutation of 1..k, k being the key's arity. A gap,
// duplicate or out-of-range position means the catalog is inconsistent
// and introspection halts with ErrKeySequence.
func checkPrimarySeq(cols []Column) error {
	k := 0
	for _, c := range cols {
		if c.PrimaryKeySeq > 0 {
			k++
		}
	}
	seen := make(map[int]string, k)
	for _, c := range cols {
		seq := c.PrimaryKeySeq
		if seq == 0 {
			continue
		}
		if seq < 1 || seq > k {
			return fmt.Errorf("primary key field %s at position %d of %d: %w",
				c.Name, seq, k, ErrKeySequence)
		}
		if dup, ok := seen[seq]; ok {
			return fmt.Errorf("primary key fields %s and %s both at position %d: %w",
				dup, c.Name, seq, ErrKeySequence)
		}
		seen[seq] = c.Name
	}
	return nil
}

// asString renders a generic row value as its string form.
func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// asInt converts a generic row value to int. Drivers disagree on whether
// catalog numbers arrive as int64 or as text.
func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case int:
		return n, nil
	case float64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("bad numeric catalog value %q: %w", n, err)
		}
		return i, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("bad numeric catalog value %v (%T)", v, v)
	}
}

// asBool converts a generic row value to bool, tolerating the numeric and
// textual spellings catalogs use.
func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case string:
		ok, err := parseBool(b)
		return err == nil && ok
	}
	return false
}

// hexUpper renders b as uppercase hex pairs.
func hexUpper(b []byte) string {
	const digits = "0123456789ABCDEF"
	out := make([]byte, 0, len(b)*2)
	for _, c := range b {
		out = append(out, digits[c>>4], digits[c&0x0F])
	}
	return string(out)
}

// quoteSingle wraps s in single quotes, doubling embedded quotes. This is
// the literal form shared by SQLite, PostgreSQL, SQL Server and Oracle.
func quoteSingle(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// collectStrings drains a Rows sequence of single-column string results.
func collectStrings(rows Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		out = append(out, asString(rows.Row()[0]))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
