package schema_test

import (
	"errors"
	"reflect"
	"testing"

	"db-bridge/internal/backend"
	"db-bridge/internal/schema"
)

type stubBackend struct {
	tables  []string
	columns map[string][]backend.Column
	keys    map[string][]backend.Key
}

func (s *stubBackend) Close() error           { return nil }
func (s *stubBackend) Escape(v any) string    { return "" }
func (s *stubBackend) Exec(stmt string) error { return nil }

func (s *stubBackend) Query(q string, args ...any) (backend.Rows, error) {
	return nil, errors.New("not implemented")
}

func (s *stubBackend) Tables() ([]string, error) { return s.tables, nil }

func (s *stubBackend) Columns(table string) ([]backend.Column, error) {
	return s.columns[table], nil
}

func (s *stubBackend) Keys(table string) ([]backend.Key, error) {
	return s.keys[table], nil
}

func (s *stubBackend) InsertVerb(bool) string   { return "insert" }
func (s *stubBackend) InsertSuffix(bool) string { return "" }

func TestDescribe(t *testing.T) {
	stub := &stubBackend{
		tables: []string{"people"},
		columns: map[string][]backend.Column{
			"people": {
				{Name: "id", Type: "integer", NotNull: true, PrimaryKeySeq: 1},
				{Name: "name", Type: "varchar(40)"},
			},
		},
		keys: map[string][]backend.Key{
			"people": {{Name: "idx_name", Fields: []string{"name"}}},
		},
	}

	tables, err := schema.Describe(stub)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if len(tables) != 1 || tables[0].Name != "people" {
		t.Fatalf("tables = %+v", tables)
	}
	if len(tables[0].Columns) != 2 || len(tables[0].Keys) != 1 {
		t.Errorf("people = %+v", tables[0])
	}
}

func TestPrimaryKeyOrder(t *testing.T) {
	// Composite key positions come back as a permutation of 1..k; the
	// reconstructed field list must follow key order, not column order.
	tbl := &schema.Table{
		Name: "orders",
		Columns: []backend.Column{
			{Name: "item", PrimaryKeySeq: 2},
			{Name: "order_id", PrimaryKeySeq: 1},
			{Name: "note"},
		},
	}
	want := []string{"order_id", "item"}
	got, err := tbl.PrimaryKey()
	if err != nil {
		t.Fatalf("PrimaryKey: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PrimaryKey() = %v, want %v", got, want)
	}
}

func TestPrimaryKeyAbsent(t *testing.T) {
	tbl := &schema.Table{Columns: []backend.Column{{Name: "a"}}}
	got, err := tbl.PrimaryKey()
	if err != nil {
		t.Fatalf("PrimaryKey: %v", err)
	}
	if got != nil {
		t.Errorf("PrimaryKey() = %v, want nil", got)
	}
}

func TestPrimaryKeySequenceGap(t *testing.T) {
	// Positions {1,3} are not a permutation of 1..2: the key must be
	// rejected, never reconstructed with a hole at the missing position.
	tbl := &schema.Table{
		Name: "orders",
		Columns: []backend.Column{
			{Name: "order_id", PrimaryKeySeq: 1},
			{Name: "item", PrimaryKeySeq: 3},
		},
	}
	got, err := tbl.PrimaryKey()
	if !errors.Is(err, backend.ErrKeySequence) {
		t.Fatalf("PrimaryKey() = %v, %v; want ErrKeySequence", got, err)
	}
}

func TestPrimaryKeyDuplicatePosition(t *testing.T) {
	tbl := &schema.Table{
		Name: "orders",
		Columns: []backend.Column{
			{Name: "a", PrimaryKeySeq: 1},
			{Name: "b", PrimaryKeySeq: 1},
		},
	}
	if _, err := tbl.PrimaryKey(); !errors.Is(err, backend.ErrKeySequence) {
		t.Fatalf("PrimaryKey() err = %v, want ErrKeySequence", err)
	}
}

func TestFieldNames(t *testing.T) {
	tbl := &schema.Table{Columns: []backend.Column{{Name: "a"}, {Name: "b"}}}
	if got := tbl.FieldNames(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("FieldNames() = %v", got)
	}
}
