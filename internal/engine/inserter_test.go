package engine

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"db-bridge/internal/backend"
)

// fakeBackend records executed statements and escapes values with bare
// numerics, like the SQLite dialect.
type fakeBackend struct {
	executed []string
	execErr  error
	verb     string
	suffix   string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{verb: "insert"}
}

func (f *fakeBackend) Close() error { return nil }

func (f *fakeBackend) Escape(v any) string {
	switch s := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	default:
		return fmt.Sprint(s)
	}
}

func (f *fakeBackend) Query(q string, args ...any) (backend.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBackend) Exec(stmt string) error {
	if f.execErr != nil {
		return f.execErr
	}
	f.executed = append(f.executed, stmt)
	return nil
}

func (f *fakeBackend) Tables() ([]string, error)                { return nil, nil }
func (f *fakeBackend) Columns(string) ([]backend.Column, error) { return nil, nil }
func (f *fakeBackend) Keys(string) ([]backend.Key, error)       { return nil, nil }

func (f *fakeBackend) InsertSuffix(ignore bool) string {
	if ignore {
		return f.suffix
	}
	return ""
}

func (f *fakeBackend) InsertVerb(ignore bool) string {
	if ignore && f.verb != "" {
		return f.verb + " ignore"
	}
	return "insert"
}

func TestInserterFlushStatement(t *testing.T) {
	f := newFakeBackend()
	ins := NewInserter(f, "T", []string{"a", "b"}, false)

	if err := ins.Add(1, 2); err != nil {
		t.Fatal(err)
	}
	if err := ins.Add(3, 4); err != nil {
		t.Fatal(err)
	}
	if err := ins.Flush(); err != nil {
		t.Fatal(err)
	}

	want := "insert into T (a, b) values (1, 2), (3, 4)"
	if len(f.executed) != 1 || f.executed[0] != want {
		t.Errorf("executed = %v, want [%s]", f.executed, want)
	}
	if ins.Pending() != 0 {
		t.Errorf("buffer not cleared after flush: %d pending", ins.Pending())
	}
}

func TestInserterFlushEmptyIsNoop(t *testing.T) {
	f := newFakeBackend()
	ins := NewInserter(f, "T", []string{"a"}, false)
	if err := ins.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(f.executed) != 0 {
		t.Errorf("empty flush executed %v", f.executed)
	}
}

func TestInserterBatchCeiling(t *testing.T) {
	f := newFakeBackend()
	ins := NewInserter(f, "T", []string{"a"}, false)

	// Exactly InsertLimit records: nothing flushes until asked.
	for i := 0; i < InsertLimit; i++ {
		if err := ins.Add(i); err != nil {
			t.Fatal(err)
		}
	}
	if len(f.executed) != 0 {
		t.Fatalf("flushed prematurely after %d adds", InsertLimit)
	}

	// The next record forces an automatic flush of the full buffer first.
	if err := ins.Add(InsertLimit); err != nil {
		t.Fatal(err)
	}
	if len(f.executed) != 1 {
		t.Fatalf("expected exactly one automatic flush, got %d", len(f.executed))
	}
	if n := strings.Count(f.executed[0], "("); n != InsertLimit+1 { // field list + 500 tuples
		t.Errorf("automatic flush carried %d tuples, want %d", n-1, InsertLimit)
	}
	if ins.Pending() != 1 {
		t.Errorf("pending = %d after auto-flush, want 1", ins.Pending())
	}

	if err := ins.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(f.executed) != 2 {
		t.Errorf("expected second statement for the tail record")
	}
}

func TestInserterAddMap(t *testing.T) {
	f := newFakeBackend()
	ins := NewInserter(f, "people", []string{"name", "age"}, false)

	if err := ins.AddMap(map[string]any{"age": 30, "name": "bob"}); err != nil {
		t.Fatal(err)
	}
	if err := ins.Flush(); err != nil {
		t.Fatal(err)
	}
	want := "insert into people (name, age) values ('bob', 30)"
	if f.executed[0] != want {
		t.Errorf("executed %q, want %q", f.executed[0], want)
	}
}

func TestInserterAddMapMissingField(t *testing.T) {
	ins := NewInserter(newFakeBackend(), "people", []string{"name", "age"}, false)
	if err := ins.AddMap(map[string]any{"name": "bob"}); err == nil {
		t.Error("expected error for missing field")
	}
}

func TestInserterArityMismatch(t *testing.T) {
	ins := NewInserter(newFakeBackend(), "T", []string{"a", "b"}, false)
	if err := ins.Add(1); err == nil {
		t.Error("expected error for short record")
	}
}

func TestInserterIgnoreDuplicates(t *testing.T) {
	f := newFakeBackend()
	ins := NewInserter(f, "T", []string{"a"}, true)
	if err := ins.Add(1); err != nil {
		t.Fatal(err)
	}
	if err := ins.Flush(); err != nil {
		t.Fatal(err)
	}
	want := "insert ignore into T (a) values (1)"
	if f.executed[0] != want {
		t.Errorf("executed %q, want %q", f.executed[0], want)
	}
}

func TestInserterIgnoreSuffixDialect(t *testing.T) {
	f := newFakeBackend()
	f.verb = ""
	f.suffix = " on conflict do nothing"
	ins := NewInserter(f, "T", []string{"a"}, true)
	if err := ins.Add(1); err != nil {
		t.Fatal(err)
	}
	if err := ins.Flush(); err != nil {
		t.Fatal(err)
	}
	want := "insert into T (a) values (1) on conflict do nothing"
	if f.executed[0] != want {
		t.Errorf("executed %q, want %q", f.executed[0], want)
	}
}

func TestInserterFlushFailureKeepsBuffer(t *testing.T) {
	f := newFakeBackend()
	f.execErr = errors.New("UNIQUE constraint failed")
	ins := NewInserter(f, "T", []string{"a"}, false)
	if err := ins.Add(1); err != nil {
		t.Fatal(err)
	}
	if err := ins.Flush(); err == nil {
		t.Fatal("expected flush error")
	}
	if ins.Pending() != 1 {
		t.Errorf("pending = %d, want buffer kept on failure", ins.Pending())
	}
}

func TestInserterEscapesImmediately(t *testing.T) {
	f := newFakeBackend()
	ins := NewInserter(f, "T", []string{"a"}, false)
	s := "o'brien"
	if err := ins.Add(s); err != nil {
		t.Fatal(err)
	}
	if err := ins.Flush(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(f.executed[0], "'o''brien'") {
		t.Errorf("value not escaped: %q", f.executed[0])
	}
}
