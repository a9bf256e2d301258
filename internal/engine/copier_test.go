package engine

import (
	"errors"
	"testing"

	"db-bridge/internal/backend"
)

// fakeSource serves canned columns and rows for one table.
type fakeSource struct {
	*fakeBackend
	cols []backend.Column
	data []backend.Row
}

func (s *fakeSource) Columns(string) ([]backend.Column, error) { return s.cols, nil }

func (s *fakeSource) Query(q string, args ...any) (backend.Rows, error) {
	return &sliceRows{data: s.data}, nil
}

type sliceRows struct {
	data []backend.Row
	i    int
}

func (r *sliceRows) Next() bool {
	if r.i < len(r.data) {
		r.i++
		return true
	}
	return false
}

func (r *sliceRows) Row() backend.Row { return r.data[r.i-1] }
func (r *sliceRows) Err() error       { return nil }
func (r *sliceRows) Close() error     { return nil }

// flakyDest accepts a fixed number of statements and then fails.
type flakyDest struct {
	*fakeBackend
	allow int
}

func (d *flakyDest) Exec(stmt string) error {
	if len(d.executed) >= d.allow {
		return errors.New("disk full")
	}
	return d.fakeBackend.Exec(stmt)
}

func TestCopyStreamsRows(t *testing.T) {
	src := &fakeSource{
		fakeBackend: newFakeBackend(),
		cols: []backend.Column{
			{Name: "a", Type: "integer"},
			{Name: "b", Type: "text"},
		},
		data: []backend.Row{{1, "x"}, {2, "y"}, {3, "z"}},
	}
	dst := newFakeBackend()

	seen := 0
	results, err := Copy(src, dst, []string{"T"}, false, func() { seen++ })
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Status != "OK" || results[0].Rows != 3 {
		t.Fatalf("results = %+v, want one OK result with 3 rows", results)
	}
	if seen != 3 {
		t.Errorf("onRow fired %d times, want 3", seen)
	}
	want := "insert into T (a, b) values (1, 'x'), (2, 'y'), (3, 'z')"
	if len(dst.executed) != 1 || dst.executed[0] != want {
		t.Errorf("executed = %v, want [%s]", dst.executed, want)
	}
}

func TestCopyCountsCommittedRows(t *testing.T) {
	// One full batch plus two tail rows. The destination accepts the
	// automatic batch flush and rejects the tail flush, so only the
	// first batch is committed.
	data := make([]backend.Row, InsertLimit+2)
	for i := range data {
		data[i] = backend.Row{i}
	}
	src := &fakeSource{
		fakeBackend: newFakeBackend(),
		cols:        []backend.Column{{Name: "a", Type: "integer"}},
		data:        data,
	}
	dst := &flakyDest{fakeBackend: newFakeBackend(), allow: 1}

	results, err := Copy(src, dst, []string{"T"}, false, nil)
	if err == nil {
		t.Fatal("expected copy error")
	}
	if len(results) != 1 || results[0].Status != "FAILED" {
		t.Fatalf("results = %+v, want one FAILED result", results)
	}
	if results[0].Rows != InsertLimit {
		t.Errorf("Rows = %d, want %d committed rows", results[0].Rows, InsertLimit)
	}
}

func TestCopyUnknownTable(t *testing.T) {
	src := &fakeSource{fakeBackend: newFakeBackend()}
	results, err := Copy(src, newFakeBackend(), []string{"missing"}, false, nil)
	if err == nil {
		t.Fatal("expected error for table without columns")
	}
	if len(results) != 1 || results[0].Status != "FAILED" {
		t.Errorf("results = %+v, want one FAILED result", results)
	}
}
