package engine

import (
	"strings"
	"testing"

	"db-bridge/internal/backend"
)

func TestTypeLength(t *testing.T) {
	cases := []struct {
		declared string
		want     int
	}{
		{"varchar(40)", 40},
		{"decimal(5,2)", 5},
		{"text", 0},
		{"char( 8 )", 8},
		{"varchar()", 0},
	}
	for _, c := range cases {
		if got := typeLength(c.declared); got != c.want {
			t.Errorf("typeLength(%q) = %d, want %d", c.declared, got, c.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 3); got != "hel" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("hello", 0); got != "hello" {
		t.Errorf("truncate with no limit = %q", got)
	}
	if got := truncate("hi", 10); got != "hi" {
		t.Errorf("truncate below limit = %q", got)
	}
}

func TestSeedValueTypes(t *testing.T) {
	cases := []struct {
		colType string
		check   func(any) bool
	}{
		{"int", func(v any) bool { _, ok := v.(int); return ok }},
		{"varchar(10)", func(v any) bool {
			s, ok := v.(string)
			return ok && len([]rune(s)) <= 10
		}},
		{"decimal(5,2)", func(v any) bool { _, ok := v.(float64); return ok }},
		{"date", func(v any) bool {
			s, ok := v.(string)
			return ok && len(s) == len("2006-01-02") && strings.Count(s, "-") == 2
		}},
		{"datetime", func(v any) bool {
			s, ok := v.(string)
			return ok && strings.Contains(s, ":")
		}},
		{"blob", func(v any) bool { _, ok := v.([]byte); return ok }},
		{"boolean", func(v any) bool { _, ok := v.(bool); return ok }},
	}
	for _, c := range cases {
		col := backend.Column{Name: "f", Type: c.colType}
		for i := 0; i < 20; i++ {
			v := SeedValue(col)
			if !c.check(v) {
				t.Errorf("SeedValue(%s) = %#v, unexpected shape", c.colType, v)
				break
			}
		}
	}
}

func TestSeedRowOrder(t *testing.T) {
	cols := []backend.Column{
		{Name: "id", Type: "int"},
		{Name: "name", Type: "varchar(20)"},
	}
	row := SeedRow(cols)
	if len(row) != 2 {
		t.Fatalf("row has %d values", len(row))
	}
	if _, ok := row[0].(int); !ok {
		t.Errorf("row[0] = %#v, want int", row[0])
	}
	if _, ok := row[1].(string); !ok {
		t.Errorf("row[1] = %#v, want string", row[1])
	}
}
