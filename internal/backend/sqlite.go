package backend

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// "create" is declared here but rejected by ParseSpec: bulk-load targets
// must pre-exist, so the flag is only reachable through direct Open calls.
var sqliteDriver = Driver{
	Params: map[string]ParamType{
		"create":   TypeBool,
		"filename": TypeString,
		"write":    TypeBool,
	},
	Open: openSQLite,
}

type sqliteBackend struct {
	sqlBackend
}

func openSQLite(params map[string]any) (Backend, error) {
	filename := strParam(params, "filename", "")
	if filename == "" {
		return nil, usagef("sqlite connection needs a filename parameter")
	}
	mode := "rw"
	switch {
	case !boolParam(params, "write", true):
		mode = "ro"
	case boolParam(params, "create", false):
		mode = "rwc"
	}

	db, err := open("sqlite", "file:"+filename+"?mode="+mode, "sqlite")
	if err != nil {
		return nil, err
	}
	return &sqliteBackend{sqlBackend{db: db}}, nil
}

// Escape renders v in SQLite's own literal grammar: NULL, bare numerics,
// single-quoted strings with embedded quotes doubled, and X'..' blobs.
func (b *sqliteBackend) Escape(v any) string {
	switch s := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return "X'" + hexUpper(s) + "'"
	case bool:
		if s {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	}
	return quoteSingle(fmt.Sprint(v))
}

func (b *sqliteBackend) Tables() ([]string, error) {
	rows, err := b.Query("select name from sqlite_master where type = 'table'")
	if err != nil {
		return nil, err
	}
	return collectStrings(rows)
}

func (b *sqliteBackend) Columns(table string) ([]Column, error) {
	rows, err := b.Query("pragma table_info(" + table + ")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		row := rows.Row() // cid, name, type, notnull, dflt_value, pk
		notNull, err := asInt(row[3])
		if err != nil {
			return nil, err
		}
		pk, err := asInt(row[5])
		if err != nil {
			return nil, err
		}
		cols = append(cols, Column{
			Name:          asString(row[1]),
			Type:          asString(row[2]),
			NotNull:       notNull != 0,
			Default:       row[4],
			PrimaryKeySeq: pk,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := checkPrimarySeq(cols); err != nil {
		return nil, err
	}
	return cols, nil
}

// indexDDL matches the stored definition of a plain index. A trailing
// filter clause is ignored. Expression indexes, collations and qualified
// identifiers do not match and fail with ErrIndexDDL; the pattern is not
// extended without verification against real schemas.
var indexDDL = regexp.MustCompile(`(?i)^create( unique)? index (\w+) on (\w+)\s*\(([^)]+)\)`)

// parseIndexDDL recovers a key descriptor from a CREATE INDEX statement.
func parseIndexDDL(ddl string) (Key, error) {
	m := indexDDL.FindStringSubmatch(ddl)
	if m == nil {
		return Key{}, fmt.Errorf("%q: %w", ddl, ErrIndexDDL)
	}
	fields := strings.Split(m[4], ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return Key{Name: m[2], Unique: m[1] != "", Fields: fields}, nil
}

// Keys reverse-parses the CREATE INDEX text stored in sqlite_master.
// Internal auto-indexes carry no DDL text; the constraints they back are
// reported through Columns, so they are excluded here.
func (b *sqliteBackend) Keys(table string) ([]Key, error) {
	rows, err := b.Query(
		"select sql from sqlite_master where type = 'index' and tbl_name = ? and sql is not null",
		table)
	if err != nil {
		return nil, err
	}
	ddls, err := collectStrings(rows)
	if err != nil {
		return nil, err
	}

	var keys []Key
	for _, ddl := range ddls {
		key, err := parseIndexDDL(ddl)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (b *sqliteBackend) InsertVerb(ignore bool) string {
	if ignore {
		return "insert or ignore"
	}
	return "insert"
}

func (b *sqliteBackend) InsertSuffix(ignore bool) string { return "" }
