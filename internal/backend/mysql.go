package backend

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var mysqlDriver = Driver{
	Params: map[string]ParamType{
		"database": TypeString,
		"host":     TypeString,
		"password": TypeString,
		"port":     TypeInt,
		"user":     TypeString,
	},
	Open: openMySQL,
}

type mysqlBackend struct {
	sqlBackend
}

func openMySQL(params map[string]any) (Backend, error) {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d",
		strParam(params, "host", "localhost"), intParam(params, "port", 3306))
	cfg.User = strParam(params, "user", "")
	cfg.Passwd = strParam(params, "password", "")
	cfg.DBName = strParam(params, "database", "")

	db, err := open("mysql", cfg.FormatDSN(), "mysql")
	if err != nil {
		return nil, err
	}
	return &mysqlBackend{sqlBackend{db: db}}, nil
}

// Escape renders v as a MySQL literal: null, an X'..' blob, or a
// double-quoted string with the control and quote characters
// backslash-escaped.
func (b *mysqlBackend) Escape(v any) string {
	switch s := v.(type) {
	case nil:
		return "null"
	case []byte:
		return "X'" + hexUpper(s) + "'"
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for _, ch := range fmt.Sprint(v) {
		switch ch {
		case 0:
			sb.WriteString(`\0`)
		case '\b':
			sb.WriteString(`\b`)
		case '\t':
			sb.WriteString(`\t`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case 0x1A:
			sb.WriteString(`\z`)
		case '\'', '"', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(ch)
		default:
			sb.WriteRune(ch)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// Tables lists the tables of the default database named at connect time.
func (b *mysqlBackend) Tables() ([]string, error) {
	rows, err := b.Query("show tables")
	if err != nil {
		return nil, err
	}
	return collectStrings(rows)
}

// primaryKeySeq maps each primary-key field of a table to its 1-based
// position within the key.
func (b *mysqlBackend) primaryKeySeq(table string) (map[string]int, error) {
	rows, err := b.Query("show keys from " + table + " where Key_name = 'PRIMARY'")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seq := make(map[string]int)
	for rows.Next() {
		row := rows.Row()
		n, err := asInt(row[3]) // Seq_in_index
		if err != nil {
			return nil, err
		}
		seq[asString(row[4])] = n // Column_name
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seq, nil
}

func (b *mysqlBackend) Columns(table string) ([]Column, error) {
	pkSeq, err := b.primaryKeySeq(table)
	if err != nil {
		return nil, err
	}

	rows, err := b.Query("show columns from " + table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		row := rows.Row() // Field, Type, Null, Key, Default, Extra
		name := asString(row[0])
		cols = append(cols, Column{
			Name:          name,
			Type:          asString(row[1]),
			NotNull:       asString(row[2]) == "NO",
			Default:       row[4],
			PrimaryKeySeq: pkSeq[name],
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

// Keys groups the SHOW KEYS rows, which arrive ordered by key name then
// field sequence, into one descriptor per non-primary key.
func (b *mysqlBackend) Keys(table string) ([]Key, error) {
	rows, err := b.Query("show keys from " + table + " where Key_name != 'PRIMARY'")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var krs []keyRow
	for rows.Next() {
		row := rows.Row() // Table, Non_unique, Key_name, Seq_in_index, Column_name, …
		nonUnique, err := asInt(row[1])
		if err != nil {
			return nil, err
		}
		seq, err := asInt(row[3])
		if err != nil {
			return nil, err
		}
		krs = append(krs, keyRow{
			Key:    asString(row[2]),
			Unique: nonUnique == 0,
			Field:  asString(row[4]),
			Seq:    seq,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groupKeyRows(krs)
}

func (b *mysqlBackend) InsertVerb(ignore bool) string {
	if ignore {
		return "insert ignore"
	}
	return "insert"
}

func (b *mysqlBackend) InsertSuffix(ignore bool) string { return "" }
