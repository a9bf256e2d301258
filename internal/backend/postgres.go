package backend

import (
	"fmt"
	"net/url"
	"strconv"

	_ "github.com/lib/pq"
)

var postgresDriver = Driver{
	Params: map[string]ParamType{
		"database": TypeString,
		"host":     TypeString,
		"password": TypeString,
		"port":     TypeInt,
		"sslmode":  TypeString,
		"user":     TypeString,
	},
	Open: openPostgres,
}

type postgresBackend struct {
	sqlBackend
}

func openPostgres(params map[string]any) (Backend, error) {
	u := url.URL{
		Scheme: "postgres",
		Host: fmt.Sprintf("%s:%d",
			strParam(params, "host", "localhost"), intParam(params, "port", 5432)),
		User: url.UserPassword(
			strParam(params, "user", ""), strParam(params, "password", "")),
		Path: "/" + strParam(params, "database", ""),
	}
	q := url.Values{}
	q.Set("sslmode", strParam(params, "sslmode", "disable"))
	u.RawQuery = q.Encode()

	db, err := open("postgres", u.String(), "postgres")
	if err != nil {
		return nil, err
	}
	return &postgresBackend{sqlBackend{db: db}}, nil
}

func (b *postgresBackend) Escape(v any) string {
	switch s := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return `'\x` + hexUpper(s) + "'"
	case bool:
		if s {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	}
	return quoteSingle(fmt.Sprint(v))
}

func (b *postgresBackend) Tables() ([]string, error) {
	rows, err := b.Query(`select table_name from information_schema.tables
		where table_schema = 'public' and table_type = 'BASE TABLE'`)
	if err != nil {
		return nil, err
	}
	return collectStrings(rows)
}

func (b *postgresBackend) primaryKeySeq(table string) (map[string]int, error) {
	rows, err := b.Query(`select kcu.column_name, kcu.ordinal_position
		from information_schema.table_constraints tc
		join information_schema.key_column_usage kcu
		  on kcu.constraint_name = tc.constraint_name
		where tc.constraint_type = 'PRIMARY KEY'
		  and tc.table_schema = 'public' and tc.table_name = $1`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seq := make(map[string]int)
	for rows.Next() {
		row := rows.Row()
		n, err := asInt(row[1])
		if err != nil {
			return nil, err
		}
		seq[asString(row[0])] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seq, nil
}

func (b *postgresBackend) Columns(table string) ([]Column, error) {
	pkSeq, err := b.primaryKeySeq(table)
	if err != nil {
		return nil, err
	}

	rows, err := b.Query(`select column_name, data_type, is_nullable, column_default
		from information_schema.columns
		where table_schema = 'public' and table_name = $1
		order by ordinal_position`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		row := rows.Row()
		name := asString(row[0])
		cols = append(cols, Column{
			Name:          name,
			Type:          asString(row[1]),
			NotNull:       asString(row[2]) == "NO",
			Default:       row[3],
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

func (b *postgresBackend) Keys(table string) ([]Key, error) {
	rows, err := b.Query(`select i.relname, ix.indisunique, a.attname, k.ord
		from pg_class t
		join pg_namespace n on n.oid = t.relnamespace
		join pg_index ix on ix.indrelid = t.oid
		join pg_class i on i.oid = ix.indexrelid
		cross join lateral unnest(ix.indkey) with ordinality as k(attnum, ord)
		join pg_attribute a on a.attrelid = t.oid and a.attnum = k.attnum
		where n.nspname = 'public' and t.relname = $1 and not ix.indisprimary
		order by i.relname, k.ord`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var krs []keyRow
	for rows.Next() {
		row := rows.Row()
		seq, err := asInt(row[3])
		if err != nil {
			return nil, err
		}
		krs = append(krs, keyRow{
			Key:    asString(row[0]),
			Unique: asBool(row[1]),
			Field:  asString(row[2]),
			Seq:    seq,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groupKeyRows(krs)
}

func (b *postgresBackend) InsertVerb(ignore bool) string { return "insert" }

func (b *postgresBackend) InsertSuffix(ignore bool) string {
	if ignore {
		return " on conflict do nothing"
	}
	return ""
}
