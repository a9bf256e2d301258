package backend

import (
	"fmt"
	"net/url"
	"strconv"

	_ "github.com/microsoft/go-mssqldb"
)

var mssqlDriver = Driver{
	Params: map[string]ParamType{
		"database": TypeString,
		"host":     TypeString,
		"password": TypeString,
		"port":     TypeInt,
		"user":     TypeString,
	},
	Open: openMSSQL,
}

type mssqlBackend struct {
	sqlBackend
}

func openMSSQL(params map[string]any) (Backend, error) {
	u := url.URL{
		Scheme: "sqlserver",
		Host: fmt.Sprintf("%s:%d",
			strParam(params, "host", "localhost"), intParam(params, "port", 1433)),
		User: url.UserPassword(
			strParam(params, "user", ""), strParam(params, "password", "")),
	}
	q := url.Values{}
	q.Set("database", strParam(params, "database", ""))
	u.RawQuery = q.Encode()

	db, err := open("sqlserver", u.String(), "mssql")
	if err != nil {
		return nil, err
	}
	return &mssqlBackend{sqlBackend{db: db}}, nil
}

func (b *mssqlBackend) Escape(v any) string {
	switch s := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return "0x" + hexUpper(s)
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
	return "N" + quoteSingle(fmt.Sprint(v))
}

func (b *mssqlBackend) Tables() ([]string, error) {
	rows, err := b.Query(`select TABLE_NAME from INFORMATION_SCHEMA.TABLES
		where TABLE_TYPE = 'BASE TABLE'`)
	if err != nil {
		return nil, err
	}
	return collectStrings(rows)
}

func (b *mssqlBackend) primaryKeySeq(table string) (map[string]int, error) {
	rows, err := b.Query(`select kcu.COLUMN_NAME, kcu.ORDINAL_POSITION
		from INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
		join INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
		  on kcu.CONSTRAINT_NAME = tc.CONSTRAINT_NAME
		where tc.CONSTRAINT_TYPE = 'PRIMARY KEY' and kcu.TABLE_NAME = @p1`, table)
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

func (b *mssqlBackend) Columns(table string) ([]Column, error) {
	pkSeq, err := b.primaryKeySeq(table)
	if err != nil {
		return nil, err
	}

	rows, err := b.Query(`select COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_DEFAULT
		from INFORMATION_SCHEMA.COLUMNS
		where TABLE_NAME = @p1 order by ORDINAL_POSITION`, table)
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

func (b *mssqlBackend) Keys(table string) ([]Key, error) {
	rows, err := b.Query(`select i.name, i.is_unique, c.name, ic.key_ordinal
		from sys.indexes i
		join sys.index_columns ic
		  on ic.object_id = i.object_id and ic.index_id = i.index_id
		join sys.columns c
		  on c.object_id = i.object_id and c.column_id = ic.column_id
		where i.object_id = object_id(@p1) and i.is_primary_key = 0 and i.type > 0
		order by i.name, ic.key_ordinal`, table)
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

func (b *mssqlBackend) InsertVerb(ignore bool) string { return "insert" }

// SQL Server has no single-clause duplicate-ignore form; with the policy
// enabled duplicates still surface as constraint errors.
func (b *mssqlBackend) InsertSuffix(ignore bool) string { return "" }
