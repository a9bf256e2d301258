package backend

import (
	"fmt"
	"net/url"
	"strconv"

	_ "github.com/sijms/go-ora/v2"
)

var oracleDriver = Driver{
	Params: map[string]ParamType{
		"host":     TypeString,
		"password": TypeString,
		"port":     TypeInt,
		"service":  TypeString,
		"user":     TypeString,
	},
	Open: openOracle,
}

type oracleBackend struct {
	sqlBackend
}

func openOracle(params map[string]any) (Backend, error) {
	u := url.URL{
		Scheme: "oracle",
		Host: fmt.Sprintf("%s:%d",
			strParam(params, "host", "localhost"), intParam(params, "port", 1521)),
		User: url.UserPassword(
			strParam(params, "user", ""), strParam(params, "password", "")),
		Path: "/" + strParam(params, "service", ""),
	}

	db, err := open("oracle", u.String(), "oracle")
	if err != nil {
		return nil, err
	}
	return &oracleBackend{sqlBackend{db: db}}, nil
}

func (b *oracleBackend) Escape(v any) string {
	switch s := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return "hextoraw('" + hexUpper(s) + "')"
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

// Tables lists the tables owned by the connected user.
func (b *oracleBackend) Tables() ([]string, error) {
	rows, err := b.Query("select TABLE_NAME from USER_TABLES")
	if err != nil {
		return nil, err
	}
	return collectStrings(rows)
}

func (b *oracleBackend) primaryKeySeq(table string) (map[string]int, error) {
	rows, err := b.Query(`select cc.COLUMN_NAME, cc.POSITION
		from USER_CONSTRAINTS c
		join USER_CONS_COLUMNS cc on cc.CONSTRAINT_NAME = c.CONSTRAINT_NAME
		where c.CONSTRAINT_TYPE = 'P' and c.TABLE_NAME = :1`, table)
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

func (b *oracleBackend) Columns(table string) ([]Column, error) {
	pkSeq, err := b.primaryKeySeq(table)
	if err != nil {
		return nil, err
	}

	rows, err := b.Query(`select COLUMN_NAME, DATA_TYPE, NULLABLE, DATA_DEFAULT
		from USER_TAB_COLUMNS where TABLE_NAME = :1 order by COLUMN_ID`, table)
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
			NotNull:       asString(row[2]) == "N",
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

func (b *oracleBackend) Keys(table string) ([]Key, error) {
	rows, err := b.Query(`select i.INDEX_NAME, i.UNIQUENESS, c.COLUMN_NAME, c.COLUMN_POSITION
		from USER_INDEXES i
		join USER_IND_COLUMNS c on c.INDEX_NAME = i.INDEX_NAME
		where i.TABLE_NAME = :1 and not exists (
			select 1 from USER_CONSTRAINTS uc
			where uc.CONSTRAINT_TYPE = 'P' and uc.INDEX_NAME = i.INDEX_NAME)
		order by i.INDEX_NAME, c.COLUMN_POSITION`, table)
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
			Unique: asString(row[1]) == "UNIQUE",
			Field:  asString(row[2]),
			Seq:    seq,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groupKeyRows(krs)
}

func (b *oracleBackend) InsertVerb(ignore bool) string { return "insert" }

// Oracle's duplicate-skip forms (MERGE, the ignore_row_on_dupkey_index
// hint) need the target index name, which the inserter does not know.
func (b *oracleBackend) InsertSuffix(ignore bool) string { return "" }
