package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"db-bridge/internal/backend"
)

// typeLength extracts the declared length from a dialect-native type
// string like "varchar(40)" or "decimal(5,2)". 0 when none is declared.
func typeLength(declared string) int {
	open := strings.IndexByte(declared, '(')
	if open < 0 {
		return 0
	}
	rest := declared[open+1:]
	end := strings.IndexAny(rest, ",)")
	if end < 0 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest[:end]))
	if err != nil {
		return 0
	}
	return n
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return s
}

// SeedValue generates a plausible value for a column from its declared
// type. Column names are only consulted for the usual contact-info
// suspects; everything else is type-driven.
func SeedValue(col backend.Column) any {
	dataType := strings.ToLower(col.Type)
	colName := strings.ToLower(col.Name)

	switch {
	case strings.Contains(dataType, "char") || strings.Contains(dataType, "text") ||
		strings.Contains(dataType, "clob") || strings.Contains(dataType, "string"):
		limit := typeLength(dataType)
		switch {
		case strings.Contains(colName, "email"):
			return truncate(gofakeit.Email(), limit)
		case strings.Contains(colName, "phone"):
			return truncate(gofakeit.Phone(), limit)
		case strings.Contains(colName, "name"):
			return truncate(gofakeit.Name(), limit)
		case strings.Contains(colName, "address"):
			return truncate(gofakeit.Street(), limit)
		case strings.Contains(colName, "city"):
			return truncate(gofakeit.City(), limit)
		case strings.Contains(colName, "country"):
			return truncate(gofakeit.Country(), limit)
		}
		if limit > 0 && limit < 20 {
			return truncate(gofakeit.Word(), limit)
		}
		return truncate(gofakeit.Sentence(5), limit)

	case dataType == "date":
		return seedTime().Format("2006-01-02")
	case dataType == "time":
		return seedTime().Format("15:04:05")
	case strings.Contains(dataType, "date") || strings.Contains(dataType, "time"):
		return seedTime().Format("2006-01-02 15:04:05")

	case strings.Contains(dataType, "bool"):
		return gofakeit.Bool()

	case strings.Contains(dataType, "tinyint"):
		return gofakeit.Number(0, 127)
	case strings.Contains(dataType, "smallint"):
		return gofakeit.Number(0, 32767)
	case strings.Contains(dataType, "int") || strings.Contains(dataType, "number") ||
		strings.Contains(dataType, "serial"):
		return gofakeit.Number(1, 1_000_000)

	case strings.Contains(dataType, "float") || strings.Contains(dataType, "double") ||
		strings.Contains(dataType, "real") || strings.Contains(dataType, "decimal") ||
		strings.Contains(dataType, "numeric"):
		return gofakeit.Float64Range(0, 10_000)

	case strings.Contains(dataType, "blob") || strings.Contains(dataType, "binary") ||
		strings.Contains(dataType, "bytea") || strings.Contains(dataType, "raw"):
		b := make([]byte, 8)
		for i := range b {
			b[i] = byte(gofakeit.Number(0, 255))
		}
		return b
	}
	return truncate(gofakeit.Word(), typeLength(dataType))
}

func seedTime() time.Time {
	return gofakeit.DateRange(time.Now().AddDate(-1, 0, 0), time.Now())
}

// SeedRow generates one record in field order for the given columns.
func SeedRow(cols []backend.Column) []any {
	values := make([]any, len(cols))
	for i, c := range cols {
		values[i] = SeedValue(c)
	}
	return values
}
