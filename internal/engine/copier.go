package engine

import (
	"fmt"
	"strings"

	"db-bridge/internal/backend"
	"db-bridge/internal/schema"
)

// CopyResult reports the outcome of copying one table. Rows counts rows
// committed to the destination, excluding any batch left unflushed by a
// failure.
type CopyResult struct {
	TableName string
	Rows      int
	Status    string
	ErrorMsg  string
}

// Copy streams every row of the named tables from src into dst through a
// bulk inserter per table. Tables are processed sequentially with one
// cursor active at a time. Batches already flushed when a later batch
// fails stay committed; there is no cross-batch rollback.
func Copy(src, dst backend.Backend, tables []string, ignoreDuplicates bool, onRow func()) ([]CopyResult, error) {
	var results []CopyResult
	for _, table := range tables {
		rows, err := copyTable(src, dst, table, ignoreDuplicates, onRow)
		res := CopyResult{TableName: table, Rows: rows, Status: "OK"}
		if err != nil {
			res.Status = "FAILED"
			res.ErrorMsg = err.Error()
		}
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func copyTable(src, dst backend.Backend, table string, ignoreDuplicates bool, onRow func()) (int, error) {
	cols, err := src.Columns(table)
	if err != nil {
		return 0, fmt.Errorf("failed to describe %s: %w", table, err)
	}
	if len(cols) == 0 {
		return 0, fmt.Errorf("source table %s has no columns", table)
	}
	fields := (&schema.Table{Name: table, Columns: cols}).FieldNames()

	rows, err := src.Query("select " + strings.Join(fields, ", ") + " from " + table)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", table, err)
	}
	defer rows.Close()

	ins := NewInserter(dst, table, fields, ignoreDuplicates)
	copied := 0
	for rows.Next() {
		if err := ins.Add(rows.Row()...); err != nil {
			return copied - ins.Pending(), err
		}
		copied++
		if onRow != nil {
			onRow()
		}
	}
	if err := rows.Err(); err != nil {
		return copied - ins.Pending(), fmt.Errorf("error reading %s: %w", table, err)
	}
	if err := ins.Flush(); err != nil {
		return copied - ins.Pending(), err
	}
	return copied, nil
}
