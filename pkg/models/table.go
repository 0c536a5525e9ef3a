package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrRaggedRow is returned when a table row does not have one cell per column.
var ErrRaggedRow = errors.New("models: row length does not match column count")

// ColumnType is the value type held by every cell of a column.
type ColumnType string

const (
	ColumnString ColumnType = "string"
	ColumnInt    ColumnType = "int"
	ColumnFloat  ColumnType = "float"
	ColumnTime   ColumnType = "time"
)

// IsNumeric reports whether cells of this type can be plotted on a value axis.
func (t ColumnType) IsNumeric() bool {
	return t == ColumnInt || t == ColumnFloat
}

// Column is a named, typed table column.
type Column struct {
	Name string     `json:"name" yaml:"name"`
	Type ColumnType `json:"type" yaml:"type"`
}

// Table is an ordered set of rows over named, typed columns.
//
// Cells hold string, int64, float64, time.Time or nil (missing value).
type Table struct {
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...Column) Table {
	return Table{Columns: columns}
}

// AddRow appends a row. Cells are not type-checked here; see Validate.
func (t *Table) AddRow(cells ...any) {
	t.Rows = append(t.Rows, cells)
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// ColumnNames returns the column names in display order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column.
func (t Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// HasColumn reports whether the table has a column with the given name.
func (t Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Column returns the named column definition.
func (t Table) Column(name string) (Column, bool) {
	i, ok := t.ColumnIndex(name)
	if !ok {
		return Column{}, false
	}
	return t.Columns[i], true
}

// Values returns the cells of the named column, top to bottom.
func (t Table) Values(name string) ([]any, bool) {
	i, ok := t.ColumnIndex(name)
	if !ok {
		return nil, false
	}
	out := make([]any, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, true
}

// Validate checks that every row has exactly one cell per column and that
// every non-nil cell matches its column type.
func (t Table) Validate() error {
	for r, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrRaggedRow, r, len(row), len(t.Columns))
		}
		for c, cell := range row {
			if cell == nil {
				continue
			}
			if !cellMatches(t.Columns[c].Type, cell) {
				return fmt.Errorf("models: row %d column %q: %T is not a %s value", r, t.Columns[c].Name, cell, t.Columns[c].Type)
			}
		}
	}
	return nil
}

func cellMatches(ct ColumnType, cell any) bool {
	switch ct {
	case ColumnString:
		_, ok := cell.(string)
		return ok
	case ColumnInt:
		_, ok := cell.(int64)
		return ok
	case ColumnFloat:
		switch cell.(type) {
		case float64, int64:
			return true
		}
		return false
	case ColumnTime:
		_, ok := cell.(time.Time)
		return ok
	default:
		return false
	}
}
