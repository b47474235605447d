// Package sheets defines the row store port: a remote tabular dataset that is
// always read and written as a whole.
package sheets

import (
	"context"
	"strings"
)

// Store-native column names.
const (
	ColID         = "id"
	ColBatchName  = "batch_name"
	ColAmount     = "amount"
	ColCategory   = "category"
	ColDate       = "date"
	ColClassGrade = "class_grade"
)

// DefaultColumns is the header written to an empty store.
var DefaultColumns = []string{ColID, ColBatchName, ColAmount, ColCategory, ColDate, ColClassGrade}

type (
	// Record is one raw row keyed by store-native column name.
	Record map[string]string

	// Table is an ordered snapshot of the whole dataset.
	//
	// Version identifies the snapshot a Load returned. Passing it back to Replace
	// makes the write fail with core.ErrConcurrentModification if the store moved on;
	// an empty Version skips the check.
	Table struct {
		Columns []string
		Rows    []Record
		Version string
	}

	// RowStore reads and overwrites the entire dataset. There are no partial updates.
	RowStore interface {
		Load(ctx context.Context) (Table, error)
		Replace(ctx context.Context, t Table) error
	}
)

// IsEmpty reports whether every cell of the record is blank.
func (r Record) IsEmpty() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Clone returns a copy that can be mutated independently.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Clone deep-copies the table.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Record, len(t.Rows)),
		Version: t.Version,
	}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// HeaderOrDefault returns t.Columns, extended with any default column the table lacks.
func (t Table) HeaderOrDefault() []string {
	cols := append([]string(nil), t.Columns...)
	for _, c := range DefaultColumns {
		if indexOf(cols, c) == -1 {
			cols = append(cols, c)
		}
	}
	return cols
}

// Matrix renders the table as a header row followed by one row per record,
// in the column order of HeaderOrDefault.
func (t Table) Matrix() [][]string {
	cols := t.HeaderOrDefault()
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, cols)
	for _, r := range t.Rows {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = r[c]
		}
		out = append(out, row)
	}
	return out
}

// FromMatrix builds a table from a header row plus data rows. Header cells are
// trimmed and lower-cased; fully empty rows are dropped.
func FromMatrix(values [][]string) Table {
	if len(values) == 0 {
		return Table{}
	}
	cols := make([]string, len(values[0]))
	for i, h := range values[0] {
		cols[i] = strings.ToLower(strings.TrimSpace(h))
	}
	t := Table{Columns: cols}
	for _, row := range values[1:] {
		rec := make(Record, len(cols))
		for i, c := range cols {
			if c == "" {
				continue
			}
			if i < len(row) {
				rec[c] = strings.TrimSpace(row[i])
			} else {
				rec[c] = ""
			}
		}
		if rec.IsEmpty() {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t
}

// HasColumn reports whether the header contains name.
func (t Table) HasColumn(name string) bool {
	return indexOf(t.Columns, name) != -1
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}
