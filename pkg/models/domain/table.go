package domain

import (
	"strconv"
	"strings"
)

// ColumnKind is the semantic type of a column, detected once at load time.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNumber
)

func (k ColumnKind) String() string {
	if k == KindNumber {
		return "number"
	}
	return "text"
}

// Value is a single cell. Num is valid only when IsNum is set.
type Value struct {
	Raw    string
	Num    float64
	IsNum  bool
	IsNull bool
}

func TextValue(s string) Value {
	return parseValue(s)
}

func NumberValue(f float64) Value {
	return Value{Raw: strconv.FormatFloat(f, 'f', -1, 64), Num: f, IsNum: true}
}

func NullValue() Value {
	return Value{IsNull: true}
}

func parseValue(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Value{IsNull: true}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Value{Raw: s, Num: f, IsNum: true}
	}
	return Value{Raw: s}
}

// Row is one record; cells are aligned with Table.Columns.
type Row []Value

// Table is an ordered, column-named collection of rows. Column kinds are
// computed when the table is built, so aggregation and chart code never
// re-inspect cell types.
type Table struct {
	Columns []string
	Kinds   []ColumnKind
	Rows    []Row
}

// NewTable builds a table from raw string cells and detects column kinds.
// Short rows are padded with nulls, long rows truncated to the header width.
func NewTable(columns []string, cells [][]string) *Table {
	t := &Table{Columns: columns}
	for _, raw := range cells {
		row := make(Row, len(columns))
		for i := range columns {
			if i < len(raw) {
				row[i] = parseValue(raw[i])
			} else {
				row[i] = NullValue()
			}
		}
		t.Rows = append(t.Rows, row)
	}
	t.detectKinds()
	return t
}

// FromRows builds a table from already-typed rows, re-running kind detection.
func FromRows(columns []string, rows []Row) *Table {
	t := &Table{Columns: columns, Rows: rows}
	t.detectKinds()
	return t
}

// detectKinds marks a column numeric when every non-null cell parses as a
// number and at least one non-null cell exists.
func (t *Table) detectKinds() {
	t.Kinds = make([]ColumnKind, len(t.Columns))
	for c := range t.Columns {
		seen := false
		numeric := true
		for _, row := range t.Rows {
			v := row[c]
			if v.IsNull {
				continue
			}
			seen = true
			if !v.IsNum {
				numeric = false
				break
			}
		}
		if seen && numeric {
			t.Kinds[c] = KindNumber
		}
	}
}

func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// Column returns the index of the named column.
func (t *Table) Column(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// CategoricalColumns lists text columns, in table order.
func (t *Table) CategoricalColumns() []string {
	var out []string
	for i, c := range t.Columns {
		if t.Kinds[i] == KindText {
			out = append(out, c)
		}
	}
	return out
}

// NumericColumns lists number columns, in table order.
func (t *Table) NumericColumns() []string {
	var out []string
	for i, c := range t.Columns {
		if t.Kinds[i] == KindNumber {
			out = append(out, c)
		}
	}
	return out
}

// Head returns a view over the first n rows. The backing rows are shared;
// callers treat the result as read-only.
func (t *Table) Head(n int) *Table {
	if n >= len(t.Rows) {
		return t
	}
	return &Table{Columns: t.Columns, Kinds: t.Kinds, Rows: t.Rows[:n]}
}

// Display renders a cell for UI or spreadsheet output.
func (v Value) Display() string {
	if v.IsNull {
		return ""
	}
	if v.IsNum {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Raw
}
