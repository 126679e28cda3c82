package domain

import (
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// IdentifierColumn is the join key every input table must carry.
const IdentifierColumn = "CompanyID"

// SummaryColumn is the merged-table column whose distinct values are reported.
const SummaryColumn = "CompanyName"

// Column is a named, ordered sequence of nullable cells.
type Column struct {
	Name   string
	Values []sql.NullString
}

// Table is an ordered set of columns whose rows are aligned by position.
type Table struct {
	columns []*Column
	index   map[string]int
	height  int
}

// NewTable creates an empty table with the given column names.
// Names must be unique.
func NewTable(names ...string) (*Table, error) {
	t := &Table{index: make(map[string]int, len(names))}
	for _, name := range names {
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		t.index[name] = len(t.columns)
		t.columns = append(t.columns, &Column{Name: name})
	}
	return t, nil
}

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Height returns the number of rows.
func (t *Table) Height() int { return t.height }

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether a column called name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the column called name, or nil.
func (t *Table) Column(name string) *Column {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	return t.columns[i]
}

// ColumnIndex returns the position of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	i, ok := t.index[name]
	if !ok {
		return -1
	}
	return i
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []sql.NullString {
	row := make([]sql.NullString, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.Values[i]
	}
	return row
}

// AppendRow appends one row. len(cells) must equal Width.
func (t *Table) AppendRow(cells []sql.NullString) error {
	if len(cells) != len(t.columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.columns))
	}
	for j, c := range t.columns {
		c.Values = append(c.Values, cells[j])
	}
	t.height++
	return nil
}

// Value returns a non-null cell.
func Value(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

// Null returns a null cell.
func Null() sql.NullString { return sql.NullString{} }

// KeyKind classifies the values of a join key column.
type KeyKind int

const (
	// KindEmpty means the column has no non-null values.
	KindEmpty KeyKind = iota
	// KindNumeric means every non-null value parses as a number.
	KindNumeric
	// KindText means at least one non-null value is not numeric.
	KindText
)

func (k KeyKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumeric:
		return "numeric"
	default:
		return "text"
	}
}

// CompatibleWith reports whether two key kinds can be joined.
func (k KeyKind) CompatibleWith(other KeyKind) bool {
	return k == KindEmpty || other == KindEmpty || k == other
}

// InferKeyKind classifies the values of c.
func InferKeyKind(c *Column) KeyKind {
	kind := KindEmpty
	for _, v := range c.Values {
		if !v.Valid {
			continue
		}
		if _, ok := ParseNumber(v.String); !ok {
			return KindText
		}
		kind = KindNumeric
	}
	return kind
}

// ParseNumber parses s as a finite decimal number, tolerating surrounding
// whitespace. The result is exact: distinct decimal strings that denote
// distinct values never compare equal, whatever their magnitude.
func ParseNumber(s string) (*big.Rat, bool) {
	s = strings.TrimSpace(s)
	// Only decimal notation; hex floats and digit separators stay text.
	if s == "" || strings.ContainsAny(s, "xXpP_/") {
		return nil, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, false
	}
	return r, true
}
