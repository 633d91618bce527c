package types

import (
	"fmt"
	"sort"
)

// Row represents a single record keyed by column name. Cell values are the
// scalar kinds the fixtures use: string, int64, float64, bool, or nil for
// SQL NULL.
type Row map[string]any

// Copy returns a shallow copy of the row.
func (r Row) Copy() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Relation represents a fixed, named sample table: an ordered column list
// plus an ordered sequence of rows. Relations are built once as fixtures and
// never mutated afterwards.
type Relation struct {
	Name    string
	Columns []string

	rows []Row
}

// NewRelation builds a relation and validates the fixture against its column
// list. Duplicate columns and rows referencing undeclared columns fail fast;
// declared columns missing from a row are filled with NULL so every row
// shares the same column set.
func NewRelation(name string, columns []string, rows []Row) (*Relation, error) {
	if name == "" {
		return nil, fmt.Errorf("relation name must not be empty")
	}
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if seen[col] {
			return nil, fmt.Errorf("duplicate column name in relation %s: %s", name, col)
		}
		seen[col] = true
	}

	normalized := make([]Row, len(rows))
	for i, row := range rows {
		for col := range row {
			if !seen[col] {
				return nil, &ColumnNotFoundError{Relation: name, Column: col}
			}
		}
		out := make(Row, len(columns))
		for _, col := range columns {
			out[col] = row[col] // absent key yields nil, i.e. NULL
		}
		normalized[i] = out
	}

	return &Relation{Name: name, Columns: columns, rows: normalized}, nil
}

// MustRelation is NewRelation for static fixtures; a bad fixture is a
// programmer error and panics at init time.
func MustRelation(name string, columns []string, rows []Row) *Relation {
	r, err := NewRelation(name, columns, rows)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of rows.
func (r *Relation) Len() int {
	return len(r.rows)
}

// Row returns the row at position i in relation order.
func (r *Relation) Row(i int) Row {
	return r.rows[i]
}

// Rows returns the rows in relation order. The returned slice is fresh but
// the row maps are shared; evaluators treat them as read-only.
func (r *Relation) Rows() []Row {
	out := make([]Row, len(r.rows))
	copy(out, r.rows)
	return out
}

// HasColumn checks whether the relation declares the column.
func (r *Relation) HasColumn(name string) bool {
	for _, col := range r.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// RequireColumn returns a ColumnNotFoundError when the column is not
// declared. Evaluators call this before touching descriptor columns so a
// fixture/descriptor mismatch surfaces immediately.
func (r *Relation) RequireColumn(name string) error {
	if !r.HasColumn(name) {
		return &ColumnNotFoundError{Relation: r.Name, Column: name}
	}
	return nil
}

// IsNull reports whether a cell value is SQL NULL.
func IsNull(v any) bool {
	return v == nil
}

// Numeric coerces a cell value to float64 for comparisons and aggregates.
func Numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// FormatValue renders a cell value the way the result tables display it.
func FormatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

// SortedKeys returns the row's column names in lexical order. Used where no
// relation is available to supply a column order (e.g. debug output).
func SortedKeys(r Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
