package eval

import (
	"github.com/sqlstage/sqlstage/internal/types"
)

// Comparison predicate constructors for the common subquery filters. They
// compare the outer row's column against the subquery result and follow SQL
// three-valued logic: a NULL on either side fails the comparison.

// GreaterThan keeps outer rows whose column exceeds the subquery result.
func GreaterThan(column string) FilterPredicate {
	return comparePredicate(column, func(cmp int) bool { return cmp > 0 })
}

// GreaterOrEqual keeps outer rows whose column is at least the subquery result.
func GreaterOrEqual(column string) FilterPredicate {
	return comparePredicate(column, func(cmp int) bool { return cmp >= 0 })
}

// LessThan keeps outer rows whose column is below the subquery result.
func LessThan(column string) FilterPredicate {
	return comparePredicate(column, func(cmp int) bool { return cmp < 0 })
}

// LessOrEqual keeps outer rows whose column is at most the subquery result.
func LessOrEqual(column string) FilterPredicate {
	return comparePredicate(column, func(cmp int) bool { return cmp <= 0 })
}

// EqualTo keeps outer rows whose column equals the subquery result.
func EqualTo(column string) FilterPredicate {
	return comparePredicate(column, func(cmp int) bool { return cmp == 0 })
}

func comparePredicate(column string, keep func(cmp int) bool) FilterPredicate {
	return func(outer types.Row, result any) bool {
		v := outer[column]
		if types.IsNull(v) || types.IsNull(result) {
			return false
		}
		return keep(compareValues(v, result))
	}
}
