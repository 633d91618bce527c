package eval

import (
	"fmt"
	"strings"

	"github.com/sqlstage/sqlstage/internal/types"
)

// valuesEqual reports cell equality with numeric coercion, so int64(10) from
// a JSON fixture equals int(10) from a literal one. NULL handling is the
// caller's job: join and subquery code must never feed NULLs here expecting
// SQL semantics, because Go nil == nil would say true where SQL says unknown.
func valuesEqual(a, b any) bool {
	if an, ok := types.Numeric(a); ok {
		if bn, ok := types.Numeric(b); ok {
			return an == bn
		}
		return false
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return ab == bb
		}
		return false
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// compareValues orders two non-NULL cell values: numbers by value, booleans
// false before true, everything else by string form. Mixed kinds that do not
// coerce fall back to comparing their string forms so sorting stays total.
func compareValues(a, b any) int {
	if an, ok := types.Numeric(a); ok {
		if bn, ok := types.Numeric(b); ok {
			return compareNumbers(an, bn)
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return compareBools(ab, bb)
		}
	}
	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

func compareNumbers(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBools(a, b bool) int {
	switch {
	case !a && b:
		return -1
	case a && !b:
		return 1
	default:
		return 0
	}
}

// keysMatch is the equi-join test: both key values present and equal. A NULL
// on either side never matches, not even another NULL.
func keysMatch(left, right any) bool {
	if types.IsNull(left) || types.IsNull(right) {
		return false
	}
	return valuesEqual(left, right)
}

// strictlyLess orders two non-NULL values for the self-join tie break. NULL
// on either side disqualifies the pair.
func strictlyLess(a, b any) bool {
	if types.IsNull(a) || types.IsNull(b) {
		return false
	}
	return compareValues(a, b) < 0
}
