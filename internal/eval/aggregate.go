package eval

import (
	"github.com/sqlstage/sqlstage/internal/types"
)

// aggregateRows computes a SQL-style aggregate over one column of the given
// rows. NULL cells are skipped, sum and avg additionally skip non-numeric
// cells, and aggregating nothing yields NULL (nil), never zero.
//
// min and max keep the original cell value of the winning row, so an int64
// column yields an int64 extremum. sum and avg always yield float64.
func aggregateRows(kind AggregateKind, rows []types.Row, column string) any {
	switch kind {
	case AggregateSum, AggregateAvg:
		sum := 0.0
		count := 0
		for _, row := range rows {
			if n, ok := types.Numeric(row[column]); ok {
				sum += n
				count++
			}
		}
		if count == 0 {
			return nil
		}
		if kind == AggregateAvg {
			return sum / float64(count)
		}
		return sum
	case AggregateMin, AggregateMax:
		row := extremumRow(kind, rows, column)
		if row == nil {
			return nil
		}
		return row[column]
	default:
		return nil
	}
}

// extremumRow returns the first row carrying the minimal or maximal non-NULL
// value of the column, or nil when every cell is NULL. Ties keep the earliest
// row, which keeps walkthrough output stable.
func extremumRow(kind AggregateKind, rows []types.Row, column string) types.Row {
	var best types.Row
	for _, row := range rows {
		v := row[column]
		if types.IsNull(v) {
			continue
		}
		if best == nil {
			best = row
			continue
		}
		cmp := compareValues(v, best[column])
		if kind == AggregateMax && cmp > 0 || kind == AggregateMin && cmp < 0 {
			best = row
		}
	}
	return best
}

func validAggregate(kind AggregateKind) bool {
	switch kind {
	case AggregateAvg, AggregateMax, AggregateMin, AggregateSum:
		return true
	default:
		return false
	}
}
