package eval

import (
	"fmt"
	"sort"

	"github.com/sqlstage/sqlstage/internal/types"
)

// nullPartitionKey buckets NULL partition values together, mirroring SQL,
// without colliding with a legitimate "NULL" string value.
const nullPartitionKey = "\x00null"

// Window evaluates the descriptor over the relation and returns one output
// row per input row, each a copy of the input augmented with the computed
// column named d.OutputColumn().
//
// Partitions surface in order of first occurrence of their key in the
// relation, rows inside each partition in OrderBy order. The sort is stable,
// ascending places NULL values last and descending places them first.
func Window(rel *types.Relation, d WindowDescriptor) ([]types.Row, error) {
	if err := validateWindow(rel, d); err != nil {
		return nil, err
	}

	out := []types.Row{}
	for _, part := range partition(rel, d) {
		sortPartition(part, d)
		augmented, err := applyWindow(part, d)
		if err != nil {
			return nil, err
		}
		out = append(out, augmented...)
	}
	return out, nil
}

func validateWindow(rel *types.Relation, d WindowDescriptor) error {
	switch d.Kind {
	case WindowRowNumber, WindowRank, WindowDenseRank, WindowLag, WindowLead, WindowSumOver, WindowAvgOver:
	default:
		return &types.UnknownDescriptorKindError{Descriptor: "window", Kind: string(d.Kind)}
	}

	if d.PartitionBy != "" {
		if err := rel.RequireColumn(d.PartitionBy); err != nil {
			return err
		}
	}
	if d.OrderBy != "" {
		if err := rel.RequireColumn(d.OrderBy); err != nil {
			return err
		}
	}

	switch d.Order {
	case "", Asc, Desc:
	default:
		return &types.InvalidDescriptorError{
			Descriptor: "window",
			Reason:     fmt.Sprintf("unknown sort order %q", d.Order),
		}
	}

	needsOrder := d.Kind != WindowSumOver && d.Kind != WindowAvgOver || d.Cumulative
	if needsOrder && d.OrderBy == "" {
		return &types.InvalidDescriptorError{
			Descriptor: "window",
			Reason:     fmt.Sprintf("%s requires an order column", d.Kind),
		}
	}

	switch d.Kind {
	case WindowLag, WindowLead, WindowSumOver, WindowAvgOver:
		if d.ValueColumn == "" {
			return &types.InvalidDescriptorError{
				Descriptor: "window",
				Reason:     fmt.Sprintf("%s requires a value column", d.Kind),
			}
		}
		if err := rel.RequireColumn(d.ValueColumn); err != nil {
			return err
		}
	}

	if d.Offset < 0 {
		return &types.InvalidDescriptorError{
			Descriptor: "window",
			Reason:     fmt.Sprintf("offset must be positive, got %d", d.Offset),
		}
	}
	return nil
}

// partition splits the relation rows by the PartitionBy value, preserving
// first-occurrence order of the keys. An empty PartitionBy yields a single
// partition holding every row.
func partition(rel *types.Relation, d WindowDescriptor) [][]types.Row {
	rows := rel.Rows()
	if d.PartitionBy == "" {
		return [][]types.Row{rows}
	}

	order := []string{}
	groups := map[string][]types.Row{}
	for _, row := range rows {
		key := partitionKey(row[d.PartitionBy])
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}

	parts := make([][]types.Row, 0, len(order))
	for _, key := range order {
		parts = append(parts, groups[key])
	}
	return parts
}

func partitionKey(v any) string {
	if types.IsNull(v) {
		return nullPartitionKey
	}
	return fmt.Sprintf("%v", v)
}

// sortPartition stable-sorts the partition in place by the OrderBy column.
// Ascending puts NULLs last, descending puts them first, so the interesting
// values lead the walkthrough either way.
func sortPartition(part []types.Row, d WindowDescriptor) {
	if d.OrderBy == "" {
		return
	}
	desc := d.Order == Desc
	sort.SliceStable(part, func(i, j int) bool {
		a, b := part[i][d.OrderBy], part[j][d.OrderBy]
		if types.IsNull(a) || types.IsNull(b) {
			if types.IsNull(a) && types.IsNull(b) {
				return false
			}
			if desc {
				return types.IsNull(a)
			}
			return types.IsNull(b)
		}
		if desc {
			return compareValues(a, b) > 0
		}
		return compareValues(a, b) < 0
	})
}

func applyWindow(part []types.Row, d WindowDescriptor) ([]types.Row, error) {
	values := make([]any, len(part))
	switch d.Kind {
	case WindowRowNumber:
		for i := range part {
			values[i] = int64(i + 1)
		}
	case WindowRank:
		computeRank(part, d, values, false)
	case WindowDenseRank:
		computeRank(part, d, values, true)
	case WindowLag:
		computeShift(part, d, values, -windowOffset(d))
	case WindowLead:
		computeShift(part, d, values, windowOffset(d))
	case WindowSumOver:
		computeAggregateOver(part, d, values, false)
	case WindowAvgOver:
		computeAggregateOver(part, d, values, true)
	default:
		return nil, &types.UnknownDescriptorKindError{Descriptor: "window", Kind: string(d.Kind)}
	}

	name := d.OutputColumn()
	out := make([]types.Row, len(part))
	for i, row := range part {
		augmented := row.Copy()
		augmented[name] = values[i]
		out[i] = augmented
	}
	return out, nil
}

func windowOffset(d WindowDescriptor) int {
	if d.Offset == 0 {
		return 1
	}
	return d.Offset
}

// computeRank assigns ranks with peer detection on the OrderBy value. Plain
// rank leaves gaps after ties (1, 1, 3), dense rank does not (1, 1, 2).
func computeRank(part []types.Row, d WindowDescriptor, values []any, dense bool) {
	rank := int64(0)
	denseRank := int64(0)
	for i, row := range part {
		if i == 0 || !orderPeers(part[i-1][d.OrderBy], row[d.OrderBy]) {
			rank = int64(i + 1)
			denseRank++
		}
		if dense {
			values[i] = denseRank
		} else {
			values[i] = rank
		}
	}
}

// orderPeers reports whether two ordering values tie. Unlike the join key
// test, two NULLs are peers here, matching how SQL groups NULLs in ORDER BY.
func orderPeers(a, b any) bool {
	if types.IsNull(a) && types.IsNull(b) {
		return true
	}
	if types.IsNull(a) || types.IsNull(b) {
		return false
	}
	return valuesEqual(a, b)
}

// computeShift fills lag (negative shift) and lead (positive shift) values.
// Positions falling outside the partition yield NULL.
func computeShift(part []types.Row, d WindowDescriptor, values []any, shift int) {
	for i := range part {
		j := i + shift
		if j < 0 || j >= len(part) {
			values[i] = nil
			continue
		}
		values[i] = part[j][d.ValueColumn]
	}
}

// computeAggregateOver fills sum_over and avg_over values. Cumulative mode
// carries a running aggregate in partition order; otherwise the
// whole-partition aggregate is broadcast to every row. NULL and non-numeric
// cells contribute nothing, and a frame with no numeric values aggregates to
// NULL.
func computeAggregateOver(part []types.Row, d WindowDescriptor, values []any, avg bool) {
	if !d.Cumulative {
		var v any
		if avg {
			v = aggregateRows(AggregateAvg, part, d.ValueColumn)
		} else {
			v = aggregateRows(AggregateSum, part, d.ValueColumn)
		}
		for i := range part {
			values[i] = v
		}
		return
	}

	sum := 0.0
	count := 0
	for i, row := range part {
		if n, ok := types.Numeric(row[d.ValueColumn]); ok {
			sum += n
			count++
		}
		if count == 0 {
			values[i] = nil
		} else if avg {
			values[i] = sum / float64(count)
		} else {
			values[i] = sum
		}
	}
}
