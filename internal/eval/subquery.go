package eval

import (
	"fmt"

	"github.com/sqlstage/sqlstage/internal/types"
)

// SubqueryResult carries whatever the subquery shape produced plus the outer
// rows that survived the comparison. Only the fields matching the descriptor
// kind are populated: Scalar for scalar, Set for column, Row for row, Table
// for table, PerOuter for correlated. PerOuter is parallel to the outer
// relation's rows so the walkthrough can show each outer row next to its own
// recomputed aggregate.
type SubqueryResult struct {
	Scalar   any
	Set      []any
	Row      types.Row
	Table    *types.Relation
	PerOuter []any
	Outer    []types.Row
}

// Subquery evaluates the descriptor. The inner relation is what the nested
// SELECT reads; the outer relation is what the surrounding query filters.
// The table kind derives a standalone relation from inner and ignores outer
// entirely, so outer may be nil there.
//
// Filtered outer rows preserve outer relation order. An empty Outer slice is
// a legitimate result, not an error.
func Subquery(outer, inner *types.Relation, d SubqueryDescriptor) (*SubqueryResult, error) {
	if err := validateSubquery(outer, inner, d); err != nil {
		return nil, err
	}

	switch d.Kind {
	case SubqueryScalar:
		return scalarSubquery(outer, inner, d), nil
	case SubqueryColumn:
		return columnSubquery(outer, inner, d), nil
	case SubqueryRow:
		return rowSubquery(outer, inner, d), nil
	case SubqueryTable:
		return tableSubquery(inner, d)
	case SubqueryCorrelated:
		return correlatedSubquery(outer, inner, d), nil
	default:
		return nil, &types.UnknownDescriptorKindError{Descriptor: "subquery", Kind: string(d.Kind)}
	}
}

func validateSubquery(outer, inner *types.Relation, d SubqueryDescriptor) error {
	invalid := func(format string, args ...any) error {
		return &types.InvalidDescriptorError{Descriptor: "subquery", Reason: fmt.Sprintf(format, args...)}
	}

	if inner == nil {
		return invalid("inner relation is required")
	}
	if d.Kind != SubqueryTable && outer == nil {
		return invalid("%s requires an outer relation", d.Kind)
	}
	if d.InnerColumn == "" {
		return invalid("%s requires an inner column", d.Kind)
	}
	if err := inner.RequireColumn(d.InnerColumn); err != nil {
		return err
	}

	switch d.Kind {
	case SubqueryScalar:
		if !validAggregate(d.Aggregate) {
			return invalid("scalar requires an aggregate, got %q", d.Aggregate)
		}
		if d.Filter == nil {
			return invalid("scalar requires a filter predicate")
		}
	case SubqueryColumn:
		if d.Filter == nil && d.OuterColumn == "" {
			return invalid("column requires an outer column or a filter predicate")
		}
	case SubqueryRow:
		if d.Aggregate != AggregateMax && d.Aggregate != AggregateMin {
			return invalid("row requires a max or min aggregate, got %q", d.Aggregate)
		}
	case SubqueryTable:
		if !validAggregate(d.Aggregate) {
			return invalid("table requires an aggregate, got %q", d.Aggregate)
		}
		if d.GroupBy == "" {
			return invalid("table requires a group column")
		}
		return inner.RequireColumn(d.GroupBy)
	case SubqueryCorrelated:
		if !validAggregate(d.Aggregate) {
			return invalid("correlated requires an aggregate, got %q", d.Aggregate)
		}
		if d.CorrelateOn == "" {
			return invalid("correlated requires a correlation column")
		}
		if d.Filter == nil {
			return invalid("correlated requires a filter predicate")
		}
		if err := outer.RequireColumn(d.CorrelateOn); err != nil {
			return err
		}
		return inner.RequireColumn(d.CorrelateOn)
	default:
		return &types.UnknownDescriptorKindError{Descriptor: "subquery", Kind: string(d.Kind)}
	}

	if d.OuterColumn != "" {
		return outer.RequireColumn(d.OuterColumn)
	}
	return nil
}

// innerRows applies the optional inner filter, the "WHERE clause" of the
// nested SELECT.
func innerRows(inner *types.Relation, d SubqueryDescriptor) []types.Row {
	rows := inner.Rows()
	if d.InnerFilter == nil {
		return rows
	}
	kept := []types.Row{}
	for _, row := range rows {
		if d.InnerFilter(row) {
			kept = append(kept, row)
		}
	}
	return kept
}

func scalarSubquery(outer, inner *types.Relation, d SubqueryDescriptor) *SubqueryResult {
	scalar := aggregateRows(d.Aggregate, innerRows(inner, d), d.InnerColumn)

	res := &SubqueryResult{Scalar: scalar, Outer: []types.Row{}}
	for _, row := range outer.Rows() {
		if d.Filter(row, scalar) {
			res.Outer = append(res.Outer, row)
		}
	}
	return res
}

// columnSubquery collects the distinct non-NULL inner values in first-seen
// order, then keeps outer rows whose OuterColumn value is a member of the
// set. NULL members are dropped from the set because a SQL IN list never
// matches through NULL, and a NULL outer value likewise matches nothing.
func columnSubquery(outer, inner *types.Relation, d SubqueryDescriptor) *SubqueryResult {
	set := []any{}
	seen := map[string]bool{}
	for _, row := range innerRows(inner, d) {
		v := row[d.InnerColumn]
		if types.IsNull(v) {
			continue
		}
		key := partitionKey(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		set = append(set, v)
	}

	keep := d.Filter
	if keep == nil {
		keep = func(row types.Row, result any) bool {
			v := row[d.OuterColumn]
			if types.IsNull(v) {
				return false
			}
			for _, member := range result.([]any) {
				if valuesEqual(v, member) {
					return true
				}
			}
			return false
		}
	}

	res := &SubqueryResult{Set: set, Outer: []types.Row{}}
	for _, row := range outer.Rows() {
		if keep(row, set) {
			res.Outer = append(res.Outer, row)
		}
	}
	return res
}

// rowSubquery finds the inner row holding the aggregate extremum, then keeps
// the outer rows selected by the filter, or by equality between OuterColumn
// and the extremum value when no filter is given. When every inner value is
// NULL there is no extremum row and no outer row survives.
func rowSubquery(outer, inner *types.Relation, d SubqueryDescriptor) *SubqueryResult {
	extremum := extremumRow(d.Aggregate, innerRows(inner, d), d.InnerColumn)

	res := &SubqueryResult{Row: extremum, Outer: []types.Row{}}
	if extremum == nil {
		return res
	}

	keep := d.Filter
	if keep == nil && d.OuterColumn != "" {
		keep = func(row types.Row, result any) bool {
			target := result.(types.Row)[d.InnerColumn]
			return keysMatch(row[d.OuterColumn], target)
		}
	}
	if keep == nil {
		return res
	}

	for _, row := range outer.Rows() {
		if keep(row, extremum) {
			res.Outer = append(res.Outer, row)
		}
	}
	return res
}

// tableSubquery derives a grouped aggregate relation from the inner rows:
// one output row per distinct GroupBy value in first-occurrence order, with
// NULL group keys forming their own single group the way SQL GROUP BY treats
// them. No outer filtering happens here; the derived relation is the result.
func tableSubquery(inner *types.Relation, d SubqueryDescriptor) (*SubqueryResult, error) {
	order := []string{}
	keyValues := map[string]any{}
	groups := map[string][]types.Row{}
	for _, row := range innerRows(inner, d) {
		key := partitionKey(row[d.GroupBy])
		if _, seen := groups[key]; !seen {
			order = append(order, key)
			keyValues[key] = row[d.GroupBy]
		}
		groups[key] = append(groups[key], row)
	}

	aggColumn := fmt.Sprintf("%s_%s", d.Aggregate, d.InnerColumn)
	rows := make([]types.Row, 0, len(order))
	for _, key := range order {
		rows = append(rows, types.Row{
			d.GroupBy: keyValues[key],
			aggColumn: aggregateRows(d.Aggregate, groups[key], d.InnerColumn),
		})
	}

	table, err := types.NewRelation(
		fmt.Sprintf("%s_by_%s", aggColumn, d.GroupBy),
		[]string{d.GroupBy, aggColumn},
		rows,
	)
	if err != nil {
		return nil, err
	}
	return &SubqueryResult{Table: table}, nil
}

// correlatedSubquery recomputes the aggregate for every outer row over the
// inner rows sharing its CorrelateOn value. The per-row aggregates land in
// PerOuter parallel to outer relation order; rows whose recomputed aggregate
// passes the filter land in Outer. An outer row correlating with no inner
// rows, including through a NULL correlation value, sees a NULL aggregate.
func correlatedSubquery(outer, inner *types.Relation, d SubqueryDescriptor) *SubqueryResult {
	inRows := innerRows(inner, d)

	res := &SubqueryResult{PerOuter: []any{}, Outer: []types.Row{}}
	for _, outerRow := range outer.Rows() {
		subset := []types.Row{}
		for _, innerRow := range inRows {
			if keysMatch(innerRow[d.CorrelateOn], outerRow[d.CorrelateOn]) {
				subset = append(subset, innerRow)
			}
		}
		agg := aggregateRows(d.Aggregate, subset, d.InnerColumn)
		res.PerOuter = append(res.PerOuter, agg)
		if d.Filter(outerRow, agg) {
			res.Outer = append(res.Outer, outerRow)
		}
	}
	return res
}
