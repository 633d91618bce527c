package eval

import (
	"github.com/sqlstage/sqlstage/internal/types"
)

// JoinResultRow is one emitted row of a join evaluation. Left is nil for
// right-only rows of right and full joins; Right is nil for unmatched left
// rows of left and full joins. Matched records whether the row came from a
// key match, which is what the step-through demos highlight.
type JoinResultRow struct {
	Left    types.Row
	Right   types.Row
	Matched bool
}

// Combined flattens the pair into a single row for display. Column names
// colliding across the two relations are qualified with the relation name,
// the usual "employees.id"/"departments.id" rendering. NULL placeholders
// surface as nil cells.
func (r JoinResultRow) Combined(left, right *types.Relation) types.Row {
	leftAlias, rightAlias := joinAliases(left, right)
	return r.CombinedAs(left, right, leftAlias, rightAlias)
}

// CombinedAs is Combined with explicit relation aliases, which self joins
// need because both sides carry the same relation name.
func (r JoinResultRow) CombinedAs(left, right *types.Relation, leftAlias, rightAlias string) types.Row {
	out := types.Row{}
	for _, col := range left.Columns {
		name := col
		if right.HasColumn(col) {
			name = leftAlias + "." + col
		}
		if r.Left != nil {
			out[name] = r.Left[col]
		} else {
			out[name] = nil
		}
	}
	for _, col := range right.Columns {
		name := col
		if left.HasColumn(col) {
			name = rightAlias + "." + col
		}
		if r.Right != nil {
			out[name] = r.Right[col]
		} else {
			out[name] = nil
		}
	}
	return out
}

// CombinedColumns returns the column order matching Combined rows.
func CombinedColumns(left, right *types.Relation) []string {
	leftAlias, rightAlias := joinAliases(left, right)
	cols := make([]string, 0, len(left.Columns)+len(right.Columns))
	for _, col := range left.Columns {
		if right.HasColumn(col) {
			cols = append(cols, leftAlias+"."+col)
		} else {
			cols = append(cols, col)
		}
	}
	for _, col := range right.Columns {
		if left.HasColumn(col) {
			cols = append(cols, rightAlias+"."+col)
		} else {
			cols = append(cols, col)
		}
	}
	return cols
}

// joinAliases qualifies colliding columns with the relation names, except
// when both sides are the same relation, where the a/b suffixes keep the two
// copies apart.
func joinAliases(left, right *types.Relation) (string, string) {
	if left.Name == right.Name {
		return left.Name + "_a", left.Name + "_b"
	}
	return left.Name, right.Name
}

// Join evaluates the descriptor over the two relations with a nested-loop
// strategy. Result ordering is deterministic: left-driven kinds preserve left
// row order (matches in right order within each left row), right joins
// preserve right row order, and the full join appends unmatched right rows
// after the left pass in right order.
//
// Self joins read only the left relation and pair distinct rows whose keys
// match, keeping a pair only when left.TieBreak sorts strictly before
// right.TieBreak so (a,b) and (b,a) never both appear.
func Join(left, right *types.Relation, d JoinDescriptor) ([]JoinResultRow, error) {
	if err := validateJoin(left, right, d); err != nil {
		return nil, err
	}

	switch d.Kind {
	case JoinInner:
		return joinLeftDriven(left, right, d, false), nil
	case JoinLeft:
		return joinLeftDriven(left, right, d, true), nil
	case JoinRight:
		return joinRight(left, right, d), nil
	case JoinFull:
		return joinFull(left, right, d), nil
	case JoinCross:
		return joinCross(left, right), nil
	case JoinSelf:
		return joinSelf(left, d), nil
	default:
		return nil, &types.UnknownDescriptorKindError{Descriptor: "join", Kind: string(d.Kind)}
	}
}

func validateJoin(left, right *types.Relation, d JoinDescriptor) error {
	switch d.Kind {
	case JoinCross:
		return nil
	case JoinSelf:
		if err := left.RequireColumn(d.LeftKey); err != nil {
			return err
		}
		if err := left.RequireColumn(d.RightKey); err != nil {
			return err
		}
		return left.RequireColumn(selfTieBreak(d))
	case JoinInner, JoinLeft, JoinRight, JoinFull:
		if err := left.RequireColumn(d.LeftKey); err != nil {
			return err
		}
		return right.RequireColumn(d.RightKey)
	default:
		return &types.UnknownDescriptorKindError{Descriptor: "join", Kind: string(d.Kind)}
	}
}

func selfTieBreak(d JoinDescriptor) string {
	if d.TieBreak != "" {
		return d.TieBreak
	}
	return "id"
}

// joinLeftDriven covers inner and left joins: one pass over the left rows,
// probing every right row. With padUnmatched set, a left row with no match
// still surfaces once, padded with a nil right side.
func joinLeftDriven(left, right *types.Relation, d JoinDescriptor, padUnmatched bool) []JoinResultRow {
	results := []JoinResultRow{}
	for _, lrow := range left.Rows() {
		matched := false
		for _, rrow := range right.Rows() {
			if keysMatch(lrow[d.LeftKey], rrow[d.RightKey]) {
				results = append(results, JoinResultRow{Left: lrow, Right: rrow, Matched: true})
				matched = true
			}
		}
		if !matched && padUnmatched {
			results = append(results, JoinResultRow{Left: lrow, Right: nil, Matched: false})
		}
	}
	return results
}

// joinRight mirrors the left join with the right relation driving, so the
// output preserves right row order.
func joinRight(left, right *types.Relation, d JoinDescriptor) []JoinResultRow {
	results := []JoinResultRow{}
	for _, rrow := range right.Rows() {
		matched := false
		for _, lrow := range left.Rows() {
			if keysMatch(lrow[d.LeftKey], rrow[d.RightKey]) {
				results = append(results, JoinResultRow{Left: lrow, Right: rrow, Matched: true})
				matched = true
			}
		}
		if !matched {
			results = append(results, JoinResultRow{Left: nil, Right: rrow, Matched: false})
		}
	}
	return results
}

// joinFull runs the left-join pass while tracking which right rows ever
// matched, then emits the leftovers. Each unmatched right row appears exactly
// once no matter how many left rows failed to pair with it.
func joinFull(left, right *types.Relation, d JoinDescriptor) []JoinResultRow {
	rightRows := right.Rows()
	rightMatched := make([]bool, len(rightRows))

	results := []JoinResultRow{}
	for _, lrow := range left.Rows() {
		matched := false
		for i, rrow := range rightRows {
			if keysMatch(lrow[d.LeftKey], rrow[d.RightKey]) {
				results = append(results, JoinResultRow{Left: lrow, Right: rrow, Matched: true})
				rightMatched[i] = true
				matched = true
			}
		}
		if !matched {
			results = append(results, JoinResultRow{Left: lrow, Right: nil, Matched: false})
		}
	}
	for i, rrow := range rightRows {
		if !rightMatched[i] {
			results = append(results, JoinResultRow{Left: nil, Right: rrow, Matched: false})
		}
	}
	return results
}

func joinCross(left, right *types.Relation) []JoinResultRow {
	results := make([]JoinResultRow, 0, left.Len()*right.Len())
	for _, lrow := range left.Rows() {
		for _, rrow := range right.Rows() {
			results = append(results, JoinResultRow{Left: lrow, Right: rrow, Matched: true})
		}
	}
	return results
}

func joinSelf(rel *types.Relation, d JoinDescriptor) []JoinResultRow {
	tie := selfTieBreak(d)
	rows := rel.Rows()

	results := []JoinResultRow{}
	for _, a := range rows {
		for _, b := range rows {
			if !keysMatch(a[d.LeftKey], b[d.RightKey]) {
				continue
			}
			if !strictlyLess(a[tie], b[tie]) {
				continue
			}
			results = append(results, JoinResultRow{Left: a, Right: b, Matched: true})
		}
	}
	return results
}
