// Package eval implements the mock relational query evaluator: pure,
// synchronous, deterministic computation of join, subquery and window
// function results over fixed in-memory relations. It is the single
// consolidated replacement for the per-widget result computations the
// teaching demos used to carry inline.
package eval

import (
	"github.com/sqlstage/sqlstage/internal/types"
)

// JoinKind selects the join strategy.
type JoinKind string

// Recognized join kinds.
const (
	JoinInner JoinKind = "inner"
	JoinLeft  JoinKind = "left"
	JoinRight JoinKind = "right"
	JoinFull  JoinKind = "full"
	JoinCross JoinKind = "cross"
	JoinSelf  JoinKind = "self"
)

// JoinDescriptor declares which join to evaluate and on which key columns.
type JoinDescriptor struct {
	Kind     JoinKind
	LeftKey  string
	RightKey string

	// TieBreak is the strict-ordering guard column for self joins, so each
	// unordered pair surfaces exactly once. Defaults to "id".
	TieBreak string
}

// WindowKind selects the window function.
type WindowKind string

// Recognized window function kinds.
const (
	WindowRowNumber WindowKind = "row_number"
	WindowRank      WindowKind = "rank"
	WindowDenseRank WindowKind = "dense_rank"
	WindowLag       WindowKind = "lag"
	WindowLead      WindowKind = "lead"
	WindowSumOver   WindowKind = "sum_over"
	WindowAvgOver   WindowKind = "avg_over"
)

// SortOrder is the ordering direction inside a partition.
type SortOrder string

// Recognized sort orders.
const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// WindowDescriptor declares a window function evaluation.
//
// Cumulative is the explicit switch between a running aggregate in partition
// order and a whole-partition aggregate broadcast to every row. Call sites
// must pick one; the evaluator never infers the intent from the presence of
// OrderBy.
type WindowDescriptor struct {
	Kind        WindowKind
	PartitionBy string    // optional; empty treats the whole relation as one partition
	OrderBy     string    // ordering column inside each partition
	Order       SortOrder // defaults to Asc
	Offset      int       // lag/lead distance, defaults to 1
	ValueColumn string    // source column for lag/lead/sum_over/avg_over
	Cumulative  bool      // sum_over/avg_over: running total instead of broadcast
	As          string    // output column name; empty derives one from Kind
}

// OutputColumn returns the name of the computed column the window evaluation
// appends to each row.
func (d WindowDescriptor) OutputColumn() string {
	if d.As != "" {
		return d.As
	}
	switch d.Kind {
	case WindowSumOver:
		return "sum_" + d.ValueColumn
	case WindowAvgOver:
		return "avg_" + d.ValueColumn
	case WindowLag:
		return "lag_" + d.ValueColumn
	case WindowLead:
		return "lead_" + d.ValueColumn
	default:
		return string(d.Kind)
	}
}

// SubqueryKind selects the subquery shape.
type SubqueryKind string

// Recognized subquery kinds.
const (
	SubqueryScalar     SubqueryKind = "scalar"
	SubqueryColumn     SubqueryKind = "column"
	SubqueryRow        SubqueryKind = "row"
	SubqueryTable      SubqueryKind = "table"
	SubqueryCorrelated SubqueryKind = "correlated"
)

// AggregateKind selects the aggregate a subquery computes.
type AggregateKind string

// Recognized aggregates. They follow SQL semantics: NULLs are skipped and an
// empty input aggregates to NULL.
const (
	AggregateAvg AggregateKind = "avg"
	AggregateMax AggregateKind = "max"
	AggregateMin AggregateKind = "min"
	AggregateSum AggregateKind = "sum"
)

// FilterPredicate decides, per outer row, whether the row survives the
// subquery comparison. The second argument is whatever the subquery shape
// produced: the scalar aggregate, the extremum row, or the per-outer-row
// correlated aggregate.
type FilterPredicate func(outer types.Row, result any) bool

// SubqueryDescriptor declares a subquery evaluation over an outer and an
// inner relation.
type SubqueryDescriptor struct {
	Kind        SubqueryKind
	Aggregate   AggregateKind
	InnerColumn string // aggregated or collected column of the inner relation
	OuterColumn string // outer column tested against the subquery result
	CorrelateOn string // correlated: equality column linking outer and inner rows
	GroupBy     string // table: grouping column of the derived relation

	// InnerFilter optionally narrows the inner rows before the subquery
	// computes (the "inner WHERE clause" of the demos).
	InnerFilter func(types.Row) bool

	// Filter keeps the outer rows for which the comparison holds. Required
	// for scalar and correlated kinds; optional elsewhere (column defaults
	// to set membership, row to equality on OuterColumn).
	Filter FilterPredicate
}
