package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlstage/sqlstage/internal/types"
)

// staffRelation carries the salary walkthrough data: two salary peers in
// department 10 and a NULL salary in department 20.
func staffRelation(t *testing.T) *types.Relation {
	t.Helper()
	rel, err := types.NewRelation("staff", []string{"id", "name", "department_id", "salary"}, []types.Row{
		{"id": int64(1), "name": "Alice", "department_id": int64(10), "salary": int64(85)},
		{"id": int64(2), "name": "Bob", "department_id": int64(20), "salary": int64(92)},
		{"id": int64(3), "name": "Carol", "department_id": int64(10), "salary": int64(85)},
		{"id": int64(4), "name": "Dave", "department_id": int64(10), "salary": int64(70)},
		{"id": int64(5), "name": "Eve", "department_id": int64(20), "salary": nil},
	})
	require.NoError(t, err)
	return rel
}

func windowColumn(t *testing.T, rows []types.Row, column string) []any {
	t.Helper()
	values := make([]any, len(rows))
	for i, row := range rows {
		values[i] = row[column]
	}
	return values
}

func TestRowNumberRestartsPerPartition(t *testing.T) {
	rows, err := Window(staffRelation(t), WindowDescriptor{
		Kind:        WindowRowNumber,
		PartitionBy: "department_id",
		OrderBy:     "salary",
		Order:       Desc,
	})
	require.NoError(t, err)
	require.Len(t, rows, 5)

	// Partition 10 first (Alice appears first in the relation), sorted by
	// salary descending with the 85 tie kept stable; then partition 20,
	// where the NULL salary leads a descending sort.
	assert.Equal(t, []any{"Alice", "Carol", "Dave", "Eve", "Bob"}, windowColumn(t, rows, "name"))
	assert.Equal(t, []any{int64(1), int64(2), int64(3), int64(1), int64(2)}, windowColumn(t, rows, "row_number"))
}

func TestRankLeavesGapsAfterTies(t *testing.T) {
	rows, err := Window(staffRelation(t), WindowDescriptor{
		Kind:        WindowRank,
		PartitionBy: "department_id",
		OrderBy:     "salary",
		Order:       Desc,
	})
	require.NoError(t, err)

	assert.Equal(t, []any{int64(1), int64(1), int64(3), int64(1), int64(2)}, windowColumn(t, rows, "rank"))
}

func TestDenseRankLeavesNoGaps(t *testing.T) {
	rows, err := Window(staffRelation(t), WindowDescriptor{
		Kind:        WindowDenseRank,
		PartitionBy: "department_id",
		OrderBy:     "salary",
		Order:       Desc,
	})
	require.NoError(t, err)

	assert.Equal(t, []any{int64(1), int64(1), int64(2), int64(1), int64(2)}, windowColumn(t, rows, "dense_rank"))
}

func TestLagYieldsNullBeforeFirstRow(t *testing.T) {
	rows, err := Window(staffRelation(t), WindowDescriptor{
		Kind:        WindowLag,
		OrderBy:     "id",
		ValueColumn: "salary",
	})
	require.NoError(t, err)

	assert.Equal(t, []any{nil, int64(85), int64(92), int64(85), int64(70)}, windowColumn(t, rows, "lag_salary"))
}

func TestLeadWithOffsetTwo(t *testing.T) {
	rows, err := Window(staffRelation(t), WindowDescriptor{
		Kind:        WindowLead,
		OrderBy:     "id",
		ValueColumn: "salary",
		Offset:      2,
	})
	require.NoError(t, err)

	// Carol looks ahead to Eve, whose salary is genuinely NULL; the last
	// two rows run past the end of the relation.
	assert.Equal(t, []any{int64(85), int64(70), nil, nil, nil}, windowColumn(t, rows, "lead_salary"))
}

func TestCumulativeSumSkipsNulls(t *testing.T) {
	rows, err := Window(staffRelation(t), WindowDescriptor{
		Kind:        WindowSumOver,
		PartitionBy: "department_id",
		OrderBy:     "salary",
		Cumulative:  true,
		ValueColumn: "salary",
	})
	require.NoError(t, err)

	assert.Equal(t, []any{"Dave", "Alice", "Carol", "Bob", "Eve"}, windowColumn(t, rows, "name"))
	assert.Equal(t, []any{70.0, 155.0, 240.0, 92.0, 92.0}, windowColumn(t, rows, "sum_salary"))
}

func TestBroadcastAverageCoversWholePartition(t *testing.T) {
	rows, err := Window(staffRelation(t), WindowDescriptor{
		Kind:        WindowAvgOver,
		PartitionBy: "department_id",
		ValueColumn: "salary",
	})
	require.NoError(t, err)

	// No ordering requested, so rows keep relation order inside each
	// partition. Eve's NULL salary is excluded from the average yet her
	// row still receives the partition value.
	assert.Equal(t, []any{"Alice", "Carol", "Dave", "Bob", "Eve"}, windowColumn(t, rows, "name"))
	assert.Equal(t, []any{80.0, 80.0, 80.0, 92.0, 92.0}, windowColumn(t, rows, "avg_salary"))
}

func TestBroadcastSumOverAllNullsIsNull(t *testing.T) {
	rel, err := types.NewRelation("bonuses", []string{"id", "amount"}, []types.Row{
		{"id": int64(1), "amount": nil},
		{"id": int64(2), "amount": nil},
	})
	require.NoError(t, err)

	rows, err := Window(rel, WindowDescriptor{Kind: WindowSumOver, ValueColumn: "amount"})
	require.NoError(t, err)

	assert.Equal(t, []any{nil, nil}, windowColumn(t, rows, "sum_amount"))
}

func TestWindowCustomOutputColumn(t *testing.T) {
	rows, err := Window(staffRelation(t), WindowDescriptor{
		Kind:        WindowSumOver,
		OrderBy:     "id",
		Cumulative:  true,
		ValueColumn: "salary",
		As:          "running_total",
	})
	require.NoError(t, err)

	assert.Equal(t, 332.0, rows[len(rows)-1]["running_total"])
}

func TestWindowLeavesInputRelationUntouched(t *testing.T) {
	rel := staffRelation(t)
	_, err := Window(rel, WindowDescriptor{Kind: WindowRowNumber, OrderBy: "id"})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "department_id", "salary"}, rel.Columns)
	assert.NotContains(t, rel.Row(0), "row_number")
	assert.Equal(t, "Alice", rel.Row(0)["name"])
}

func TestWindowValidation(t *testing.T) {
	tests := []struct {
		name       string
		descriptor WindowDescriptor
		wantReason string
	}{
		{
			name:       "rank without order column",
			descriptor: WindowDescriptor{Kind: WindowRank, PartitionBy: "department_id"},
			wantReason: "rank requires an order column",
		},
		{
			name:       "lag without value column",
			descriptor: WindowDescriptor{Kind: WindowLag, OrderBy: "id"},
			wantReason: "lag requires a value column",
		},
		{
			name:       "cumulative sum without order column",
			descriptor: WindowDescriptor{Kind: WindowSumOver, ValueColumn: "salary", Cumulative: true},
			wantReason: "sum_over requires an order column",
		},
		{
			name:       "negative offset",
			descriptor: WindowDescriptor{Kind: WindowLead, OrderBy: "id", ValueColumn: "salary", Offset: -1},
			wantReason: "offset must be positive, got -1",
		},
		{
			name:       "unknown sort order",
			descriptor: WindowDescriptor{Kind: WindowRank, OrderBy: "salary", Order: "descending"},
			wantReason: `unknown sort order "descending"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Window(staffRelation(t), tt.descriptor)
			var invalidErr *types.InvalidDescriptorError
			require.ErrorAs(t, err, &invalidErr)
			assert.Equal(t, tt.wantReason, invalidErr.Reason)
		})
	}
}

func TestWindowUnknownKind(t *testing.T) {
	_, err := Window(staffRelation(t), WindowDescriptor{Kind: "ntile", OrderBy: "id"})
	var kindErr *types.UnknownDescriptorKindError
	require.ErrorAs(t, err, &kindErr)
	assert.Equal(t, "window", kindErr.Descriptor)
	assert.Equal(t, "ntile", kindErr.Kind)
}

func TestWindowMissingColumns(t *testing.T) {
	_, err := Window(staffRelation(t), WindowDescriptor{Kind: WindowRank, PartitionBy: "team_id", OrderBy: "salary"})
	var colErr *types.ColumnNotFoundError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, "team_id", colErr.Column)
}
