package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlstage/sqlstage/internal/types"
)

func TestNewRelation(t *testing.T) {
	rel, err := types.NewRelation("employees", []string{"id", "name"}, []types.Row{
		{"id": int64(1), "name": "Alice"},
		{"id": int64(2), "name": "Bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rel.Len())
	assert.Equal(t, "Alice", rel.Row(0)["name"])
	assert.Equal(t, []string{"id", "name"}, rel.Columns)
}

func TestNewRelationEmptyName(t *testing.T) {
	_, err := types.NewRelation("", []string{"id"}, nil)
	assert.Error(t, err)
}

func TestNewRelationDuplicateColumn(t *testing.T) {
	_, err := types.NewRelation("employees", []string{"id", "id"}, nil)
	assert.Error(t, err)
}

func TestNewRelationUndeclaredColumn(t *testing.T) {
	_, err := types.NewRelation("employees", []string{"id"}, []types.Row{
		{"id": int64(1), "salary": int64(100)},
	})
	require.Error(t, err)

	var colErr *types.ColumnNotFoundError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, "employees", colErr.Relation)
	assert.Equal(t, "salary", colErr.Column)
}

func TestNewRelationFillsMissingColumnsWithNull(t *testing.T) {
	rel, err := types.NewRelation("employees", []string{"id", "department_id"}, []types.Row{
		{"id": int64(4)},
	})
	require.NoError(t, err)
	assert.True(t, types.IsNull(rel.Row(0)["department_id"]))
}

func TestRelationRowsIsOrderPreservingCopy(t *testing.T) {
	rel := types.MustRelation("nums", []string{"n"}, []types.Row{
		{"n": int64(1)}, {"n": int64(2)}, {"n": int64(3)},
	})

	rows := rel.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, int64(1), rows[0]["n"])
	assert.Equal(t, int64(3), rows[2]["n"])

	// Reordering the returned slice must not disturb the relation.
	rows[0], rows[2] = rows[2], rows[0]
	assert.Equal(t, int64(1), rel.Row(0)["n"])
}

func TestRequireColumn(t *testing.T) {
	rel := types.MustRelation("departments", []string{"id", "name"}, nil)

	assert.NoError(t, rel.RequireColumn("id"))

	err := rel.RequireColumn("budget")
	var colErr *types.ColumnNotFoundError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, "budget", colErr.Column)
}

func TestNumeric(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{name: "int", in: 7, want: 7, ok: true},
		{name: "int64", in: int64(42), want: 42, ok: true},
		{name: "float64", in: 2.5, want: 2.5, ok: true},
		{name: "string", in: "7", ok: false},
		{name: "bool", in: true, ok: false},
		{name: "null", in: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := types.Numeric(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", types.FormatValue(nil))
	assert.Equal(t, "Alice", types.FormatValue("Alice"))
	assert.Equal(t, "10", types.FormatValue(int64(10)))
}

func TestRowCopy(t *testing.T) {
	row := types.Row{"id": int64(1), "name": "Alice"}
	dup := row.Copy()
	dup["name"] = "Bob"
	assert.Equal(t, "Alice", row["name"])
}
