package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlstage/sqlstage/internal/types"
)

func TestLoadEmployeesFixture(t *testing.T) {
	rel, err := Load("employees")
	require.NoError(t, err)

	assert.Equal(t, "employees", rel.Name)
	assert.Equal(t, []string{"id", "name", "department_id"}, rel.Columns)
	require.Equal(t, 3, rel.Len())

	assert.Equal(t, types.Row{"id": int64(1), "name": "Alice", "department_id": int64(10)}, rel.Row(0))
	assert.Equal(t, types.Row{"id": int64(4), "name": "Diana", "department_id": nil}, rel.Row(2))
}

func TestLoadAllEmbeddedFixtures(t *testing.T) {
	names := Names()
	assert.Equal(t, []string{"customers", "departments", "employees", "offices", "orders", "staff", "team"}, names)

	for _, name := range names {
		rel, err := Load(name)
		require.NoError(t, err, "fixture %s", name)
		assert.Equal(t, name, rel.Name)
		assert.Greater(t, rel.Len(), 0)
	}
}

func TestLoadUnknownFixture(t *testing.T) {
	_, err := Load("payroll_2019")
	assert.ErrorContains(t, err, `unknown fixture "payroll_2019"`)
}

func TestDecodeNumberKinds(t *testing.T) {
	rel, err := Load("orders")
	require.NoError(t, err)

	first := rel.Row(0)
	assert.IsType(t, int64(0), first["id"])
	assert.Equal(t, 250.0, first["amount"])
	assert.Equal(t, 75.5, rel.Row(1)["amount"])
	assert.Nil(t, rel.Row(3)["customer_id"])
}

func TestDecodeRejectsUndeclaredColumn(t *testing.T) {
	_, err := Decode([]byte(`{
		"name": "pets",
		"columns": ["id"],
		"rows": [{"id": 1, "species": "cat"}]
	}`))

	var colErr *types.ColumnNotFoundError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, "species", colErr.Column)
	assert.Equal(t, "pets", colErr.Relation)
}

func TestDecodeRejectsMissingColumnsField(t *testing.T) {
	_, err := Decode([]byte(`{"name": "pets", "rows": []}`))
	require.Error(t, err)
	assert.ErrorContains(t, err, "columns is required")
}

func TestDecodeRejectsNestedCellValues(t *testing.T) {
	_, err := Decode([]byte(`{
		"name": "pets",
		"columns": ["id", "tags"],
		"rows": [{"id": 1, "tags": {"indoor": true}}]
	}`))
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid against schema")
}

func TestGenerateEmployeesShape(t *testing.T) {
	rel := GenerateEmployees(30, 7)

	assert.Equal(t, "employees", rel.Name)
	assert.Equal(t, []string{"id", "name", "email", "department_id", "salary"}, rel.Columns)
	require.Equal(t, 30, rel.Len())

	for i := 0; i < rel.Len(); i++ {
		assert.Equal(t, int64(i+1), rel.Row(i)["id"])
	}
}

func TestGenerateEmployeesSeedReproducesNumericColumns(t *testing.T) {
	a := GenerateEmployees(50, 42)
	b := GenerateEmployees(50, 42)

	for i := 0; i < a.Len(); i++ {
		assert.Equal(t, a.Row(i)["department_id"], b.Row(i)["department_id"], "row %d", i)
		assert.Equal(t, a.Row(i)["salary"], b.Row(i)["salary"], "row %d", i)
	}
}
