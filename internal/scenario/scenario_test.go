package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamesCoversTheCatalog(t *testing.T) {
	assert.Equal(t, []string{
		"column-subquery",
		"correlated-subquery",
		"cross-join",
		"dense-rank",
		"dept-average",
		"full-join",
		"inner-join",
		"lag",
		"lead",
		"left-join",
		"rank",
		"right-join",
		"row-number",
		"row-subquery",
		"running-total",
		"scalar-subquery",
		"self-join",
		"table-subquery",
	}, Names())
}

func TestBuildUnknownScenario(t *testing.T) {
	_, err := Build("hash-join")
	assert.ErrorContains(t, err, `unknown scenario "hash-join"`)
}

// Every catalog entry must produce a coherent walkthrough: contiguous step
// indexes, highlights that point at real SQL lines, and rows carrying every
// advertised column.
func TestEveryScenarioBuildsCoherently(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			w, err := Build(name)
			require.NoError(t, err)

			assert.Equal(t, name, w.Name)
			assert.NotEmpty(t, w.Title)
			assert.NotEmpty(t, w.SQL)
			assert.NotEmpty(t, w.Columns)
			require.GreaterOrEqual(t, len(w.Steps), 2)

			for i, step := range w.Steps {
				assert.Equal(t, i, step.Index, "step indexes must be contiguous")
				assert.NotEmpty(t, step.Title)
				assert.NotEmpty(t, step.Explanation)
				for _, line := range step.HighlightedLines {
					assert.GreaterOrEqual(t, line, 1)
					assert.LessOrEqual(t, line, len(w.SQL))
				}
			}

			assert.Equal(t, "The query", w.Steps[0].Title)
			assert.Equal(t, "Result", w.Steps[len(w.Steps)-1].Title)

			for _, row := range w.Rows {
				for _, col := range w.Columns {
					assert.Contains(t, row, col)
				}
			}
		})
	}
}

func TestLeftJoinWalkthrough(t *testing.T) {
	w, err := Build("left-join")
	require.NoError(t, err)

	// Alice matched, Bob unmatched, Diana unmatched through her NULL key.
	require.Len(t, w.Rows, 3)
	assert.Equal(t, "Alice", w.Rows[0]["employees.name"])
	assert.Equal(t, "Engineering", w.Rows[0]["departments.name"])
	assert.Equal(t, "Bob", w.Rows[1]["employees.name"])
	assert.Nil(t, w.Rows[1]["departments.name"])
	assert.Equal(t, "Diana", w.Rows[2]["employees.name"])
	assert.Nil(t, w.Rows[2]["departments.name"])

	// Intro, one step per row, summary.
	assert.Len(t, w.Steps, 5)
	assert.Contains(t, w.Steps[3].Explanation, "NULL")
}

func TestInnerJoinWalkthrough(t *testing.T) {
	w, err := Build("inner-join")
	require.NoError(t, err)

	require.Len(t, w.Rows, 1)
	assert.Equal(t, "Alice", w.Rows[0]["employees.name"])
	assert.Equal(t, "Engineering", w.Rows[0]["departments.name"])
}

func TestCrossJoinWalkthrough(t *testing.T) {
	w, err := Build("cross-join")
	require.NoError(t, err)

	assert.Len(t, w.Rows, 12)
	assert.Len(t, w.Steps, 14)
	assert.Contains(t, w.Steps[len(w.Steps)-1].Explanation, "12 rows")
}

func TestSelfJoinWalkthrough(t *testing.T) {
	w, err := Build("self-join")
	require.NoError(t, err)

	// Department 10 has three members making three pairs, department 20 has
	// two making one, and the NULL departments pair with nobody.
	require.Len(t, w.Rows, 4)
	assert.Equal(t, "Alice", w.Rows[0]["staff_a.name"])
	assert.Equal(t, "Carol", w.Rows[0]["staff_b.name"])
	assert.Equal(t, "Carol", w.Rows[3]["staff_a.name"])
	assert.Equal(t, "Dave", w.Rows[3]["staff_b.name"])
}

func TestRankWalkthrough(t *testing.T) {
	w, err := Build("rank")
	require.NoError(t, err)

	// Department 10 carries the salary tie, department 20 sorts its NULL
	// salary first under DESC, and Frank's NULL department is a partition
	// of its own.
	require.Len(t, w.Rows, 6)
	ranks := make([]any, len(w.Rows))
	for i, row := range w.Rows {
		ranks[i] = row["rank"]
	}
	assert.Equal(t, []any{int64(1), int64(1), int64(3), int64(1), int64(2), int64(1)}, ranks)
	assert.Contains(t, w.Columns, "rank")
}

func TestScalarSubqueryWalkthrough(t *testing.T) {
	w, err := Build("scalar-subquery")
	require.NoError(t, err)

	require.Len(t, w.Rows, 3)
	assert.Equal(t, "Alice", w.Rows[0]["name"])
	assert.Equal(t, "Bob", w.Rows[1]["name"])
	assert.Equal(t, "Carol", w.Rows[2]["name"])

	// The inner-query step surfaces the computed average.
	assert.Contains(t, w.Steps[1].Explanation, "76.4")
}

func TestTableSubqueryWalkthrough(t *testing.T) {
	w, err := Build("table-subquery")
	require.NoError(t, err)

	assert.Equal(t, []string{"department_id", "avg_salary"}, w.Columns)
	require.Len(t, w.Rows, 3)
	assert.Equal(t, 80.0, w.Rows[0]["avg_salary"])
	assert.Nil(t, w.Rows[2]["department_id"])
}

func TestCorrelatedSubqueryWalkthrough(t *testing.T) {
	w, err := Build("correlated-subquery")
	require.NoError(t, err)

	require.Len(t, w.Rows, 2)
	assert.Equal(t, "Alice", w.Rows[0]["name"])
	assert.Equal(t, "Carol", w.Rows[1]["name"])

	// One recompute step per staff row between intro and summary.
	assert.Len(t, w.Steps, 8)
	assert.Contains(t, w.Steps[6].Explanation, "NULL department_id")
}
