package scenario

import (
	"fmt"

	"github.com/sqlstage/sqlstage/internal/dataset"
	"github.com/sqlstage/sqlstage/internal/eval"
	"github.com/sqlstage/sqlstage/internal/playback"
	"github.com/sqlstage/sqlstage/internal/types"
)

func innerJoin() (*Walkthrough, error) {
	return joinWalkthrough("inner-join", "Inner join keeps only the matches",
		[]string{
			"SELECT employees.name, departments.name",
			"FROM employees",
			"INNER JOIN departments",
			"  ON employees.department_id = departments.id;",
		}, []int{3, 4},
		dataset.MustLoad("employees"), dataset.MustLoad("departments"),
		eval.JoinDescriptor{Kind: eval.JoinInner, LeftKey: "department_id", RightKey: "id"},
		"An inner join emits a row only where the key matches on both sides. Bob's department 20 is not listed, and Diana has no department at all, so only Alice survives.")
}

func leftJoin() (*Walkthrough, error) {
	return joinWalkthrough("left-join", "Left join keeps every left row",
		[]string{
			"SELECT employees.name, departments.name",
			"FROM employees",
			"LEFT JOIN departments",
			"  ON employees.department_id = departments.id;",
		}, []int{3, 4},
		dataset.MustLoad("employees"), dataset.MustLoad("departments"),
		eval.JoinDescriptor{Kind: eval.JoinLeft, LeftKey: "department_id", RightKey: "id"},
		"A left join keeps every employee. Where no department matches, the department columns are filled with NULLs instead of dropping the row.")
}

func rightJoin() (*Walkthrough, error) {
	return joinWalkthrough("right-join", "Right join keeps every right row",
		[]string{
			"SELECT employees.name, departments.name",
			"FROM employees",
			"RIGHT JOIN departments",
			"  ON employees.department_id = departments.id;",
		}, []int{3, 4},
		dataset.MustLoad("employees"), dataset.MustLoad("departments"),
		eval.JoinDescriptor{Kind: eval.JoinRight, LeftKey: "department_id", RightKey: "id"},
		"A right join is the mirror image: every department appears, and Sales, which employs nobody here, gets NULL employee columns.")
}

func fullJoin() (*Walkthrough, error) {
	return joinWalkthrough("full-join", "Full join keeps both sides",
		[]string{
			"SELECT employees.name, departments.name",
			"FROM employees",
			"FULL OUTER JOIN departments",
			"  ON employees.department_id = departments.id;",
		}, []int{3, 4},
		dataset.MustLoad("employees"), dataset.MustLoad("departments"),
		eval.JoinDescriptor{Kind: eval.JoinFull, LeftKey: "department_id", RightKey: "id"},
		"A full outer join keeps unmatched rows from both sides: employees without a department and departments without employees, each padded with NULLs.")
}

func crossJoin() (*Walkthrough, error) {
	return joinWalkthrough("cross-join", "Cross join pairs everything",
		[]string{
			"SELECT team.name, offices.name",
			"FROM team",
			"CROSS JOIN offices;",
		}, []int{3},
		dataset.MustLoad("team"), dataset.MustLoad("offices"),
		eval.JoinDescriptor{Kind: eval.JoinCross},
		"A cross join has no ON clause. Every team row pairs with every office, so four people times three offices makes twelve rows.")
}

func selfJoin() (*Walkthrough, error) {
	return joinWalkthrough("self-join", "Self join finds pairs within one table",
		[]string{
			"SELECT a.name, b.name",
			"FROM staff a",
			"JOIN staff b",
			"  ON a.department_id = b.department_id",
			"  AND a.id < b.id;",
		}, []int{4, 5},
		dataset.MustLoad("staff"), dataset.MustLoad("staff"),
		eval.JoinDescriptor{Kind: eval.JoinSelf, LeftKey: "department_id", RightKey: "department_id"},
		"Joining staff to itself finds colleagues who share a department. The a.id < b.id guard admits each pair once and keeps rows from pairing with themselves.")
}

func joinWalkthrough(name, title string, sql []string, highlight []int, left, right *types.Relation, d eval.JoinDescriptor, intro string) (*Walkthrough, error) {
	results, err := eval.Join(left, right, d)
	if err != nil {
		return nil, err
	}

	steps := []playback.Step{queryStep(sql, intro)}
	matched := 0
	rows := make([]types.Row, len(results))
	for i, r := range results {
		if r.Matched {
			matched++
		}
		rows[i] = r.Combined(left, right)
		steps = append(steps, playback.Step{
			Index:            i + 1,
			Title:            fmt.Sprintf("Result row %d", i+1),
			HighlightedLines: highlight,
			Explanation:      joinRowExplanation(r, left, right, d),
		})
	}
	steps = append(steps, summaryStep(len(steps), joinSummary(len(results), matched)))

	return &Walkthrough{
		Name:    name,
		Title:   title,
		SQL:     sql,
		Columns: eval.CombinedColumns(left, right),
		Rows:    rows,
		Steps:   steps,
	}, nil
}

func joinSummary(total, matched int) string {
	if total == 0 {
		return "No rows at all: nothing matched and the join kind pads nothing."
	}
	if matched == total {
		return fmt.Sprintf("%s, all matched.", plural(total, "row"))
	}
	return fmt.Sprintf("%s: %d matched, %d padded with NULLs.", plural(total, "row"), matched, total-matched)
}

func joinRowExplanation(r eval.JoinResultRow, left, right *types.Relation, d eval.JoinDescriptor) string {
	switch {
	case d.Kind == eval.JoinCross:
		return fmt.Sprintf("%s pairs with %s. A cross join keeps every combination, matched by definition.",
			rowLabel(r.Left), rowLabel(r.Right))
	case d.Kind == eval.JoinSelf:
		tie := d.TieBreak
		if tie == "" {
			tie = "id"
		}
		return fmt.Sprintf("%s and %s share %s=%s, and a.%s < b.%s holds, so the pair appears exactly once.",
			rowLabel(r.Left), rowLabel(r.Right), d.LeftKey, types.FormatValue(r.Left[d.LeftKey]), tie, tie)
	case r.Matched:
		return fmt.Sprintf("%s matches %s: %s=%s on both sides.",
			rowLabel(r.Left), rowLabel(r.Right), d.LeftKey, types.FormatValue(r.Left[d.LeftKey]))
	case r.Left != nil && types.IsNull(r.Left[d.LeftKey]):
		return fmt.Sprintf("%s has a NULL %s. NULL equals nothing, not even another NULL, so the %s side is all NULLs.",
			rowLabel(r.Left), d.LeftKey, right.Name)
	case r.Left != nil:
		return fmt.Sprintf("No %s row has %s=%s, so %s keeps a NULL %s side.",
			right.Name, d.RightKey, types.FormatValue(r.Left[d.LeftKey]), rowLabel(r.Left), right.Name)
	default:
		return fmt.Sprintf("No %s row has %s=%s, so %s keeps a NULL %s side.",
			left.Name, d.LeftKey, types.FormatValue(r.Right[d.RightKey]), rowLabel(r.Right), left.Name)
	}
}

// rowLabel names a row for narration, preferring its name column.
func rowLabel(row types.Row) string {
	if row == nil {
		return "nothing"
	}
	if name, ok := row["name"].(string); ok {
		return name
	}
	if id, ok := row["id"]; ok {
		return "id=" + types.FormatValue(id)
	}
	return "the row"
}
