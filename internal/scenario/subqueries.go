package scenario

import (
	"fmt"
	"strings"

	"github.com/sqlstage/sqlstage/internal/dataset"
	"github.com/sqlstage/sqlstage/internal/eval"
	"github.com/sqlstage/sqlstage/internal/playback"
	"github.com/sqlstage/sqlstage/internal/types"
)

func scalarSubquery() (*Walkthrough, error) {
	staff := dataset.MustLoad("staff")
	res, err := eval.Subquery(staff, staff, eval.SubqueryDescriptor{
		Kind:        eval.SubqueryScalar,
		Aggregate:   eval.AggregateAvg,
		InnerColumn: "salary",
		Filter:      eval.GreaterThan("salary"),
	})
	if err != nil {
		return nil, err
	}

	sql := []string{
		"SELECT name, salary",
		"FROM staff",
		"WHERE salary > (",
		"  SELECT AVG(salary) FROM staff);",
	}
	avg := types.FormatValue(res.Scalar)

	steps := []playback.Step{queryStep(sql, "The subquery produces one number for the whole table; the outer query compares every row against it.")}
	steps = append(steps, playback.Step{
		Index:            1,
		Title:            "Inner query",
		HighlightedLines: []int{4},
		Explanation:      fmt.Sprintf("AVG(salary) evaluates once over all staff: %s. Eve's NULL salary is skipped by the aggregate.", avg),
	})
	steps = append(steps, checkSteps(2, staff.Rows(), keptIDs(res.Outer), []int{3}, func(row types.Row, kept bool) string {
		switch {
		case kept:
			return fmt.Sprintf("%s: salary %s is above %s, kept.", rowLabel(row), types.FormatValue(row["salary"]), avg)
		case types.IsNull(row["salary"]):
			return fmt.Sprintf("%s: salary is NULL, and a NULL comparison is never true, dropped.", rowLabel(row))
		default:
			return fmt.Sprintf("%s: salary %s is not above %s, dropped.", rowLabel(row), types.FormatValue(row["salary"]), avg)
		}
	})...)
	steps = append(steps, summaryStep(len(steps), fmt.Sprintf("Kept %d of %d rows.", len(res.Outer), staff.Len())))

	return &Walkthrough{
		Name:    "scalar-subquery",
		Title:   "A scalar subquery evaluates once",
		SQL:     sql,
		Columns: append([]string{}, staff.Columns...),
		Rows:    res.Outer,
		Steps:   steps,
	}, nil
}

func columnSubquery() (*Walkthrough, error) {
	staff := dataset.MustLoad("staff")
	departments := dataset.MustLoad("departments")
	res, err := eval.Subquery(departments, staff, eval.SubqueryDescriptor{
		Kind:        eval.SubqueryColumn,
		InnerColumn: "department_id",
		OuterColumn: "id",
	})
	if err != nil {
		return nil, err
	}

	sql := []string{
		"SELECT name",
		"FROM departments",
		"WHERE id IN (",
		"  SELECT department_id FROM staff);",
	}
	set := formatSet(res.Set)

	steps := []playback.Step{queryStep(sql, "The subquery produces a set of values; the outer query keeps rows whose id is a member.")}
	steps = append(steps, playback.Step{
		Index:            1,
		Title:            "Inner query",
		HighlightedLines: []int{4},
		Explanation:      fmt.Sprintf("The distinct department ids of staff form the set %s. Frank's NULL department drops out, since NULL in an IN list can never match.", set),
	})
	steps = append(steps, checkSteps(2, departments.Rows(), keptIDs(res.Outer), []int{3}, func(row types.Row, kept bool) string {
		if kept {
			return fmt.Sprintf("%s: id %s is in %s, kept.", rowLabel(row), types.FormatValue(row["id"]), set)
		}
		return fmt.Sprintf("%s: id %s is not in %s, dropped.", rowLabel(row), types.FormatValue(row["id"]), set)
	})...)
	steps = append(steps, summaryStep(len(steps), fmt.Sprintf("Kept %d of %d rows.", len(res.Outer), departments.Len())))

	return &Walkthrough{
		Name:    "column-subquery",
		Title:   "A column subquery produces a membership set",
		SQL:     sql,
		Columns: append([]string{}, departments.Columns...),
		Rows:    res.Outer,
		Steps:   steps,
	}, nil
}

func rowSubquery() (*Walkthrough, error) {
	staff := dataset.MustLoad("staff")
	res, err := eval.Subquery(staff, staff, eval.SubqueryDescriptor{
		Kind:        eval.SubqueryRow,
		Aggregate:   eval.AggregateMax,
		InnerColumn: "salary",
		OuterColumn: "salary",
	})
	if err != nil {
		return nil, err
	}

	sql := []string{
		"SELECT name, salary",
		"FROM staff",
		"WHERE salary = (",
		"  SELECT MAX(salary) FROM staff);",
	}
	max := types.FormatValue(res.Row["salary"])

	steps := []playback.Step{queryStep(sql, "The subquery finds an extremum; the outer query selects the row holding it.")}
	steps = append(steps, playback.Step{
		Index:            1,
		Title:            "Inner query",
		HighlightedLines: []int{4},
		Explanation:      fmt.Sprintf("MAX(salary) is %s, held by %s.", max, rowLabel(res.Row)),
	})
	steps = append(steps, checkSteps(2, staff.Rows(), keptIDs(res.Outer), []int{3}, func(row types.Row, kept bool) string {
		switch {
		case kept:
			return fmt.Sprintf("%s: salary %s equals the maximum, kept.", rowLabel(row), types.FormatValue(row["salary"]))
		case types.IsNull(row["salary"]):
			return fmt.Sprintf("%s: salary is NULL and compares with nothing, dropped.", rowLabel(row))
		default:
			return fmt.Sprintf("%s: salary %s falls short of %s, dropped.", rowLabel(row), types.FormatValue(row["salary"]), max)
		}
	})...)
	steps = append(steps, summaryStep(len(steps), fmt.Sprintf("Kept %d of %d rows.", len(res.Outer), staff.Len())))

	return &Walkthrough{
		Name:    "row-subquery",
		Title:   "A row subquery pins down one record",
		SQL:     sql,
		Columns: append([]string{}, staff.Columns...),
		Rows:    res.Outer,
		Steps:   steps,
	}, nil
}

func tableSubquery() (*Walkthrough, error) {
	staff := dataset.MustLoad("staff")
	res, err := eval.Subquery(nil, staff, eval.SubqueryDescriptor{
		Kind:        eval.SubqueryTable,
		Aggregate:   eval.AggregateAvg,
		InnerColumn: "salary",
		GroupBy:     "department_id",
	})
	if err != nil {
		return nil, err
	}
	table := res.Table

	sql := []string{
		"SELECT department_id,",
		"       AVG(salary) AS avg_salary",
		"FROM staff",
		"GROUP BY department_id;",
	}

	steps := []playback.Step{queryStep(sql, "Here the derived table itself is the result: one row per distinct department_id, in order of first appearance.")}
	for i, row := range table.Rows() {
		var text string
		if types.IsNull(row["department_id"]) {
			text = fmt.Sprintf("Rows with a NULL department_id form their own group, aggregating to avg_salary=%s.", types.FormatValue(row["avg_salary"]))
		} else {
			text = fmt.Sprintf("Rows with department_id=%s aggregate to avg_salary=%s. NULL salaries are skipped.", types.FormatValue(row["department_id"]), types.FormatValue(row["avg_salary"]))
		}
		steps = append(steps, playback.Step{
			Index:            i + 1,
			Title:            fmt.Sprintf("Group %d", i+1),
			HighlightedLines: []int{2, 4},
			Explanation:      text,
		})
	}
	steps = append(steps, summaryStep(len(steps), fmt.Sprintf("%s, one per group.", plural(table.Len(), "row"))))

	return &Walkthrough{
		Name:    "table-subquery",
		Title:   "A table subquery derives a new relation",
		SQL:     sql,
		Columns: append([]string{}, table.Columns...),
		Rows:    table.Rows(),
		Steps:   steps,
	}, nil
}

func correlatedSubquery() (*Walkthrough, error) {
	staff := dataset.MustLoad("staff")
	res, err := eval.Subquery(staff, staff, eval.SubqueryDescriptor{
		Kind:        eval.SubqueryCorrelated,
		Aggregate:   eval.AggregateAvg,
		InnerColumn: "salary",
		CorrelateOn: "department_id",
		Filter:      eval.GreaterThan("salary"),
	})
	if err != nil {
		return nil, err
	}

	sql := []string{
		"SELECT name, salary",
		"FROM staff s",
		"WHERE salary > (",
		"  SELECT AVG(salary) FROM staff",
		"  WHERE department_id = s.department_id);",
	}

	steps := []playback.Step{queryStep(sql, "The inner query reads s.department_id from the outer row, so it cannot run once. It re-runs for every staff row.")}
	kept := keptIDs(res.Outer)
	for i, row := range staff.Rows() {
		agg := res.PerOuter[i]
		var text string
		switch {
		case types.IsNull(row["department_id"]):
			text = fmt.Sprintf("%s has a NULL department_id, which correlates with no rows. The average is NULL and the comparison fails, dropped.", rowLabel(row))
		case kept[row["id"]]:
			text = fmt.Sprintf("%s: department %s averages %s, and salary %s is above it, kept.",
				rowLabel(row), types.FormatValue(row["department_id"]), types.FormatValue(agg), types.FormatValue(row["salary"]))
		case types.IsNull(row["salary"]):
			text = fmt.Sprintf("%s: department %s averages %s, but a NULL salary compares with nothing, dropped.",
				rowLabel(row), types.FormatValue(row["department_id"]), types.FormatValue(agg))
		default:
			text = fmt.Sprintf("%s: department %s averages %s, and salary %s is not strictly above it, dropped.",
				rowLabel(row), types.FormatValue(row["department_id"]), types.FormatValue(agg), types.FormatValue(row["salary"]))
		}
		steps = append(steps, playback.Step{
			Index:            i + 1,
			Title:            fmt.Sprintf("Recompute for %s", rowLabel(row)),
			HighlightedLines: []int{4, 5},
			Explanation:      text,
		})
	}
	steps = append(steps, summaryStep(len(steps), fmt.Sprintf("Kept %d of %d rows, each judged against its own department's average.", len(res.Outer), staff.Len())))

	return &Walkthrough{
		Name:    "correlated-subquery",
		Title:   "A correlated subquery re-runs per row",
		SQL:     sql,
		Columns: append([]string{}, staff.Columns...),
		Rows:    res.Outer,
		Steps:   steps,
	}, nil
}

// checkSteps narrates the outer filter pass, one step per outer row.
func checkSteps(start int, outer []types.Row, kept map[any]bool, highlight []int, explain func(row types.Row, kept bool) string) []playback.Step {
	steps := make([]playback.Step, 0, len(outer))
	for i, row := range outer {
		steps = append(steps, playback.Step{
			Index:            start + i,
			Title:            fmt.Sprintf("Check %s", rowLabel(row)),
			HighlightedLines: highlight,
			Explanation:      explain(row, kept[row["id"]]),
		})
	}
	return steps
}

// keptIDs indexes filtered rows by their id column so the narration can tell
// kept rows from dropped ones while walking the full outer relation.
func keptIDs(rows []types.Row) map[any]bool {
	kept := make(map[any]bool, len(rows))
	for _, row := range rows {
		kept[row["id"]] = true
	}
	return kept
}

func formatSet(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = types.FormatValue(v)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
