package scenario

import (
	"fmt"
	"strings"

	"github.com/sqlstage/sqlstage/internal/dataset"
	"github.com/sqlstage/sqlstage/internal/eval"
	"github.com/sqlstage/sqlstage/internal/playback"
	"github.com/sqlstage/sqlstage/internal/types"
)

func rowNumber() (*Walkthrough, error) {
	return windowWalkthrough("row-number", "ROW_NUMBER hands out sequence positions",
		[]string{
			"SELECT name, department_id, salary,",
			"  ROW_NUMBER() OVER (",
			"    PARTITION BY department_id",
			"    ORDER BY salary DESC) AS row_number",
			"FROM staff;",
		}, []int{2, 3, 4},
		dataset.MustLoad("staff"),
		eval.WindowDescriptor{Kind: eval.WindowRowNumber, PartitionBy: "department_id", OrderBy: "salary", Order: eval.Desc},
		"ROW_NUMBER counts 1, 2, 3 within each department, restarting at every partition boundary. Ties get distinct numbers; the tie between Alice and Carol is broken by input order.")
}

func rankWindow() (*Walkthrough, error) {
	return windowWalkthrough("rank", "RANK shares positions and leaves gaps",
		[]string{
			"SELECT name, department_id, salary,",
			"  RANK() OVER (",
			"    PARTITION BY department_id",
			"    ORDER BY salary DESC) AS rank",
			"FROM staff;",
		}, []int{2, 3, 4},
		dataset.MustLoad("staff"),
		eval.WindowDescriptor{Kind: eval.WindowRank, PartitionBy: "department_id", OrderBy: "salary", Order: eval.Desc},
		"Equal salaries share a rank, and the next distinct salary jumps to its row position. Alice and Carol tie at rank 1, so Dave lands at rank 3 and nobody is rank 2.")
}

func denseRankWindow() (*Walkthrough, error) {
	return windowWalkthrough("dense-rank", "DENSE_RANK shares positions without gaps",
		[]string{
			"SELECT name, department_id, salary,",
			"  DENSE_RANK() OVER (",
			"    PARTITION BY department_id",
			"    ORDER BY salary DESC) AS dense_rank",
			"FROM staff;",
		}, []int{2, 3, 4},
		dataset.MustLoad("staff"),
		eval.WindowDescriptor{Kind: eval.WindowDenseRank, PartitionBy: "department_id", OrderBy: "salary", Order: eval.Desc},
		"Like RANK, equal salaries share a position, but the next distinct salary takes the next integer. After the tie at 1, Dave is rank 2.")
}

func lagWindow() (*Walkthrough, error) {
	return windowWalkthrough("lag", "LAG looks at the previous row",
		[]string{
			"SELECT name, salary,",
			"  LAG(salary, 1) OVER (",
			"    ORDER BY id) AS lag_salary",
			"FROM staff;",
		}, []int{2, 3},
		dataset.MustLoad("staff"),
		eval.WindowDescriptor{Kind: eval.WindowLag, OrderBy: "id", ValueColumn: "salary"},
		"Each row reads the salary one position back in id order. The first row has nobody behind it and gets NULL.")
}

func leadWindow() (*Walkthrough, error) {
	return windowWalkthrough("lead", "LEAD looks ahead",
		[]string{
			"SELECT name, salary,",
			"  LEAD(salary, 2) OVER (",
			"    ORDER BY id) AS lead_salary",
			"FROM staff;",
		}, []int{2, 3},
		dataset.MustLoad("staff"),
		eval.WindowDescriptor{Kind: eval.WindowLead, OrderBy: "id", ValueColumn: "salary", Offset: 2},
		"Each row reads the salary two positions ahead in id order. Rows near the end run out of lookahead and get NULL, and a lookahead can also land on a genuinely NULL salary.")
}

func runningTotal() (*Walkthrough, error) {
	return windowWalkthrough("running-total", "A running total accumulates in order",
		[]string{
			"SELECT name, department_id, salary,",
			"  SUM(salary) OVER (",
			"    PARTITION BY department_id",
			"    ORDER BY salary) AS running_total",
			"FROM staff;",
		}, []int{2, 3, 4},
		dataset.MustLoad("staff"),
		eval.WindowDescriptor{Kind: eval.WindowSumOver, PartitionBy: "department_id", OrderBy: "salary", Cumulative: true, ValueColumn: "salary", As: "running_total"},
		"With an ORDER BY in the frame, SUM accumulates from the start of the partition to the current row. NULL salaries add nothing and the total carries past them unchanged.")
}

func departmentAverage() (*Walkthrough, error) {
	return windowWalkthrough("dept-average", "A partition aggregate broadcast to every row",
		[]string{
			"SELECT name, department_id, salary,",
			"  AVG(salary) OVER (",
			"    PARTITION BY department_id) AS avg_salary",
			"FROM staff;",
		}, []int{2, 3},
		dataset.MustLoad("staff"),
		eval.WindowDescriptor{Kind: eval.WindowAvgOver, PartitionBy: "department_id", ValueColumn: "salary"},
		"Without an ORDER BY, the whole partition is one frame: every row of a department carries the same department average, and unlike GROUP BY no rows collapse.")
}

func windowWalkthrough(name, title string, sql []string, highlight []int, rel *types.Relation, d eval.WindowDescriptor, intro string) (*Walkthrough, error) {
	rows, err := eval.Window(rel, d)
	if err != nil {
		return nil, err
	}
	out := d.OutputColumn()

	steps := []playback.Step{queryStep(sql, intro)}
	for i, row := range rows {
		steps = append(steps, playback.Step{
			Index:            i + 1,
			Title:            fmt.Sprintf("Row %d", i+1),
			HighlightedLines: highlight,
			Explanation:      windowRowExplanation(row, d, out),
		})
	}
	steps = append(steps, summaryStep(len(steps),
		fmt.Sprintf("All %s kept, each gaining a computed %s column.", plural(len(rows), "input row"), out)))

	columns := append(append([]string{}, rel.Columns...), out)
	return &Walkthrough{
		Name:    name,
		Title:   title,
		SQL:     sql,
		Columns: columns,
		Rows:    rows,
		Steps:   steps,
	}, nil
}

func windowRowExplanation(row types.Row, d eval.WindowDescriptor, out string) string {
	var context []string
	if d.PartitionBy != "" {
		context = append(context, fmt.Sprintf("%s=%s", d.PartitionBy, types.FormatValue(row[d.PartitionBy])))
	}
	if d.OrderBy != "" && d.OrderBy != d.PartitionBy {
		context = append(context, fmt.Sprintf("%s=%s", d.OrderBy, types.FormatValue(row[d.OrderBy])))
	}

	label := rowLabel(row)
	value := types.FormatValue(row[out])
	if len(context) == 0 {
		return fmt.Sprintf("%s gets %s=%s.", label, out, value)
	}
	return fmt.Sprintf("%s (%s) gets %s=%s.", label, strings.Join(context, ", "), out, value)
}
