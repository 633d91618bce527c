package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqlstage/sqlstage/internal/dataset"
	"github.com/sqlstage/sqlstage/internal/eval"
	"github.com/sqlstage/sqlstage/internal/types"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run the evaluator directly against fixture relations",
}

var evalJoinFlags struct {
	kind     string
	left     string
	right    string
	leftKey  string
	rightKey string
	tieBreak string
}

var evalJoinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join two fixtures and print the combined rows",
	RunE:  runEvalJoin,
}

var evalWindowFlags struct {
	kind        string
	relation    string
	partitionBy string
	orderBy     string
	desc        bool
	value       string
	offset      int
	cumulative  bool
	as          string
}

var evalWindowCmd = &cobra.Command{
	Use:   "window",
	Short: "Apply a window function to a fixture and print the augmented rows",
	RunE:  runEvalWindow,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.AddCommand(evalJoinCmd, evalWindowCmd)

	evalJoinCmd.Flags().StringVar(&evalJoinFlags.kind, "kind", "inner", "Join kind (inner, left, right, full, cross, self)")
	evalJoinCmd.Flags().StringVar(&evalJoinFlags.left, "left", "employees", "Left fixture")
	evalJoinCmd.Flags().StringVar(&evalJoinFlags.right, "right", "departments", "Right fixture (ignored for self joins)")
	evalJoinCmd.Flags().StringVar(&evalJoinFlags.leftKey, "left-key", "department_id", "Join key on the left relation")
	evalJoinCmd.Flags().StringVar(&evalJoinFlags.rightKey, "right-key", "id", "Join key on the right relation")
	evalJoinCmd.Flags().StringVar(&evalJoinFlags.tieBreak, "tie-break", "", "Ordering column for self joins (defaults to id)")

	evalWindowCmd.Flags().StringVar(&evalWindowFlags.kind, "kind", "row_number", "Window kind (row_number, rank, dense_rank, lag, lead, sum_over, avg_over)")
	evalWindowCmd.Flags().StringVar(&evalWindowFlags.relation, "relation", "staff", "Fixture to evaluate over")
	evalWindowCmd.Flags().StringVar(&evalWindowFlags.partitionBy, "partition-by", "", "Partition column (empty means one partition)")
	evalWindowCmd.Flags().StringVar(&evalWindowFlags.orderBy, "order-by", "", "Ordering column inside each partition")
	evalWindowCmd.Flags().BoolVar(&evalWindowFlags.desc, "desc", false, "Order descending")
	evalWindowCmd.Flags().StringVar(&evalWindowFlags.value, "value", "", "Value column for lag, lead, sum_over, avg_over")
	evalWindowCmd.Flags().IntVar(&evalWindowFlags.offset, "offset", 0, "Lag or lead distance (defaults to 1)")
	evalWindowCmd.Flags().BoolVar(&evalWindowFlags.cumulative, "cumulative", false, "Running aggregate instead of whole-partition broadcast")
	evalWindowCmd.Flags().StringVar(&evalWindowFlags.as, "as", "", "Name for the computed column")
}

func runEvalJoin(cmd *cobra.Command, args []string) error {
	if _, err := resolveSettings(cmd); err != nil {
		return err
	}

	left, err := dataset.Load(evalJoinFlags.left)
	if err != nil {
		return err
	}
	rightName := evalJoinFlags.right
	if eval.JoinKind(evalJoinFlags.kind) == eval.JoinSelf {
		rightName = evalJoinFlags.left
	}
	right, err := dataset.Load(rightName)
	if err != nil {
		return err
	}

	results, err := eval.Join(left, right, eval.JoinDescriptor{
		Kind:     eval.JoinKind(evalJoinFlags.kind),
		LeftKey:  evalJoinFlags.leftKey,
		RightKey: evalJoinFlags.rightKey,
		TieBreak: evalJoinFlags.tieBreak,
	})
	if err != nil {
		return err
	}

	rows := make([]types.Row, len(results))
	matched := 0
	for i, r := range results {
		rows[i] = r.Combined(left, right)
		if r.Matched {
			matched++
		}
	}
	renderTable(os.Stdout, eval.CombinedColumns(left, right), rows)
	fmt.Printf("\n(%d rows, %d matched)\n", len(results), matched)
	return nil
}

func runEvalWindow(cmd *cobra.Command, args []string) error {
	if _, err := resolveSettings(cmd); err != nil {
		return err
	}

	rel, err := dataset.Load(evalWindowFlags.relation)
	if err != nil {
		return err
	}

	order := eval.Asc
	if evalWindowFlags.desc {
		order = eval.Desc
	}
	d := eval.WindowDescriptor{
		Kind:        eval.WindowKind(evalWindowFlags.kind),
		PartitionBy: evalWindowFlags.partitionBy,
		OrderBy:     evalWindowFlags.orderBy,
		Order:       order,
		Offset:      evalWindowFlags.offset,
		ValueColumn: evalWindowFlags.value,
		Cumulative:  evalWindowFlags.cumulative,
		As:          evalWindowFlags.as,
	}

	rows, err := eval.Window(rel, d)
	if err != nil {
		return err
	}

	columns := append(append([]string(nil), rel.Columns...), d.OutputColumn())
	renderTable(os.Stdout, columns, rows)
	fmt.Printf("\n(%d rows)\n", len(rows))
	return nil
}
