package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqlstage/sqlstage/internal/scenario"
)

var showCmd = &cobra.Command{
	Use:   "show <scenario>",
	Short: "Print a scenario's query and its evaluated result table",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	if _, err := resolveSettings(cmd); err != nil {
		return err
	}

	w, err := scenario.Build(args[0])
	if err != nil {
		return err
	}

	fmt.Println(w.Title)
	fmt.Println()
	renderSQL(os.Stdout, w.SQL, nil)
	fmt.Println()
	renderTable(os.Stdout, w.Columns, w.Rows)
	fmt.Printf("\n(%d rows, %d playback steps)\n", len(w.Rows), len(w.Steps))
	return nil
}
