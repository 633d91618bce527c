// Command sqlstage steps through relational query walkthroughs in the
// terminal: joins, window functions and subqueries evaluated over small
// fixture tables, narrated one step at a time by the playback engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sqlstage",
	Short: "Stepped playback of relational query walkthroughs",
	Long: `sqlstage animates how relational query results come to be. Each scenario
pairs a fixture table with one evaluated operation (a join, a window
function, or a subquery) and narrates the result row by row.

Playback pacing and logging come from flags, SQLSTAGE_* environment
variables, or a .env file, in that order of precedence.`,
	SilenceUsage: true,
}

var rootLogLevel string

func init() {
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Log level (debug, info, warning, error, none)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
