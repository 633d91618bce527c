package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqlstage/sqlstage/internal/dataset"
	"github.com/sqlstage/sqlstage/internal/scenario"
)

var listFixtures bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the walkthrough scenarios",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listFixtures, "fixtures", false, "List the embedded fixture relations instead")
}

func runList(cmd *cobra.Command, args []string) error {
	if _, err := resolveSettings(cmd); err != nil {
		return err
	}

	if listFixtures {
		for _, name := range dataset.Names() {
			rel, err := dataset.Load(name)
			if err != nil {
				return err
			}
			fmt.Printf("%-14s %2d rows  (%s)\n", name, rel.Len(), strings.Join(rel.Columns, ", "))
		}
		return nil
	}

	for _, name := range scenario.Names() {
		w, err := scenario.Build(name)
		if err != nil {
			return err
		}
		fmt.Printf("%-22s %s\n", name, w.Title)
	}
	return nil
}
