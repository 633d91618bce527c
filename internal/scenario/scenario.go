// Package scenario is the walkthrough catalog: each scenario pairs a fixture
// relation with one evaluator descriptor and a SQL rendering, evaluates it,
// and narrates the result as a step sequence for the playback engine. It
// replaces the pile of per-widget walkthrough definitions with one catalog
// keyed by name.
package scenario

import (
	"fmt"
	"sort"

	"github.com/sqlstage/sqlstage/internal/playback"
	"github.com/sqlstage/sqlstage/internal/types"
)

// Walkthrough is an evaluated scenario: the SQL it displays, the computed
// result table, and the steps that narrate how the result came to be. Step
// highlight line numbers are 1-based indexes into SQL.
type Walkthrough struct {
	Name    string
	Title   string
	SQL     []string
	Columns []string
	Rows    []types.Row
	Steps   []playback.Step
}

type builder func() (*Walkthrough, error)

var catalog = map[string]builder{
	"inner-join":          innerJoin,
	"left-join":           leftJoin,
	"right-join":          rightJoin,
	"full-join":           fullJoin,
	"cross-join":          crossJoin,
	"self-join":           selfJoin,
	"row-number":          rowNumber,
	"rank":                rankWindow,
	"dense-rank":          denseRankWindow,
	"lag":                 lagWindow,
	"lead":                leadWindow,
	"running-total":       runningTotal,
	"dept-average":        departmentAverage,
	"scalar-subquery":     scalarSubquery,
	"column-subquery":     columnSubquery,
	"row-subquery":        rowSubquery,
	"table-subquery":      tableSubquery,
	"correlated-subquery": correlatedSubquery,
}

// Names lists the catalog, sorted.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build evaluates the named scenario.
func Build(name string) (*Walkthrough, error) {
	build, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q (run list to see the catalog)", name)
	}
	return build()
}

// queryStep opens every walkthrough: the whole query highlighted, with an
// introduction of what the operation does.
func queryStep(sql []string, intro string) playback.Step {
	lines := make([]int, len(sql))
	for i := range lines {
		lines[i] = i + 1
	}
	return playback.Step{
		Index:            0,
		Title:            "The query",
		HighlightedLines: lines,
		Explanation:      intro,
	}
}

// summaryStep closes a walkthrough.
func summaryStep(index int, text string) playback.Step {
	return playback.Step{
		Index:       index,
		Title:       "Result",
		Explanation: text,
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
