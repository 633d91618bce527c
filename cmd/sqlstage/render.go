package main

import (
	"fmt"
	"io"

	"github.com/sqlstage/sqlstage/internal/playback"
	"github.com/sqlstage/sqlstage/internal/types"
)

// renderTable prints rows as an aligned text table in the given column order,
// each column as wide as its longest value, NULL spelled out.
func renderTable(w io.Writer, columns []string, rows []types.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "Empty result set")
		return
	}

	widths := make(map[string]int, len(columns))
	for _, col := range columns {
		widths[col] = len(col)
	}
	for _, row := range rows {
		for _, col := range columns {
			if n := len(types.FormatValue(row[col])); n > widths[col] {
				widths[col] = n
			}
		}
	}

	for i, col := range columns {
		if i > 0 {
			fmt.Fprint(w, " | ")
		}
		fmt.Fprintf(w, "%-*s", widths[col], col)
	}
	fmt.Fprintln(w)

	for i, col := range columns {
		if i > 0 {
			fmt.Fprint(w, "-+-")
		}
		for j := 0; j < widths[col]; j++ {
			fmt.Fprint(w, "-")
		}
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, col := range columns {
			if i > 0 {
				fmt.Fprint(w, " | ")
			}
			fmt.Fprintf(w, "%-*s", widths[col], types.FormatValue(row[col]))
		}
		fmt.Fprintln(w)
	}
}

// renderSQL prints the query with line numbers, marking highlighted lines
// (1-based) with an arrow.
func renderSQL(w io.Writer, sql []string, highlighted []int) {
	marked := make(map[int]bool, len(highlighted))
	for _, n := range highlighted {
		marked[n] = true
	}
	for i, line := range sql {
		marker := "  "
		if marked[i+1] {
			marker = "=>"
		}
		fmt.Fprintf(w, "%s %2d | %s\n", marker, i+1, line)
	}
}

// renderStep prints one playback step: position, phase, the query with the
// step's highlights, and the narration.
func renderStep(w io.Writer, sql []string, total int, st playback.State, step playback.Step) {
	fmt.Fprintf(w, "\nStep %d/%d - %s [%s]\n", step.Index+1, total, step.Title, st.Phase)
	if len(step.HighlightedLines) > 0 {
		renderSQL(w, sql, step.HighlightedLines)
	}
	fmt.Fprintln(w, step.Explanation)
}
