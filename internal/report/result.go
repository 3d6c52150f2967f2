package report

import (
	"fmt"
	"io"
	"strings"

	"gsymbex/internal/search"
)

// WriteResult prints one line per path followed by a summary.
func WriteResult(w io.Writer, method string, result *search.Result) error {
	for _, p := range result.Paths {
		line := fmt.Sprintf("path %-4d %-11s", p.ID, p.End.Kind)
		switch {
		case p.End.Value != nil:
			line += fmt.Sprintf(" value=%v", p.End.Value)
		case p.End.Detail != "":
			line += " " + p.End.Detail
		}
		if p.Solution != nil {
			line += " inputs=" + p.Solution.String()
		}
		if len(p.Choices) > 0 {
			line += " choices=[" + strings.Join(p.Choices, " ") + "]"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s: %d paths, %d choice points, %d backtracks, %d undecided, %d solver queries, stopped: %s, took %s\n",
		method, len(result.Paths), result.Opened, result.Backtracks, result.Undecided, result.Queries, result.Stop, result.Duration)
	return err
}
