// Package report renders search results and the issues found on explored paths.
package report

import (
	"fmt"
	"strings"

	"gsymbex/internal/solver"
)

// Issue is a finding on one explored path.
type Issue struct {
	ID          string
	Title       string
	Description string

	Method string
	// Path is the id of the path the issue was found on.
	Path    int
	Choices []string
	Inputs  *solver.Solution
}

func (is *Issue) String() string {
	description := fmt.Sprintf("ID: %s\nTitle: %s\nDescription: %s\n\n",
		is.ID, is.Title, is.Description)
	description = Colour(31, description)

	inputs := "unknown"
	if is.Inputs != nil {
		inputs = is.Inputs.String()
	}
	pathInfo := fmt.Sprintf("In method: %s, path %d\nChoices: %s\nInputs: %s\n",
		is.Method, is.Path, strings.Join(is.Choices, " "), inputs)
	pathInfo = Colour(33, pathInfo)

	return fmt.Sprintf("%s%s", description, pathInfo)
}

func Colour(color int, str string) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", color, str)
}
