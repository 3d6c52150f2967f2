package module

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"gsymbex/internal/report"
	"gsymbex/internal/search"
)

// unorderedChoice is the alternative name of a comparison fixed by a NaN operand.
const unorderedChoice = ":unordered"

// UnorderedCompare reports completed paths that took a floating comparison
// with a NaN operand.
type UnorderedCompare struct {
	*BaseModule
}

func NewUnorderedCompare() *UnorderedCompare {
	return &UnorderedCompare{
		BaseModule: &BaseModule{
			issueData:  IssueDataMap["FP-200"],
			entryPoint: CallbackEntryPoint,
			postHooks:  []string{search.EndReturn.String(), search.EndException.String()},
			Issues:     make([]*report.Issue, 0),
		},
	}
}

func (uc *UnorderedCompare) Execute(path *search.Path) (issues []*report.Issue, err error) {
	log.Debug("Entering UnorderedCompare")
	defer log.Debug("Exiting UnorderedCompare")

	defer func() {
		uc.Issues = append(uc.Issues, issues...)
	}()

	for _, c := range path.Choices {
		if strings.HasSuffix(c, unorderedChoice) {
			return []*report.Issue{uc.newIssue(uc.issueData, path)}, nil
		}
	}
	return nil, nil
}
