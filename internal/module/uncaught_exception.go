package module

import (
	log "github.com/sirupsen/logrus"

	"gsymbex/internal/report"
	"gsymbex/internal/search"
)

// UncaughtException reports every exception class escaping the method,
// once per class, with the inputs of the first path that raised it.
type UncaughtException struct {
	*BaseModule
	seen map[string]bool
}

func NewUncaughtException() *UncaughtException {
	return &UncaughtException{
		BaseModule: &BaseModule{
			issueData:  IssueDataMap["EX-100"],
			entryPoint: CallbackEntryPoint,
			postHooks:  []string{search.EndException.String()},
			Issues:     make([]*report.Issue, 0),
		},
		seen: make(map[string]bool),
	}
}

func (ue *UncaughtException) Execute(path *search.Path) (issues []*report.Issue, err error) {
	log.Debug("Entering UncaughtException")
	defer log.Debug("Exiting UncaughtException")

	defer func() {
		ue.Issues = append(ue.Issues, issues...)
	}()

	exception := path.End.Detail
	if ue.seen[exception] {
		return nil, nil
	}
	ue.seen[exception] = true

	data := ue.issueData
	if id, ok := exceptionIssues[exception]; ok {
		data = IssueDataMap[id]
	}
	is := ue.newIssue(data, path)
	if data == ue.issueData {
		is.Description = exception + ": " + is.Description
	}
	return []*report.Issue{is}, nil
}
