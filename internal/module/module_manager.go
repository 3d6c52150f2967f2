package module

import (
	log "github.com/sirupsen/logrus"

	"gsymbex/internal/report"
	"gsymbex/internal/search"
)

type Hook func(*search.Path) ([]*report.Issue, error)

// ModuleManager runs detection modules as paths end. It is a search
// listener and runs on the search goroutine.
type ModuleManager struct {
	search.BaseListener
	method          string
	PostModules     []DetectionModule
	CallbackModules []DetectionModule
	PostHooks       map[string][]Hook
	logger          *log.Entry
}

func NewModuleManager(method string) *ModuleManager {
	return &ModuleManager{
		method:          method,
		PostModules:     make([]DetectionModule, 0),
		CallbackModules: make([]DetectionModule, 0),
		PostHooks:       make(map[string][]Hook),
		logger:          log.WithField("method", method),
	}
}

func (mm *ModuleManager) AddModule(dm DetectionModule) {
	if dm.GetEntryPoint() == PostEntryPoint {
		mm.PostModules = append(mm.PostModules, dm)
	} else if dm.GetEntryPoint() == CallbackEntryPoint {
		mm.CallbackModules = append(mm.CallbackModules, dm)
	}
	for _, end := range dm.GetPostHooks() {
		mm.PostHooks[end] = append(mm.PostHooks[end], dm.Execute)
	}
}

// OnPathEnd runs the hooks registered for the way the path ended.
func (mm *ModuleManager) OnPathEnd(path *search.Path) {
	for _, hook := range mm.PostHooks[path.End.Kind.String()] {
		if _, err := hook(path); err != nil {
			mm.logger.WithField("path", path.ID).Warnf("detection module: %v", err)
		}
	}
}

// RetrieveIssues collects the issues of every module.
func (mm *ModuleManager) RetrieveIssues() []*report.Issue {
	var result []*report.Issue
	for _, modules := range [][]DetectionModule{mm.CallbackModules, mm.PostModules} {
		for _, module := range modules {
			for _, is := range module.GetIssues() {
				is.Method = mm.method
				result = append(result, is)
			}
		}
	}
	return result
}
