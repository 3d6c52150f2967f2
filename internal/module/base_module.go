package module

import (
	"gsymbex/internal/report"
	"gsymbex/internal/search"
)

const (
	PostEntryPoint     = 0 // 搜索结束之后，再判断和取issue
	CallbackEntryPoint = 1
)

type BaseModule struct {
	issueData  *IssueData // 检测项信息
	entryPoint int        // issue获取入口
	postHooks  []string   // 在这些路径结束类型之后，执行本模块的hook
	Issues     []*report.Issue
}

func (bm *BaseModule) Execute(path *search.Path) ([]*report.Issue, error) {
	return nil, nil
}

func (bm *BaseModule) GetPostHooks() []string {
	return bm.postHooks
}

func (bm *BaseModule) GetEntryPoint() int {
	return bm.entryPoint
}

func (bm *BaseModule) GetIssueData() *IssueData {
	return bm.issueData
}

func (bm *BaseModule) GetIssues() []*report.Issue {
	return bm.Issues
}

func (bm *BaseModule) newIssue(data *IssueData, path *search.Path) *report.Issue {
	return &report.Issue{
		ID:          data.ID,
		Title:       data.Title,
		Description: data.Description,
		Path:        path.ID,
		Choices:     path.Choices,
		Inputs:      path.Solution,
	}
}

type DetectionModule interface {
	Execute(*search.Path) ([]*report.Issue, error)
	GetPostHooks() []string
	GetEntryPoint() int
	GetIssueData() *IssueData
	GetIssues() []*report.Issue
}
