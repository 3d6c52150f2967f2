package strategy

import (
	"github.com/pkg/errors"

	"gsymbex/internal/choice"
)

// ErrEmpty is returned when no choice point is open.
var ErrEmpty = errors.New("choice point stack is empty")

// DFS 深度优先搜索策略
type DFS struct {
	points []choice.ChoicePoint
}

func NewDFS() *DFS {
	return &DFS{
		points: make([]choice.ChoicePoint, 0),
	}
}

func (dfs *DFS) Size() int {
	return len(dfs.points)
}

func (dfs *DFS) HasNext() bool {
	return len(dfs.points) > 0
}

// Top returns the innermost open choice point.
func (dfs *DFS) Top() (choice.ChoicePoint, error) {
	if len(dfs.points) <= 0 {
		return nil, ErrEmpty
	}
	return dfs.points[len(dfs.points)-1], nil
}

func (dfs *DFS) Pop() (choice.ChoicePoint, error) {
	if len(dfs.points) <= 0 {
		return nil, ErrEmpty
	}
	cp := dfs.points[len(dfs.points)-1]
	dfs.points[len(dfs.points)-1] = nil
	dfs.points = dfs.points[:len(dfs.points)-1]
	return cp, nil
}

func (dfs *DFS) Push(points ...choice.ChoicePoint) error {
	for _, cp := range points {
		if cp == nil {
			return errors.New("push of nil choice point")
		}
	}
	dfs.points = append(dfs.points, points...)
	return nil
}

// Elements returns the open choice points, outermost first.
func (dfs *DFS) Elements() []choice.ChoicePoint {
	result := make([]choice.ChoicePoint, len(dfs.points))
	copy(result, dfs.points)
	return result
}

// Clear drops every open choice point.
func (dfs *DFS) Clear() {
	dfs.points = dfs.points[:0]
}
