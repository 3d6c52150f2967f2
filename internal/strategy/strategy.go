// Package strategy 实现选择点的遍历策略
package strategy

import (
	"gsymbex/internal/choice"
)

// Strategy holds the open choice points of the active path.
type Strategy interface {
	Size() int
	HasNext() bool
	Top() (choice.ChoicePoint, error)
	Pop() (choice.ChoicePoint, error)
	Push(...choice.ChoicePoint) error
	Elements() []choice.ChoicePoint
}
