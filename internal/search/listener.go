package search

import (
	"gsymbex/internal/choice"
)

// Listener observes a search. Callbacks run on the search goroutine.
type Listener interface {
	OnOpen(cp choice.ChoicePoint)
	OnApply(cp choice.ChoicePoint)
	OnBacktrack(cp choice.ChoicePoint)
	OnPathEnd(p *Path)
}

// BaseListener ignores every event; embed it to observe only some.
type BaseListener struct{}

func (BaseListener) OnOpen(choice.ChoicePoint)      {}
func (BaseListener) OnApply(choice.ChoicePoint)     {}
func (BaseListener) OnBacktrack(choice.ChoicePoint) {}
func (BaseListener) OnPathEnd(*Path)                {}
