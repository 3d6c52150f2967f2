package choice

import (
	"fmt"
	"strings"

	"gsymbex/internal/constraint"
	"gsymbex/internal/core"
)

// ProtocolError is a call that violates the phase order.
type ProtocolError struct {
	ID       int
	Location Location
	Op       string
	Phase    Phase
	Step     int
	Total    int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("choice point %d at %s: %s in phase %s (step %d of %d): %s",
		e.ID, e.Location, e.Op, e.Phase, e.Step, e.Total, core.ErrIllegalState)
}

func (e *ProtocolError) Unwrap() error {
	return core.ErrIllegalState
}

// ModelingError is raised when a choice point cannot be built symbolically.
type ModelingError struct {
	Location Location
	Reason   string
}

func (e *ModelingError) Error() string {
	return fmt.Sprintf("%s at %s: %s", core.ErrCannotModel, e.Location, e.Reason)
}

func (e *ModelingError) Unwrap() error {
	return core.ErrCannotModel
}

// InconsistencyError is raised when exhaustive alternatives were all refuted.
type InconsistencyError struct {
	ID       int
	Location Location
	Left     constraint.Term
	Right    constraint.Term
	// Layers holds the active constraints, filled in by the driver.
	Layers []constraint.Expression
}

func (e *InconsistencyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "choice point %d at %s: %s: no ordering of %s and %s is satisfiable",
		e.ID, e.Location, core.ErrInconsistent, e.Left, e.Right)
	for i, layer := range e.Layers {
		fmt.Fprintf(&b, "\n  layer %d: %s", i+1, layer)
	}
	return b.String()
}

func (e *InconsistencyError) Unwrap() error {
	return core.ErrInconsistent
}
