// Package choice implements choice points: recorded branch decisions whose
// alternatives are offered one at a time to the search driver.
//
// Every choice point follows the same protocol. ChangeToNextChoice prepares
// the next alternative and computes its constraint, ApplyStateChanges
// commits it to the interpreter state while recording each write on the
// Trail, and Backtrack undoes the Trail and makes the choice point ready for
// its next alternative.
package choice

import (
	"fmt"

	"gsymbex/internal/constraint"
	"gsymbex/internal/interp"
	"gsymbex/internal/solver"
	"gsymbex/internal/trail"
)

type ChoicePoint interface {
	ID() int
	// Parent is the enclosing open choice point, for diagnostics only.
	Parent() ChoicePoint
	Location() Location
	Kind() Kind
	// Total is the number of alternatives, fixed at construction.
	Total() int
	// Step is the number of alternatives prepared so far.
	Step() int
	Phase() Phase

	HasAnotherChoice() bool
	ChangeToNextChoice() error
	ApplyStateChanges() error
	// ConstraintExpression is the condition of the prepared alternative,
	// nil when it carries none.
	ConstraintExpression() constraint.Expression
	// Alternative names the prepared alternative.
	Alternative() string

	Trail() *trail.Trail
	Backtrack() error

	// RecordOutcome stores the feasibility verdict of the prepared alternative.
	RecordOutcome(status solver.Status)
	// Verify reports an inconsistency once all alternatives are tried.
	Verify() error
}

// Location is the interpreter position a choice point was created at.
type Location struct {
	Frame interp.Frame
	PC    int
}

func (l Location) Method() string {
	if l.Frame == nil {
		return ""
	}
	return l.Frame.Method()
}

// Key identifies the program point independent of the frame instance.
func (l Location) Key() string {
	return locationKey(l.Method(), l.PC)
}

func locationKey(method string, pc int) string {
	return fmt.Sprintf("%s@%d", method, pc)
}

func (l Location) String() string {
	return l.Key()
}

type Kind int

const (
	KindBranch Kind = iota
	KindSwitch
	KindLongCompare
	KindFloatCompare
	KindArithmeticGuard
	KindArrayInitialization
)

var kindNames = [...]string{
	KindBranch:              "branch",
	KindSwitch:              "switch",
	KindLongCompare:         "long_compare",
	KindFloatCompare:        "float_compare",
	KindArithmeticGuard:     "arithmetic_guard",
	KindArrayInitialization: "array_initialization",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Kinds lists every choice point kind.
func Kinds() []Kind {
	return []Kind{KindBranch, KindSwitch, KindLongCompare, KindFloatCompare, KindArithmeticGuard, KindArrayInitialization}
}

// Phase is the protocol state of a choice point.
//
//	Idle --ChangeToNextChoice--> Prepared --ApplyStateChanges--> Applied
//	Prepared, Applied --Backtrack--> Idle
type Phase int

const (
	Idle Phase = iota
	Prepared
	Applied
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Prepared:
		return "prepared"
	case Applied:
		return "applied"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

var (
	_ ChoicePoint = (*Branch)(nil)
	_ ChoicePoint = (*Switch)(nil)
	_ ChoicePoint = (*Compare)(nil)
	_ ChoicePoint = (*ArithmeticGuard)(nil)
	_ ChoicePoint = (*ArrayInitialization)(nil)
)
