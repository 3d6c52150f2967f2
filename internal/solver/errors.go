package solver

import (
	"fmt"

	"gsymbex/internal/core"
)

// ProtocolError reports a misuse of the Manager, such as removing a
// constraint at level zero.
type ProtocolError struct {
	Op    string
	Level int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s at level %d: %s", e.Op, e.Level, core.ErrIllegalState)
}

func (e *ProtocolError) Unwrap() error {
	return core.ErrIllegalState
}

// IndecisionError reports a query the backend could not decide.
type IndecisionError struct {
	Level  int
	Reason string
	Cause  error
}

func (e *IndecisionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s at level %d: %s: %v", core.ErrIndecision, e.Level, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s at level %d: %s", core.ErrIndecision, e.Level, e.Reason)
}

func (e *IndecisionError) Is(target error) bool {
	return target == core.ErrIndecision
}

func (e *IndecisionError) Unwrap() error {
	return e.Cause
}
