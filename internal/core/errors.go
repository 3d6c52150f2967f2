// Package core holds the error kinds shared by the search packages.
package core

import (
	"github.com/pkg/errors"
)

var (
	// ErrIllegalState marks a choice point or solver protocol violation.
	ErrIllegalState = errors.New("illegal state")
	// ErrCannotModel marks a construct with no symbolic representation.
	ErrCannotModel = errors.New("cannot model")
	// ErrIndecision marks a solver verdict that is neither sat nor unsat.
	ErrIndecision = errors.New("solver indecision")
	// ErrInconsistent marks exhaustive alternatives that were all refuted.
	ErrInconsistent = errors.New("inconsistent alternatives")
)

// IsRecoverable reports whether the search may skip the failing branch and go on.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrCannotModel) || errors.Is(err, ErrIndecision)
}
