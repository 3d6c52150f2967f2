package solvertest

import (
	"context"

	"github.com/pkg/errors"

	"gsymbex/internal/constraint"
	"gsymbex/internal/solver"
)

// Fixed answers every check with the same status.
type Fixed struct {
	Status solver.Status
	// AssertErr, when set, is returned by every Assert.
	AssertErr error
	// PopErr, when set, is returned by every Pop.
	PopErr error

	depth  int
	checks int
}

func (f *Fixed) Checks() int {
	return f.checks
}

func (f *Fixed) Depth() int {
	return f.depth
}

func (f *Fixed) Push() error {
	f.depth++
	return nil
}

func (f *Fixed) Pop() error {
	if f.PopErr != nil {
		return f.PopErr
	}
	if f.depth == 0 {
		return errors.New("pop without push")
	}
	f.depth--
	return nil
}

func (f *Fixed) Assert(constraint.Expression) error {
	return f.AssertErr
}

func (f *Fixed) Check(ctx context.Context) (solver.Status, error) {
	f.checks++
	return f.Status, ctx.Err()
}

func (f *Fixed) Model() (map[string]*constraint.Constant, error) {
	return map[string]*constraint.Constant{}, nil
}

func (f *Fixed) Close() error {
	return nil
}
