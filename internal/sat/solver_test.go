package sat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	c "gsymbex/internal/constraint"
	"gsymbex/internal/core"
	"gsymbex/internal/solver"
)

var (
	p = c.NewVariable("p", c.Boolean)
	q = c.NewVariable("q", c.Boolean)
)

func Test_CheckSat(t *testing.T) {
	s := NewSolver()
	require.NoError(t, s.Assert(c.Or(p, q)))
	require.NoError(t, s.Assert(c.Negate(p)))

	status, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, solver.Sat, status)

	model, err := s.Model()
	require.NoError(t, err)
	assert.False(t, model["p"].Bool())
	assert.True(t, model["q"].Bool())
}

func Test_ScopedAssertions(t *testing.T) {
	ctx := context.Background()
	s := NewSolver()
	require.NoError(t, s.Assert(p))

	require.NoError(t, s.Push())
	require.NoError(t, s.Assert(c.Negate(p)))
	status, err := s.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, solver.Unsat, status)
	_, err = s.Model()
	assert.Error(t, err)

	require.NoError(t, s.Pop())
	status, err = s.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, solver.Sat, status)

	assert.Error(t, s.Pop())
}

func Test_BooleanEquality(t *testing.T) {
	ctx := context.Background()
	s := NewSolver()
	require.NoError(t, s.Assert(c.Eq(p, q)))
	require.NoError(t, s.Assert(p))
	status, err := s.Check(ctx)
	require.NoError(t, err)
	require.Equal(t, solver.Sat, status)
	model, _ := s.Model()
	assert.True(t, model["q"].Bool())

	require.NoError(t, s.Assert(c.Ne(p, q)))
	status, err = s.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, solver.Unsat, status)
}

func Test_UnusedVariableHasModel(t *testing.T) {
	s := NewSolver()
	require.NoError(t, s.Assert(c.Or(p, c.Negate(p))))
	status, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, solver.Sat, status)
	model, err := s.Model()
	require.NoError(t, err)
	assert.Contains(t, model, "p")
}

func Test_ArithmeticIsNotModeled(t *testing.T) {
	s := NewSolver()
	x := c.NewVariable("x", c.Int)
	err := s.Assert(c.Gt(x, c.IntConstant(0)))
	assert.ErrorIs(t, err, core.ErrCannotModel)
}

func Test_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewSolver(WithTimeout(time.Second))
	require.NoError(t, s.Assert(p))
	status, err := s.Check(ctx)
	assert.Equal(t, solver.Unknown, status)
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_ManagerOverGini(t *testing.T) {
	ctx := context.Background()
	m := solver.NewManager(NewSolver())
	require.NoError(t, m.AddConstraint(c.Or(p, q)))
	require.NoError(t, m.AddConstraint(c.Negate(q)))
	solution, err := m.GetSolution(ctx)
	require.NoError(t, err)
	v, ok := solution.Value("p")
	require.True(t, ok)
	assert.True(t, v.Bool())

	require.NoError(t, m.AddConstraint(c.Negate(p)))
	ok, err = m.HasSolution(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
