package solver_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	c "gsymbex/internal/constraint"
	"gsymbex/internal/core"
	"gsymbex/internal/solver"
	"gsymbex/internal/solver/solvertest"
)

var (
	x = c.NewVariable("x", c.Int)
	y = c.NewVariable("y", c.Int)
)

func Test_LevelParity(t *testing.T) {
	backend := solvertest.NewBrute()
	m := solver.NewManager(backend)
	ops := []bool{true, true, false, true, false, false, true, false}
	for i, add := range ops {
		if add {
			require.NoError(t, m.AddConstraint(c.Gt(x, c.IntConstant(int32(i)))))
		} else {
			require.NoError(t, m.RemoveConstraint())
		}
		assert.Equal(t, m.Level(), m.Stack().Depth())
		assert.Equal(t, m.Level(), backend.Depth())
	}
	assert.Equal(t, 0, m.Level())
}

func Test_RemoveAtLevelZero(t *testing.T) {
	m := solver.NewManager(solvertest.NewBrute())
	err := m.RemoveConstraint()
	var perr *solver.ProtocolError
	assert.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, core.ErrIllegalState)
	assert.Equal(t, 0, m.Level())
}

func Test_RemoveKeepsLevelWhenPopFails(t *testing.T) {
	backend := &solvertest.Fixed{Status: solver.Sat}
	m := solver.NewManager(backend)
	require.NoError(t, m.AddConstraint(c.Gt(x, c.IntConstant(0))))

	backend.PopErr = errors.New("scope stack corrupted")
	err := m.RemoveConstraint()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scope stack corrupted")
	assert.Equal(t, 1, m.Level())
	assert.Equal(t, 1, m.Stack().Depth())
	assert.Equal(t, 1, backend.Depth())

	backend.PopErr = nil
	require.NoError(t, m.RemoveConstraint())
	assert.Equal(t, 0, m.Level())
	assert.Equal(t, 0, backend.Depth())
}

func Test_HasSolutionAtLevelZero(t *testing.T) {
	backend := solvertest.NewBrute()
	m := solver.NewManager(backend)
	ok, err := m.HasSolution(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, m.Level())
	assert.Equal(t, 0, backend.Checks())

	solution, err := m.GetSolution(context.Background())
	assert.NoError(t, err)
	assert.False(t, solution.IsNoSolution())
	assert.Equal(t, 0, solution.Len())
}

func Test_HasSolutionKeepsLevel(t *testing.T) {
	m := solver.NewManager(solvertest.NewBrute())
	require.NoError(t, m.AddConstraint(c.Gt(x, c.IntConstant(2))))
	ok, err := m.HasSolution(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, m.Level())
}

func Test_SolutionIsCached(t *testing.T) {
	ctx := context.Background()
	backend := solvertest.NewBrute()
	m := solver.NewManager(backend)
	require.NoError(t, m.AddConstraint(c.Gt(x, c.IntConstant(5))))

	first, err := m.GetSolution(ctx)
	require.NoError(t, err)
	require.False(t, first.IsNoSolution())
	v, ok := first.Value("x")
	require.True(t, ok)
	assert.Greater(t, v.Int(), int64(5))
	queries := backend.Checks()

	second, err := m.GetSolution(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, queries, backend.Checks())
	assert.Equal(t, queries, m.Queries())

	ok, err = m.HasSolution(ctx)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, queries, backend.Checks())
}

func Test_RefutedLayerShortCircuits(t *testing.T) {
	ctx := context.Background()
	backend := solvertest.NewBrute()
	m := solver.NewManager(backend)
	require.NoError(t, m.AddConstraint(c.Gt(x, c.IntConstant(5))))
	require.NoError(t, m.AddConstraint(c.Lt(x, c.IntConstant(3))))

	ok, err := m.HasSolution(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	checks := backend.Checks()

	require.NoError(t, m.AddConstraint(c.Eq(y, c.IntConstant(1))))
	solution, err := m.GetSolution(ctx)
	require.NoError(t, err)
	assert.True(t, solution.IsNoSolution())
	ok, err = m.HasSolution(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, checks, backend.Checks())

	// popping the refuted layer makes the path satisfiable again
	require.NoError(t, m.RemoveConstraint())
	require.NoError(t, m.RemoveConstraint())
	ok, err = m.HasSolution(ctx)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func Test_SolutionEnumeratesSystems(t *testing.T) {
	ctx := context.Background()
	backend := solvertest.NewBrute()
	m := solver.NewManager(backend)
	expr := c.And(c.Or(c.Lt(x, c.IntConstant(-5)), c.Gt(x, c.IntConstant(5))), c.Gt(x, c.IntConstant(0)))
	require.NoError(t, m.AddConstraint(expr))

	solution, err := m.GetSolution(ctx)
	require.NoError(t, err)
	v, _ := solution.Value("x")
	assert.Greater(t, v.Int(), int64(5))
	assert.Equal(t, 2, backend.Checks(), "first system refuted, second solved")
}

func Test_SolutionHidesAuxiliaries(t *testing.T) {
	m := solver.NewManager(solvertest.NewBrute())
	require.NoError(t, m.AddConstraint(c.Eq(c.Div(x, c.IntConstant(2)), c.IntConstant(3))))
	solution, err := m.GetSolution(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, solution.Names())
	v, _ := solution.Value("x")
	assert.Contains(t, []int64{6, 7}, v.Int())
}

func Test_UnknownIsNotUnsat(t *testing.T) {
	ctx := context.Background()
	m := solver.NewManager(&solvertest.Fixed{Status: solver.Unknown})
	require.NoError(t, m.AddConstraint(c.Gt(x, c.IntConstant(0))))

	status, err := m.Satisfiability(ctx)
	assert.NoError(t, err)
	assert.Equal(t, solver.Unknown, status)

	ok, err := m.HasSolution(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, core.ErrIndecision)
	assert.True(t, core.IsRecoverable(err))

	_, err = m.GetSolution(ctx)
	assert.ErrorIs(t, err, core.ErrIndecision)
}

func Test_NonLinearConstraintIsUnknown(t *testing.T) {
	ctx := context.Background()
	m := solver.NewManager(solvertest.NewBrute())
	require.NoError(t, m.AddConstraint(c.Gt(c.Mul(x, y), c.IntConstant(0))))
	assert.Equal(t, 1, m.Level())

	ok, err := m.HasSolution(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, core.ErrIndecision)
	assert.ErrorIs(t, err, core.ErrCannotModel)

	// a refutation of the remaining layers still counts
	require.NoError(t, m.AddConstraint(c.False))
	ok, err = m.HasSolution(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func Test_BackendCannotModel(t *testing.T) {
	m := solver.NewManager(&solvertest.Fixed{Status: solver.Sat, AssertErr: core.ErrCannotModel})
	require.NoError(t, m.AddConstraint(c.Gt(x, c.IntConstant(0))))
	_, err := m.HasSolution(context.Background())
	assert.ErrorIs(t, err, core.ErrCannotModel)
}

func Test_EmptyLayerInheritsVerdict(t *testing.T) {
	ctx := context.Background()
	backend := solvertest.NewBrute()
	m := solver.NewManager(backend)

	require.NoError(t, m.AddConstraint(nil))
	ok, err := m.HasSolution(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, backend.Checks())

	require.NoError(t, m.AddConstraint(c.Gt(x, c.IntConstant(1))))
	ok, err = m.HasSolution(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, m.AddConstraint(nil))
	ok, err = m.HasSolution(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, backend.Checks())
	assert.Equal(t, 3, m.Level())
}

func Test_CancelledCheck(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := solver.NewManager(solvertest.NewBrute())
	require.NoError(t, m.AddConstraint(c.Gt(x, c.IntConstant(1))))
	_, err := m.HasSolution(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_Reset(t *testing.T) {
	backend := solvertest.NewBrute()
	m := solver.NewManager(backend)
	for i := 0; i < 3; i++ {
		require.NoError(t, m.AddConstraint(c.Gt(x, c.IntConstant(int32(i)))))
	}
	require.NoError(t, m.Reset())
	assert.Equal(t, 0, m.Level())
	assert.Equal(t, 0, backend.Depth())
	assert.NotEmpty(t, m.ID())
}
