package smt

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	c "gsymbex/internal/constraint"
	"gsymbex/internal/core"
	"gsymbex/internal/solver"
)

func Test_CheckLinear(t *testing.T) {
	Init()
	defer Exit()

	x := c.NewVariable("x", c.Int)
	y := c.NewVariable("y", c.Int)
	s := NewSolver()
	defer s.Close()

	require.NoError(t, s.Assert(c.Gt(x, c.IntConstant(3))))
	require.NoError(t, s.Assert(c.Eq(c.Add(x, y), c.IntConstant(10))))
	status, err := s.Check(context.Background())
	require.NoError(t, err)
	require.Equal(t, solver.Sat, status)

	model, err := s.Model()
	require.NoError(t, err)
	assert.Greater(t, model["x"].Int(), int64(3))
	assert.Equal(t, int64(10), model["x"].Int()+model["y"].Int())
}

func Test_PushPop(t *testing.T) {
	Init()
	defer Exit()

	ctx := context.Background()
	x := c.NewVariable("x", c.Long)
	s := NewSolver()
	defer s.Close()

	require.NoError(t, s.Assert(c.Ge(x, c.LongConstant(0))))
	require.NoError(t, s.Push())
	require.NoError(t, s.Assert(c.Lt(x, c.LongConstant(0))))
	status, err := s.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, solver.Unsat, status)

	require.NoError(t, s.Pop())
	status, err = s.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, solver.Sat, status)
	assert.Error(t, s.Pop())
}

func Test_RealsAndBooleans(t *testing.T) {
	Init()
	defer Exit()

	d := c.NewVariable("d", c.Double)
	b := c.NewVariable("b", c.Boolean)
	s := NewSolver()
	defer s.Close()

	require.NoError(t, s.Assert(c.Gt(d, c.DoubleConstant(1.5))))
	require.NoError(t, s.Assert(c.Lt(d, c.DoubleConstant(1.75))))
	require.NoError(t, s.Assert(c.Eq(b, c.True)))
	status, err := s.Check(context.Background())
	require.NoError(t, err)
	require.Equal(t, solver.Sat, status)

	model, err := s.Model()
	require.NoError(t, err)
	assert.Greater(t, model["d"].Float(), 1.5)
	assert.Less(t, model["d"].Float(), 1.75)
	assert.True(t, model["b"].Bool())
}

func Test_InfinityIsNotModeled(t *testing.T) {
	Init()
	defer Exit()

	s := NewSolver()
	defer s.Close()
	d := c.NewVariable("d", c.Double)
	err := s.Assert(c.Lt(d, c.Add(d, c.DoubleConstant(math.Inf(1)))))
	assert.ErrorIs(t, err, core.ErrCannotModel)
}

func Test_ManagerOverYices(t *testing.T) {
	Init()
	defer Exit()

	ctx := context.Background()
	x := c.NewVariable("x", c.Int)
	m := solver.NewManager(NewSolver())
	defer m.Close()

	// x / 3 == 4 && x % 3 == 2
	require.NoError(t, m.AddConstraint(c.Eq(c.Div(x, c.IntConstant(3)), c.IntConstant(4))))
	require.NoError(t, m.AddConstraint(c.Eq(c.Rem(x, c.IntConstant(3)), c.IntConstant(2))))
	solution, err := m.GetSolution(ctx)
	require.NoError(t, err)
	v, ok := solution.Value("x")
	require.True(t, ok)
	assert.Equal(t, int64(14), v.Int())
	assert.Equal(t, []string{"x"}, solution.Names())

	require.NoError(t, m.AddConstraint(c.Gt(x, c.IntConstant(14))))
	ok, err = m.HasSolution(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
