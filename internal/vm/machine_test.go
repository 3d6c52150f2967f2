package vm

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gsymbex/internal/assembler"
	"gsymbex/internal/choice"
	c "gsymbex/internal/constraint"
	"gsymbex/internal/interp"
	"gsymbex/internal/search"
	"gsymbex/internal/smt"
	"gsymbex/internal/solver"
	"gsymbex/internal/solver/solvertest"
)

func load(t *testing.T, name string) *assembler.Program {
	source, err := os.ReadFile("../../testdata/inputs/" + name)
	require.NoError(t, err)
	program, err := assembler.Parse(string(source))
	require.NoError(t, err)
	return program
}

func parse(t *testing.T, source string) *assembler.Program {
	program, err := assembler.Parse(source)
	require.NoError(t, err)
	return program
}

func explore(t *testing.T, m *Machine, backend solver.Backend) *search.Result {
	d := search.NewDriver(solver.NewManager(backend))
	result, err := d.Explore(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Depth())
	assert.Equal(t, 0, d.Manager().Level())
	return result
}

func newMachine(t *testing.T, program *assembler.Program, opts ...Option) *Machine {
	m, err := New(program, choice.DefaultConfig(), opts...)
	require.NoError(t, err)
	return m
}

func returned(t *testing.T, p *search.Path) string {
	require.Equal(t, search.EndReturn, p.End.Kind, p.String())
	v, ok := p.End.Value.(c.Term)
	require.True(t, ok, "returned %T", p.End.Value)
	return v.String()
}

func value(t *testing.T, p *search.Path, name string) int64 {
	require.NotNil(t, p.Solution, p.String())
	v, ok := p.Solution.Value(name)
	require.True(t, ok, "no value for %s", name)
	return v.Int()
}

func Test_Sign(t *testing.T) {
	result := explore(t, newMachine(t, load(t, "sign.jasm")), solvertest.NewBrute())
	require.Len(t, result.Paths, 4)

	assert.Equal(t, "0", returned(t, result.Paths[0]))
	assert.Equal(t, int64(0), value(t, result.Paths[0], "x"))

	assert.Equal(t, "-1", returned(t, result.Paths[1]))
	assert.Less(t, value(t, result.Paths[1], "x"), int64(0))

	assert.Equal(t, "(x / y)", returned(t, result.Paths[2]))
	assert.Greater(t, value(t, result.Paths[2], "x"), int64(0))
	assert.NotEqual(t, int64(0), value(t, result.Paths[2], "y"))

	thrown := result.Paths[3]
	assert.Equal(t, search.EndException, thrown.End.Kind)
	assert.Equal(t, choice.ArithmeticException, thrown.End.Detail)
	assert.Equal(t, int64(0), value(t, thrown, "y"))
	assert.True(t, result.Exhaustive())
}

func Test_SignOverYices(t *testing.T) {
	smt.Init()
	defer smt.Exit()

	backend := smt.NewSolver()
	result := explore(t, newMachine(t, load(t, "sign.jasm")), backend)
	require.Len(t, result.Paths, 4)
	assert.Equal(t, search.EndException, result.Paths[3].End.Kind)
	assert.Equal(t, int64(0), value(t, result.Paths[3], "y"))
}

func Test_ArrayParameter(t *testing.T) {
	m := newMachine(t, load(t, "arrays.jasm"))
	assert.Equal(t, -1, m.Entry())
	result := explore(t, m, solvertest.NewBrute())

	var got []string
	for _, p := range result.Paths {
		got = append(got, returned(t, p))
	}
	assert.Equal(t, []string{"-1", "0", "1", "(a[0] + a[1])", "(a[0] + a[1])"}, got)
	assert.Equal(t, int64(3), value(t, result.Paths[4], "a.length"))
}

func Test_ElementGenerator(t *testing.T) {
	m := newMachine(t, load(t, "arrays.jasm"))
	m.Factory().Registry().Register("Example.head", m.Entry(), choice.ElementGeneratorFunc(
		func(name string, index int, typ c.Type) (interp.Value, error) {
			return c.IntegralConstant(typ, int64(index+1)), nil
		}))
	result := explore(t, m, solvertest.NewBrute())
	require.Len(t, result.Paths, 5)
	assert.Equal(t, "3", returned(t, result.Paths[3]))
}

func Test_Compare(t *testing.T) {
	m := newMachine(t, load(t, "compare.jasm"))
	result := explore(t, m, solvertest.NewBrute())

	var got []string
	for _, p := range result.Paths {
		got = append(got, returned(t, p))
	}
	assert.Equal(t, []string{"1", "3", "-1", "-1", "-1", "0", "-1", "-1", "0"}, got)
	assert.Equal(t, int64(3), value(t, result.Paths[1], "k"))

	// everything after the root is undone
	assert.Equal(t, 2, m.Frame().PC())
	assert.Empty(t, m.Frame().Operands())
}

func Test_ConstantDivisionByZero(t *testing.T) {
	m := newMachine(t, parse(t, ".param 0 x int\niload_0\niconst_0\nidiv\nireturn"))
	result := explore(t, m, solvertest.NewBrute())
	require.Len(t, result.Paths, 1)
	assert.Equal(t, search.EndException, result.Paths[0].End.Kind)
	assert.Equal(t, choice.ArithmeticException, result.Paths[0].End.Detail)
	assert.Equal(t, 0, m.Factory().Created())
}

func Test_SymbolicIndexIsAborted(t *testing.T) {
	m := newMachine(t, parse(t, ".param 0 a int[]\n.param 1 i int\naload_0\niload_1\niaload\nireturn"))
	result := explore(t, m, solvertest.NewBrute())

	var kinds []search.EndKind
	for _, p := range result.Paths {
		kinds = append(kinds, p.End.Kind)
	}
	assert.Equal(t, []search.EndKind{
		search.EndException, search.EndAborted, search.EndAborted, search.EndAborted, search.EndAborted,
	}, kinds)
	assert.Equal(t, NullPointerException, result.Paths[0].End.Detail)
}

func Test_NewArrayWithSymbolicLength(t *testing.T) {
	m := newMachine(t, parse(t, ".param 0 n int\niload_0\nnewarray int\narraylength\nireturn"))
	result := explore(t, m, solvertest.NewBrute())
	require.Len(t, result.Paths, 5)
	for i, p := range result.Paths {
		assert.Equal(t, c.IntConstant(int32(i)).String(), returned(t, p))
		assert.Equal(t, int64(i), value(t, p, "n"))
	}
}

func Test_StoreAndLoad(t *testing.T) {
	m := newMachine(t, parse(t, `
.param 0 x int
    iconst_2
    newarray int
    astore_1
    aload_1
    iconst_1
    iload_0
    iastore
    aload_1
    iconst_1
    iaload
    aload_1
    iconst_5
    iaload
    ireturn
`))
	result := explore(t, m, solvertest.NewBrute())
	require.Len(t, result.Paths, 1)
	assert.Equal(t, search.EndException, result.Paths[0].End.Kind)
	assert.Equal(t, ArrayIndexOutOfBoundsException, result.Paths[0].End.Detail)
}

func Test_InstructionLimit(t *testing.T) {
	m := newMachine(t, parse(t, "loop: goto loop"), WithMaxInstructions(50))
	result := explore(t, m, solvertest.NewBrute())
	require.Len(t, result.Paths, 1)
	assert.Equal(t, search.EndAborted, result.Paths[0].End.Kind)
	assert.Equal(t, "instruction limit", result.Paths[0].End.Detail)
}

func Test_Loop(t *testing.T) {
	// while (x > 0) x--; return x
	m := newMachine(t, parse(t, `
.param 0 x int
loop:
    iload_0
    ifle done
    iinc 0 -1
    goto loop
done:
    iload_0
    ireturn
`))
	d := search.NewDriver(solver.NewManager(solvertest.NewBrute()), search.WithOptions(search.Options{MaxDepth: 4}))
	result, err := d.Explore(context.Background(), m)
	require.NoError(t, err)

	returns, pruned := 0, 0
	for _, p := range result.Paths {
		switch p.End.Kind {
		case search.EndReturn:
			returns++
		case search.EndDepth:
			pruned++
		}
	}
	assert.Equal(t, 4, returns)
	assert.Equal(t, 1, pruned)
}
