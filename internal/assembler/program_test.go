package assembler

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gsymbex/internal/constraint"
	"gsymbex/internal/opcode"
)

func Test_listing(t *testing.T) {
	const (
		InputDir          = "../../testdata/inputs"
		OutputExpectedDir = "../../testdata/outputs_expected"
	)
	files, err := os.ReadDir(InputDir)
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		t.Run(f.Name(), func(t *testing.T) {
			source, err := os.ReadFile(path.Join(InputDir, f.Name()))
			require.NoError(t, err)
			program, err := Parse(string(source))
			require.NoError(t, err)

			expected, err := os.ReadFile(path.Join(OutputExpectedDir, f.Name()+".listing"))
			require.NoError(t, err)
			assert.Equal(t, string(expected), program.GetListing())
		})
	}
}

func Test_Parse(t *testing.T) {
	program, err := Parse(`
.method T.f
.param 0 x int
.param 1 xs long[]
loop: iinc 0 -1
    iload 0
    ldc2_w 5L
    pop
    lookupswitch 2:loop default:done
done:
    return
`)
	require.NoError(t, err)
	assert.Equal(t, "T.f", program.Method)
	assert.Equal(t, 2, program.MaxLocals)
	assert.Equal(t, []Param{
		{Slot: 0, Name: "x", Type: constraint.Int},
		{Slot: 1, Name: "xs", Type: constraint.Long, Array: true},
	}, program.Params)

	in, ok := program.At(0)
	require.True(t, ok)
	assert.Equal(t, opcode.IINC, in.OPCode)
	assert.Equal(t, 0, in.Local)
	assert.Equal(t, -1, in.Delta)

	in, _ = program.At(2)
	assert.Equal(t, constraint.Long, in.Constant.Type())
	assert.Equal(t, int64(5), in.Constant.Int())

	in, _ = program.At(4)
	assert.Equal(t, []int32{2}, in.Keys)
	assert.Equal(t, []int{0}, in.Targets)
	assert.Equal(t, 5, in.Default)

	pc, ok := program.Label("done")
	assert.True(t, ok)
	assert.Equal(t, 5, pc)
	_, ok = program.At(6)
	assert.False(t, ok)
}

func Test_Constants(t *testing.T) {
	tests := []struct {
		op   opcode.Operation
		text string
		typ  constraint.Type
		ok   bool
	}{
		{opcode.BIPUSH, "-128", constraint.Int, true},
		{opcode.BIPUSH, "200", constraint.Int, false},
		{opcode.SIPUSH, "30000", constraint.Int, true},
		{opcode.LDC, "1.5f", constraint.Float, true},
		{opcode.LDC, "NaNf", constraint.Float, true},
		{opcode.LDC, "1.5", constraint.Double, false},
		{opcode.LDC2_W, "-Infinity", constraint.Double, true},
		{opcode.LDC2_W, "+Inf", constraint.Double, true},
		{opcode.LDC2_W, "12L", constraint.Long, true},
		{opcode.LDC2_W, "7", constraint.Int, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.op)+" "+tt.text, func(t *testing.T) {
			c, err := parseConstant(tt.op, tt.text)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.typ, c.Type())
		})
	}
}

func Test_ParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		msg    string
	}{
		{"unknown", "frob\nreturn", "line 1: unknown instruction"},
		{"label", "goto nowhere", "undefined label"},
		{"duplicate label", "a: nop\na: return", "duplicate label"},
		{"arguments", "iload\nreturn", "iload takes 1 arguments"},
		{"locals", ".locals 1\niload 3\nreturn", "exceeds .locals"},
		{"falls off", "nop", "falls off the end"},
		{"default", "iconst_0\nlookupswitch 1:x\nx: return", "needs a default"},
		{"slot", ".param 0 a int\n.param 0 b int\nreturn", "already holds"},
		{"type", ".param 0 a string\nreturn", "unknown type"},
		{"empty", ".method m", "no instructions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func Test_FindOPCodeSequence(t *testing.T) {
	program, err := Parse("iload_0\nifle a\niload 0\nifgt a\na: return")
	require.NoError(t, err)
	found := program.Find([][]opcode.Operation{{opcode.ILOAD}, {opcode.IFLE, opcode.IFGT}})
	assert.Equal(t, []int{0, 2}, found)
}
