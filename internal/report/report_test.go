package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gsymbex/internal/constraint"
	"gsymbex/internal/search"
	"gsymbex/internal/solver"
)

func Test_WriteResult(t *testing.T) {
	inputs := solver.NewSolution(map[string]*constraint.Constant{"x": constraint.IntConstant(-2)})
	result := &search.Result{
		Paths: []*search.Path{
			{ID: 1, End: search.PathEnd{Kind: search.EndReturn, Value: constraint.IntConstant(1)}, Choices: []string{"1:jump"}, Solution: inputs},
			{ID: 2, End: search.PathEnd{Kind: search.EndDepth}},
		},
		Opened: 1,
	}
	var out bytes.Buffer
	require.NoError(t, WriteResult(&out, "T.f", result))
	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[0]), "value=1 inputs={x=-2} choices=[1:jump]")
	assert.Contains(t, string(lines[1]), "depth")
	assert.Contains(t, string(lines[2]), "T.f: 2 paths, 1 choice points")
}

func Test_IssueString(t *testing.T) {
	is := &Issue{ID: "EX-1", Title: "Division by zero", Method: "T.f", Path: 3}
	s := is.String()
	assert.Contains(t, s, "Title: Division by zero")
	assert.Contains(t, s, "In method: T.f, path 3")
	assert.Contains(t, s, "Inputs: unknown")
}
