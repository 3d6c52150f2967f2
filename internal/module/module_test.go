package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gsymbex/internal/search"
)

func path(id int, kind search.EndKind, detail string, choices ...string) *search.Path {
	return &search.Path{ID: id, End: search.PathEnd{Kind: kind, Detail: detail}, Choices: choices}
}

func Test_UncaughtException(t *testing.T) {
	mm := NewModuleManager("T.f")
	mm.AddModule(NewUncaughtException())
	require.Len(t, mm.CallbackModules, 1)

	mm.OnPathEnd(path(1, search.EndReturn, ""))
	mm.OnPathEnd(path(2, search.EndException, "java/lang/ArithmeticException", "1:throw"))
	mm.OnPathEnd(path(3, search.EndException, "java/lang/ArithmeticException", "1:throw", "2:jump"))
	mm.OnPathEnd(path(4, search.EndException, "java/lang/IllegalStateException"))

	issues := mm.RetrieveIssues()
	require.Len(t, issues, 2)
	assert.Equal(t, "EX-101", issues[0].ID)
	assert.Equal(t, 2, issues[0].Path)
	assert.Equal(t, "T.f", issues[0].Method)
	assert.Equal(t, "EX-100", issues[1].ID)
	assert.Contains(t, issues[1].Description, "java/lang/IllegalStateException")
}

func Test_UnorderedCompare(t *testing.T) {
	mm := NewModuleManager("T.g")
	mm.AddModule(NewUnorderedCompare())

	mm.OnPathEnd(path(1, search.EndReturn, "", "1:greater"))
	mm.OnPathEnd(path(2, search.EndReturn, "", "1:unordered", "2:jump"))
	mm.OnPathEnd(path(3, search.EndDepth, "", "1:unordered"))

	issues := mm.RetrieveIssues()
	require.Len(t, issues, 1)
	assert.Equal(t, "FP-200", issues[0].ID)
	assert.Equal(t, 2, issues[0].Path)
}
