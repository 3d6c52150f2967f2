package opcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gsymbex/internal/constraint"
)

func TestOPCode(t *testing.T) {
	assert.Equal(t, 94+14+40, len(opCodeInfos))
	assert.Equal(t, 94+14+40, len(opCodes))
}

func Test_Shortcuts(t *testing.T) {
	info, ok := GetOPCodeInfoByOperation("iconst_m1")
	require.True(t, ok)
	assert.Equal(t, 0x02, info.Code)
	assert.Equal(t, Operation("iconst"), info.Family)
	assert.Equal(t, -1, info.Index)

	info, ok = GetOPCodeInfoByCode(0x1C)
	require.True(t, ok)
	assert.Equal(t, Operation("iload_2"), info.OPCode)
	assert.Equal(t, ILOAD, info.Family)
	assert.Equal(t, 2, info.Index)

	info, ok = GetOPCodeInfoByOperation("dstore_3")
	require.True(t, ok)
	assert.Equal(t, 0x4A, info.Code)
	assert.Equal(t, constraint.Double, info.Type)

	_, ok = GetOPCodeInfoByOperation("iconst")
	assert.False(t, ok)
}

func Test_Kinds(t *testing.T) {
	ifle, _ := GetOPCodeInfoByOperation(IFLE)
	assert.True(t, ifle.IsBranch())
	assert.Equal(t, IFLE, ifle.Family)
	assert.Equal(t, -1, ifle.Index)

	ret, _ := GetOPCodeInfoByOperation(IRETURN)
	assert.True(t, ret.IsReturn())
	assert.False(t, ret.IsBranch())

	sw, _ := GetOPCodeInfoByOperation(LOOKUPSWITCH)
	assert.True(t, sw.IsBranch())
}
