package op

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(LoadA)
	assert.Equal(t, "loada", info.Name)
	assert.Equal(t, 2, info.OperandCount)
	assert.Equal(t, []int{2, 4}, info.Widths)
	assert.Equal(t, LoadA, info.Code)
	assert.Equal(t, 7, info.Size())
}

func TestGetInfoAllOpcodes(t *testing.T) {
	tests := []struct {
		code Code
		byte uint8
		name string
		size int
	}{
		{Nop, 0x00, "nop", 1},
		{CPush, 0x01, "cpush", 2},
		{IPush, 0x02, "ipush", 5},
		{PopN, 0x06, "popn", 5},
		{LoadC, 0x09, "loadc", 3},
		{SNew, 0x0c, "snew", 1},
		{AALoad, 0x1a, "aaload", 1},
		{AAStore, 0x2a, "aastore", 1},
		{IDiv, 0x3c, "idiv", 1},
		{DCmp, 0x45, "dcmp", 1},
		{I2C, 0x62, "i2c", 1},
		{Jle, 0x76, "jle", 3},
		{Call, 0x80, "call", 3},
		{Ret, 0x88, "ret", 1},
		{PrintLn, 0xaf, "println", 1},
		{CScan, 0xb2, "cscan", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := GetInfo(tt.code)
			assert.Equal(t, tt.byte, uint8(info.Code))
			assert.Equal(t, tt.name, info.Name)
			assert.Equal(t, tt.size, info.Size())
		})
	}
}

func TestUndefinedOpcode(t *testing.T) {
	info := GetInfo(Code(0x03))
	assert.False(t, info.Valid())
	assert.Equal(t, "op(0x03)", Code(0x03).String())
}

func TestLookup(t *testing.T) {
	for _, code := range Codes() {
		got, ok := Lookup(code.String())
		require.True(t, ok, code.String())
		require.Equal(t, code, got)
	}
	code, ok := Lookup("IADD")
	require.True(t, ok)
	require.Equal(t, IAdd, code)
	_, ok = Lookup("halt")
	require.False(t, ok)
}

func TestJumpClassification(t *testing.T) {
	assert.True(t, Jmp.IsJump())
	assert.False(t, Jmp.IsConditionalJump())
	assert.True(t, Jge.IsConditionalJump())
	assert.False(t, Call.IsJump())
}

func TestMake(t *testing.T) {
	ins, err := Make(IPush, -5)
	require.NoError(t, err)
	require.Equal(t, int32(-5), ins.Int())
	require.Equal(t, "ipush -5", ins.String())

	ins, err = Make(LoadA, 1, 70000)
	require.NoError(t, err)
	require.Equal(t, "loada 1, 70000", ins.String())

	require.Equal(t, "iadd", MustMake(IAdd).String())
}

func TestMakeErrors(t *testing.T) {
	_, err := Make(IAdd, 1)
	require.Error(t, err)
	_, err = Make(CPush, 256)
	require.Error(t, err)
	_, err = Make(Jmp, -1)
	require.Error(t, err)
	_, err = Make(Code(0x03))
	require.Error(t, err)
	require.Panics(t, func() { MustMake(LoadC) })
}
