package bytecode

import (
	"math"
	"testing"

	"github.com/cloudcmds/c0/op"
	"github.com/stretchr/testify/require"
)

func TestBuilderInternsConstants(t *testing.T) {
	b := NewBuilder()
	require.Equal(t, uint16(0), b.IntConst(1))
	require.Equal(t, uint16(1), b.StringConst("1"))
	require.Equal(t, uint16(0), b.IntConst(1))
	require.Equal(t, uint16(2), b.FloatConst(0))
	require.Equal(t, uint16(3), b.FloatConst(math.Copysign(0, -1)))
}

func TestBuilderForwardAndBackwardJumps(t *testing.T) {
	b := NewBuilder()
	fn := b.Function("loop", 0, 1)
	top, done := fn.NewLabel(), fn.NewLabel()
	fn.Mark(top)
	fn.IPush(0)
	fn.Jump(op.Je, done)
	fn.Jump(op.Jmp, top)
	fn.Mark(done)
	fn.Op(op.Ret)

	m, err := b.Build()
	require.NoError(t, err)
	code := m.FunctionAt(0)
	require.Equal(t, "je 3", code.InstructionAt(1).String())
	require.Equal(t, "jmp 0", code.InstructionAt(2).String())
	require.Equal(t, "loop", code.Name())
}

func TestBuilderJumpToEnd(t *testing.T) {
	b := NewBuilder()
	fn := b.Function("main", 0, 0)
	end := fn.NewLabel()
	fn.Jump(op.Jmp, end)
	fn.Mark(end)
	m, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, uint32(1), m.FunctionAt(0).InstructionAt(0).A)
}

func TestBuilderErrors(t *testing.T) {
	b := NewBuilder()
	fn := b.Function("bad", 0, 0)
	never := fn.NewLabel()
	fn.Jump(op.Jmp, never)
	fn.Jump(op.IAdd, never)
	fn.Emit(op.IPush)
	fn.Mark(Label(7))

	_, err := b.Build()
	require.Error(t, err)
	msg := err.Error()
	require.Contains(t, msg, "label 0 is never marked")
	require.Contains(t, msg, "iadd is not a jump")
	require.Contains(t, msg, "ipush takes 1 operand(s), got 0")
	require.Contains(t, msg, "unknown label 7")
}

func TestBuilderValidates(t *testing.T) {
	b := NewBuilder()
	b.Function("main", 0, 0).Call(3).LoadC(9)
	_, err := b.Build()
	require.Error(t, err)
	require.Contains(t, err.Error(), "function index 3 out of range")
	require.Contains(t, err.Error(), "constant index 9 out of range")
}
