package bytecode

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/cloudcmds/c0/op"
	"github.com/stretchr/testify/require"
)

func sampleModule() *Module {
	main := NewFunction(FunctionParams{
		Locals: 1,
		Instructions: []op.Instruction{
			op.MustMake(op.IPush, 5),
			op.MustMake(op.IPrint),
			op.MustMake(op.Ret),
		},
	})
	return NewModule(ModuleParams{
		Constants: []Constant{IntConstant(7)},
		Functions: []*Function{main},
	})
}

var sampleBytes = []byte{
	0x43, 0x30, 0x3a, 0x29, // magic
	0x00, 0x00, 0x00, 0x01, // version
	0x00, 0x01, // constant count
	0x00, 0x00, 0x00, 0x00, 0x07, // int 7
	0x00, 0x01, // function count
	0x00, 0x00, // params
	0x00, 0x01, // locals
	0x00, 0x03, // instruction count
	0x02, 0x00, 0x00, 0x00, 0x05, // ipush 5
	0xa0, // iprint
	0x88, // ret
}

func TestMarshalBinary(t *testing.T) {
	data, err := sampleModule().MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, sampleBytes, data)
}

func TestDecode(t *testing.T) {
	m, err := Decode(sampleBytes)
	require.NoError(t, err)
	require.Equal(t, Magic, m.Magic())
	require.Equal(t, Version, m.Version())
	require.Equal(t, 1, m.ConstantCount())
	require.Equal(t, IntConstant(7), m.ConstantAt(0))
	require.Equal(t, 1, m.FunctionCount())
	fn := m.FunctionAt(0)
	require.Equal(t, 0, fn.Params())
	require.Equal(t, 1, fn.Locals())
	require.Equal(t, 3, fn.InstructionCount())
	require.Equal(t, "ipush 5", fn.InstructionAt(0).String())
	require.Equal(t, op.Ret, fn.InstructionAt(2).Op)
}

func TestRoundTripAllConstantKinds(t *testing.T) {
	b := NewBuilder()
	b.IntConst(-1)
	b.FloatConst(math.Pi)
	b.StringConst("hello, world")
	fn := b.Function("main", 2, 4)
	fn.IPush(math.MinInt32).CPush(255).LoadA(1, 1).PopN(3).LoadC(2)
	fn.Op(op.SPrint, op.PrintLn)
	m, err := b.Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := m.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	var decoded Module
	read, err := decoded.ReadFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, n, read)

	require.Equal(t, m.ConstantCount(), decoded.ConstantCount())
	for i := 0; i < m.ConstantCount(); i++ {
		require.Equal(t, m.ConstantAt(i), decoded.ConstantAt(i))
	}
	got, want := decoded.FunctionAt(0), m.FunctionAt(0)
	require.Equal(t, want.Params(), got.Params())
	require.Equal(t, want.Locals(), got.Locals())
	require.Equal(t, want.InstructionCount(), got.InstructionCount())
	for ip := 0; ip < want.InstructionCount(); ip++ {
		require.Equal(t, want.InstructionAt(ip), got.InstructionAt(ip))
	}
	require.Equal(t, int32(math.MinInt32), got.InstructionAt(0).Int())
	// Names are not part of the binary format.
	require.Equal(t, "", got.Name())
	require.Equal(t, "fn0", got.Label(0))
}

func TestDecodeErrors(t *testing.T) {
	withByte := func(i int, b byte) []byte {
		data := bytes.Clone(sampleBytes)
		data[i] = b
		return data
	}
	tests := []struct {
		name   string
		data   []byte
		err    error
		offset int
	}{
		{"empty", nil, ErrTruncated, 0},
		{"bad magic", withByte(0, 0x00), ErrBadMagic, 0},
		{"bad version", withByte(7, 0x02), ErrUnsupportedVersion, 4},
		{"unknown constant tag", withByte(10, 0x07), ErrUnknownConstant, 10},
		{"unknown opcode", withByte(29, 0x03), ErrUnknownOpcode, 29},
		{"truncated operand", sampleBytes[:26], ErrTruncated, 24},
		{"truncated function", sampleBytes[:len(sampleBytes)-1], ErrTruncated, len(sampleBytes) - 1},
		{"trailing bytes", append(bytes.Clone(sampleBytes), 0x00), ErrTrailingBytes, len(sampleBytes)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			require.ErrorIs(t, err, tt.err)
			var fe *FormatError
			require.True(t, errors.As(err, &fe))
			require.Equal(t, tt.offset, fe.Offset)
		})
	}
}

func TestDecodeLongStringLength(t *testing.T) {
	data := []byte{
		0x43, 0x30, 0x3a, 0x29, 0x00, 0x00, 0x00, 0x01,
		0x00, 0x01,
		0x02, 0xff, 0xff, 0xff, 0xff, 'a',
	}
	_, err := Decode(data)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestMarshalUnknownConstant(t *testing.T) {
	m := NewModule(ModuleParams{Constants: []Constant{{Kind: 9}}})
	_, err := m.MarshalBinary()
	require.ErrorIs(t, err, ErrUnknownConstant)
}
