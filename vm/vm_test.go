package vm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/cloudcmds/c0/bytecode"
	"github.com/cloudcmds/c0/op"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndPrint(t *testing.T) {
	mod := module(nil, fn(0, 0,
		ins(op.IPush, 2),
		ins(op.IPush, 3),
		ins(op.IAdd),
		ins(op.IPrint),
	))
	out, machine, err := exec(t, mod)
	require.NoError(t, err)
	require.Equal(t, "5", out)
	_, ok := machine.TOS()
	require.False(t, ok)
}

func TestIntegerArithmetic(t *testing.T) {
	tests := []struct {
		code     op.Code
		a, b     int64
		expected int32
	}{
		{op.IAdd, math.MaxInt32, 1, math.MinInt32},
		{op.ISub, math.MinInt32, 1, math.MaxInt32},
		{op.IMul, 1 << 16, 1 << 16, 0},
		{op.IDiv, -7, 2, -3},
		{op.IDiv, math.MinInt32, -1, math.MinInt32},
		{op.ICmp, 1, 2, -1},
		{op.ICmp, 2, 2, 0},
		{op.ICmp, 3, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			mod := module(nil, fn(0, 0,
				ins(op.IPush, tt.a),
				ins(op.IPush, tt.b),
				ins(tt.code),
			))
			_, machine, err := exec(t, mod)
			require.NoError(t, err)
			v, ok := machine.TOS()
			require.True(t, ok)
			require.Equal(t, IntKind, v.Kind())
			require.Equal(t, tt.expected, v.Int())
		})
	}
}

func TestDoubleOperations(t *testing.T) {
	consts := []bytecode.Constant{
		bytecode.FloatConstant(1e20),
		bytecode.FloatConstant(-2.75),
		bytecode.FloatConstant(2.5),
	}
	tests := []struct {
		name     string
		code     []op.Instruction
		expected Value
	}{
		{"saturate", []op.Instruction{ins(op.LoadC, 0), ins(op.D2I)}, IntValue(math.MaxInt32)},
		{"truncate", []op.Instruction{ins(op.LoadC, 1), ins(op.D2I)}, IntValue(-2)},
		{"nan compares as 1", []op.Instruction{
			ins(op.IPush, 0), ins(op.I2D), ins(op.IPush, 0), ins(op.I2D), ins(op.DDiv),
			ins(op.IPush, 0), ins(op.I2D), ins(op.DCmp),
		}, IntValue(1)},
		{"dcmp", []op.Instruction{ins(op.LoadC, 1), ins(op.LoadC, 2), ins(op.DCmp)}, IntValue(-1)},
		{"dmul", []op.Instruction{ins(op.LoadC, 2), ins(op.IPush, 2), ins(op.I2D), ins(op.DMul)}, DoubleValue(5)},
		{"dneg", []op.Instruction{ins(op.LoadC, 2), ins(op.DNeg)}, DoubleValue(-2.5)},
		{"i2c", []op.Instruction{ins(op.IPush, 0x141), ins(op.I2C)}, IntValue(0x41)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, machine, err := exec(t, module(consts, fn(0, 0, tt.code...)))
			require.NoError(t, err)
			v, ok := machine.TOS()
			require.True(t, ok)
			require.Equal(t, tt.expected, v)
		})
	}
}

func TestPrintInstructions(t *testing.T) {
	consts := []bytecode.Constant{
		bytecode.FloatConstant(2.5),
		bytecode.StringConstant("hi"),
		bytecode.FloatConstant(1e21),
	}
	mod := module(consts, fn(0, 0,
		ins(op.LoadC, 0), ins(op.DPrint),
		ins(op.CPush, 'A'), ins(op.CPrint),
		ins(op.LoadC, 1), ins(op.SPrint),
		ins(op.PrintLn),
		ins(op.LoadC, 2), ins(op.DPrint),
		ins(op.IPush, -12), ins(op.IPrint),
	))
	out, _, err := exec(t, mod)
	require.NoError(t, err)
	require.Equal(t, "2.5Ahi\n1e+21-12", out)
}

func TestScanInstructions(t *testing.T) {
	mod := module(nil, fn(0, 0,
		ins(op.IScan), ins(op.IPrint), ins(op.PrintLn),
		ins(op.DScan), ins(op.DPrint), ins(op.PrintLn),
		ins(op.CScan), ins(op.IPrint), ins(op.PrintLn),
		ins(op.CScan), ins(op.IPrint),
	))
	out, _, err := exec(t, mod, WithInput(strings.NewReader("  42\n3.5 Z")))
	require.NoError(t, err)
	require.Equal(t, "42\n3.5\n90\n-1", out)
}

func TestScanErrors(t *testing.T) {
	mod := module(nil, fn(0, 0, ins(op.IScan)))
	_, _, err := exec(t, mod, WithInput(strings.NewReader("x")))
	requireFault(t, err, IO, 0, 0, op.IScan)
	require.ErrorIs(t, err, ErrIO)

	_, _, err = exec(t, mod)
	fault := requireFault(t, err, IO, 0, 0, op.IScan)
	require.ErrorIs(t, fault, io.ErrUnexpectedEOF)
}

func TestLoopWithJumps(t *testing.T) {
	b := bytecode.NewBuilder()
	main := b.Function("main", 0, 1)
	top, end := main.NewLabel(), main.NewLabel()
	main.LoadA(0, 0).IPush(3).Op(op.IStore)
	main.Mark(top)
	main.LoadA(0, 0).Op(op.ILoad)
	main.Jump(op.Je, end)
	main.LoadA(0, 0).Op(op.ILoad, op.IPrint)
	main.LoadA(0, 0).LoadA(0, 0).Op(op.ILoad).IPush(1).Op(op.ISub, op.IStore)
	main.Jump(op.Jmp, top)
	main.Mark(end)
	mod, err := b.Build()
	require.NoError(t, err)

	out, _, err := exec(t, mod)
	require.NoError(t, err)
	require.Equal(t, "321", out)
}

func TestConditionalJumps(t *testing.T) {
	tests := []struct {
		code  op.Code
		value int64
		taken bool
	}{
		{op.Je, 0, true},
		{op.Je, 1, false},
		{op.Jne, -1, true},
		{op.Jl, -1, true},
		{op.Jl, 0, false},
		{op.Jge, 0, true},
		{op.Jg, 0, false},
		{op.Jle, 0, true},
		{op.Jle, 1, false},
	}
	for _, tt := range tests {
		mod := module(nil, fn(0, 0,
			ins(op.IPush, tt.value),
			ins(tt.code, 4),
			ins(op.IPush, 0),
			ins(op.Ret),
			ins(op.IPush, 1),
		))
		_, machine, err := exec(t, mod)
		require.NoError(t, err)
		v, _ := machine.TOS()
		assert.Equal(t, tt.taken, v.Int() == 1, "%s %d", tt.code, tt.value)
	}
}

func TestCallAndReturn(t *testing.T) {
	_, machine, err := exec(t, factorial(5))
	require.NoError(t, err)
	v, ok := machine.TOS()
	require.True(t, ok)
	require.Equal(t, int32(120), v.Int())

	v, err = machine.Call(context.Background(), 1, IntValue(6))
	require.NoError(t, err)
	require.Equal(t, int32(720), v.Int())

	_, err = machine.Call(context.Background(), 1)
	require.Error(t, err)
}

func TestReturnWithoutValue(t *testing.T) {
	mod := module(nil,
		fn(0, 0, ins(op.IPush, 7), ins(op.Call, 1), ins(op.Ret)),
		fn(0, 0, ins(op.Ret)),
	)
	_, machine, err := exec(t, mod)
	require.NoError(t, err)
	v, ok := machine.TOS()
	require.True(t, ok)
	require.Equal(t, int32(7), v.Int())
}

func TestDoubleArgumentsUseTwoSlots(t *testing.T) {
	consts := []bytecode.Constant{bytecode.FloatConstant(1.5)}
	mod := module(consts,
		fn(0, 0, ins(op.LoadC, 0), ins(op.IPush, 9), ins(op.Call, 1)),
		// (double d, int i) -> i
		fn(2, 3, ins(op.LoadA, 0, 2), ins(op.ILoad), ins(op.LoadA, 0, 0), ins(op.DLoad), ins(op.D2I), ins(op.IAdd)),
	)
	_, machine, err := exec(t, mod)
	require.NoError(t, err)
	v, _ := machine.TOS()
	require.Equal(t, int32(10), v.Int())
}

func TestDoubleLocalNeedsTwoSlots(t *testing.T) {
	consts := []bytecode.Constant{bytecode.FloatConstant(1.5)}
	mod := module(consts, fn(0, 1,
		ins(op.LoadA, 0, 0),
		ins(op.LoadC, 0),
		ins(op.DStore),
	))
	_, _, err := exec(t, mod)
	requireFault(t, err, LocalIndex, 0, 2, op.DStore)

	mod = module(consts, fn(0, 2,
		ins(op.LoadA, 0, 0),
		ins(op.LoadC, 0),
		ins(op.DStore),
		ins(op.LoadA, 0, 1),
		ins(op.ILoad),
	))
	_, _, err = exec(t, mod)
	requireFault(t, err, TypeMismatch, 0, 4, op.ILoad)
}

func TestHeapArraysOutliveFrame(t *testing.T) {
	mod := module(nil,
		fn(0, 0,
			ins(op.Call, 1),
			ins(op.IPush, 2),
			ins(op.IALoad),
		),
		fn(0, 0,
			ins(op.IPush, 3),
			ins(op.SNew),
			ins(op.Dup),
			ins(op.IPush, 2),
			ins(op.IPush, 42),
			ins(op.IAStore),
		),
	)
	_, machine, err := exec(t, mod)
	require.NoError(t, err)
	v, _ := machine.TOS()
	require.Equal(t, int32(42), v.Int())
	require.Equal(t, 1, machine.Heap().Len())
	require.Equal(t, 3, machine.Heap().Cells())
}

func TestHeapResetInvalidatesReferences(t *testing.T) {
	mod := module(nil, fn(0, 0, ins(op.New)))
	_, machine, err := exec(t, mod)
	require.NoError(t, err)
	v, _ := machine.TOS()
	cells, ok := machine.Heap().Array(v.Ref())
	require.True(t, ok)
	require.Len(t, cells, 1)

	machine.Heap().Reset()
	_, ok = machine.Heap().Array(v.Ref())
	require.False(t, ok)
}

func TestArrayIndexOutOfRange(t *testing.T) {
	mod := module(nil, fn(0, 0,
		ins(op.IPush, 2),
		ins(op.SNew),
		ins(op.IPush, 2),
		ins(op.IALoad),
	))
	_, _, err := exec(t, mod)
	requireFault(t, err, ArrayIndex, 0, 3, op.IALoad)

	mod = module(nil, fn(0, 0, ins(op.IPush, -1), ins(op.SNew)))
	_, _, err = exec(t, mod)
	requireFault(t, err, ArrayIndex, 0, 1, op.SNew)
}

func TestHeapCellLimit(t *testing.T) {
	mod := module(nil, fn(0, 0, ins(op.IPush, math.MaxInt32), ins(op.SNew)))
	_, machine, err := exec(t, mod)
	fault := requireFault(t, err, HeapOverflow, 0, 1, op.SNew)
	require.ErrorIs(t, fault, ErrHeapOverflow)
	require.Equal(t, 0, machine.Heap().Cells())

	mod = module(nil, fn(0, 0,
		ins(op.IPush, 3), ins(op.SNew),
		ins(op.New),
		ins(op.New),
	))
	_, machine, err = exec(t, mod, WithMaxHeapCells(4))
	requireFault(t, err, HeapOverflow, 0, 3, op.New)
	require.Equal(t, 4, machine.Heap().Cells())

	_, _, err = exec(t, module(nil, fn(0, 0, ins(op.IPush, 4), ins(op.SNew))), WithMaxHeapCells(4))
	require.NoError(t, err)
}

func TestDanglingLocalReference(t *testing.T) {
	mod := module(nil,
		fn(0, 0, ins(op.Call, 1), ins(op.Call, 2), ins(op.Pop1), ins(op.ILoad)),
		fn(0, 1, ins(op.LoadA, 0, 0)),
		fn(0, 1, ins(op.IPush, 1)),
	)
	_, _, err := exec(t, mod)
	requireFault(t, err, DanglingReference, 0, 3, op.ILoad)
	require.ErrorIs(t, err, ErrDanglingReference)
}

func TestNullReference(t *testing.T) {
	mod := module(nil, fn(0, 1,
		ins(op.LoadA, 0, 0),
		ins(op.ALoad),
		ins(op.ILoad),
	))
	_, _, err := exec(t, mod)
	requireFault(t, err, DanglingReference, 0, 2, op.ILoad)
}

func TestDivideByZero(t *testing.T) {
	mod := module(nil, fn(0, 0,
		ins(op.IPush, 1),
		ins(op.IPush, 0),
		ins(op.IDiv),
	))
	_, _, err := exec(t, mod)
	requireFault(t, err, DivideByZero, 0, 2, op.IDiv)
	require.ErrorIs(t, err, ErrDivideByZero)
	require.Equal(t, "vm fault: divide by zero: 1 / 0 (fn 0, ip 2, op idiv)", err.Error())
}

func TestStackUnderflow(t *testing.T) {
	mod := module(nil, fn(0, 0, ins(op.IPush, 1), ins(op.IAdd)))
	_, _, err := exec(t, mod)
	requireFault(t, err, StackUnderflow, 0, 1, op.IAdd)
}

func TestStackOverflow(t *testing.T) {
	mod := module(nil, fn(0, 0, ins(op.IPush, 1), ins(op.Dup), ins(op.Jmp, 1)))
	_, _, err := exec(t, mod, WithMaxStackDepth(16))
	requireFault(t, err, StackOverflow, 0, 1, op.Dup)
}

func TestFrameOverflow(t *testing.T) {
	mod := module(nil, fn(0, 0, ins(op.Call, 0)))
	_, _, err := exec(t, mod, WithMaxFrameDepth(8))
	fault := requireFault(t, err, FrameOverflow, 0, 0, op.Call)
	require.Len(t, fault.Stack, 8)
}

func TestIndexFaults(t *testing.T) {
	tests := []struct {
		name string
		code op.Instruction
		kind FaultKind
	}{
		{"constant", ins(op.LoadC, 3), ConstantIndex},
		{"function", ins(op.Call, 9), FunctionIndex},
		{"jump", ins(op.Jmp, 3), JumpTarget},
		{"local", ins(op.LoadA, 1, 0), LocalIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := exec(t, module(nil, fn(0, 1, ins(op.Nop), tt.code)))
			requireFault(t, err, tt.kind, 0, 1, tt.code.Op)
		})
	}
}

func TestTypeMismatch(t *testing.T) {
	consts := []bytecode.Constant{bytecode.StringConstant("s")}
	mod := module(consts, fn(0, 0, ins(op.LoadC, 0), ins(op.IPrint)))
	_, _, err := exec(t, mod)
	requireFault(t, err, TypeMismatch, 0, 1, op.IPrint)
}

func TestFaultStack(t *testing.T) {
	mod := module(nil,
		fn(0, 0, ins(op.Nop), ins(op.Call, 1)),
		fn(0, 0, ins(op.IAdd)),
	)
	_, _, err := exec(t, mod)
	fault := requireFault(t, err, StackUnderflow, 1, 0, op.IAdd)
	require.Equal(t, []StackFrame{{Func: 1, IP: 0}, {Func: 0, IP: 1}}, fault.Stack)
}

func TestEntryOption(t *testing.T) {
	mod := module(nil,
		fn(0, 0, ins(op.IPush, 1)),
		fn(0, 0, ins(op.IPush, 2)),
	)
	_, machine, err := exec(t, mod, WithEntry(1))
	require.NoError(t, err)
	v, _ := machine.TOS()
	require.Equal(t, int32(2), v.Int())

	_, _, err = exec(t, mod, WithEntry(5))
	require.ErrorIs(t, err, ErrFunctionIndex)
}

func TestLoad(t *testing.T) {
	data, err := factorial(4).MarshalBinary()
	require.NoError(t, err)

	machine, err := Load(data)
	require.NoError(t, err)
	require.NoError(t, machine.Run(context.Background()))
	v, _ := machine.TOS()
	require.Equal(t, int32(24), v.Int())

	bad := append([]byte{}, data...)
	bad[0] = 0
	_, err = Load(bad)
	require.ErrorIs(t, err, ErrMalformedModule)
	require.ErrorIs(t, err, bytecode.ErrBadMagic)
	fault, ok := err.(*Fault)
	require.True(t, ok)
	require.Equal(t, -1, fault.IP)
	require.NotContains(t, fault.Error(), "(fn")
}

func TestRunHelpers(t *testing.T) {
	v, ok, err := Run(context.Background(), factorial(3))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int32(6), v.Int())

	data, err := factorial(3).MarshalBinary()
	require.NoError(t, err)
	v, ok, err = RunBytes(context.Background(), data)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int32(6), v.Int())
}

func TestContextCancellation(t *testing.T) {
	mod := module(nil, fn(0, 0, ins(op.Jmp, 0)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	machine := New(mod, WithContextCheckInterval(10))
	err := machine.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

type cancelObserver struct {
	NoOpObserver
	armed  bool
	at     int
	steps  int
	cancel context.CancelFunc
}

func (o *cancelObserver) Config() ObserverConfig { return NewObserverConfig(StepAll) }

func (o *cancelObserver) OnStep(StepEvent) bool {
	if o.armed {
		o.steps++
		if o.steps == o.at {
			o.cancel()
		}
	}
	return true
}

func TestEarlierContextDoesNotHaltLaterRun(t *testing.T) {
	mod := module(nil, fn(0, 0,
		ins(op.IPush, 1), ins(op.IPrint),
		ins(op.IPush, 2), ins(op.IPrint),
		ins(op.IPush, 3), ins(op.IPrint),
		ins(op.IPush, 4), ins(op.IPrint),
	))
	ctx1, cancel1 := context.WithCancel(context.Background())
	defer cancel1()

	var out bytes.Buffer
	obs := &cancelObserver{at: 5, cancel: cancel1}
	machine := New(mod, WithOutput(&out), WithObserver(obs), WithContextCheckInterval(1))
	require.NoError(t, machine.Run(ctx1))
	require.Equal(t, "1234", out.String())

	out.Reset()
	obs.armed = true
	require.NoError(t, machine.Run(context.Background()))
	require.Equal(t, 5, obs.steps)
	require.Equal(t, "1234", out.String())
}

func TestHaltErrorIsNeverNil(t *testing.T) {
	require.ErrorIs(t, haltError(context.Background()), ErrHalted)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, haltError(ctx), context.Canceled)
}

type reentrantObserver struct {
	NoOpObserver
	vm  *VirtualMachine
	err error
}

func (o *reentrantObserver) OnStep(StepEvent) bool {
	o.err = o.vm.Run(context.Background())
	return false
}

func TestConcurrentRunIsRejected(t *testing.T) {
	obs := &reentrantObserver{}
	machine := New(module(nil, fn(0, 0, ins(op.Nop))), WithObserver(obs))
	obs.vm = machine
	err := machine.Run(context.Background())
	require.ErrorIs(t, err, ErrHalted)
	require.ErrorIs(t, obs.err, ErrRunning)

	// The guard is released once the run ends.
	machine = New(module(nil, fn(0, 0, ins(op.Nop))))
	require.NoError(t, machine.Run(context.Background()))
	require.NoError(t, machine.Run(context.Background()))
}

func TestTraceLogging(t *testing.T) {
	level := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(level) })

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.TraceLevel)
	mod := module(nil, fn(0, 0, ins(op.IPush, 2), ins(op.IPush, 0), ins(op.IDiv)))
	_, _, err := exec(t, mod, WithLogger(logger), WithTrace(true))
	require.Error(t, err)

	logs := buf.String()
	require.Contains(t, logs, `"message":"run started"`)
	require.Contains(t, logs, `"op":"ipush 2"`)
	require.Contains(t, logs, `"message":"step"`)
	require.Contains(t, logs, `"message":"run failed"`)
	require.Contains(t, logs, `"run":"`)
	require.Equal(t, 5, strings.Count(logs, "\n"))
}

func TestFaultIsAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	fault := &Fault{Kind: IO, Func: 0, IP: 4, Op: op.IPrint, Cause: cause}
	require.ErrorIs(t, fault, ErrIO)
	require.ErrorIs(t, fault, cause)
	require.False(t, errors.Is(fault, ErrTypeMismatch))
	require.Equal(t, "vm fault: i/o error: boom (fn 0, ip 4, op iprint)", fault.Error())
}
