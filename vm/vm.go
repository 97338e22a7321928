// Package vm provides a VirtualMachine that executes o0 bytecode modules.
package vm

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"

	"github.com/cloudcmds/c0/bytecode"
	"github.com/cloudcmds/c0/op"
)

const (
	MaxFrameDepth = 1024
	MaxStackDepth = 1024

	// MaxHeapCells bounds the cells live on the heap during one run.
	MaxHeapCells = 1 << 24

	// DefaultContextCheckInterval is the number of instructions between
	// deterministic checks of ctx.Done(). Set to 0 to disable.
	DefaultContextCheckInterval = 1000
)

var (
	ErrRunning = errors.New("vm is already running")
	ErrHalted  = errors.New("execution halted by observer")
)

type VirtualMachine struct {
	module *bytecode.Module
	entry  int
	frames []frame
	serial uint64
	heap   *Heap
	halt   int32
	steps  int64

	result    Value
	hasResult bool

	output io.Writer
	input  io.Reader
	out    *bufio.Writer
	in     *bufio.Reader

	logger zerolog.Logger
	log    zerolog.Logger
	trace  bool

	maxFrameDepth int
	maxStackDepth int
	maxHeapCells  int

	// contextCheckInterval is the number of instructions between
	// deterministic checks of ctx.Done(). Zero relies only on the
	// goroutine started in start.
	contextCheckInterval int

	observer     Observer
	observerCfg  ObserverConfig
	sampledSteps int

	running  bool
	runMutex sync.Mutex
	stopChan chan struct{}
	watching chan struct{}
}

// New creates a Virtual Machine for the given module. The module is not
// validated up front; structural problems surface as faults at the
// instruction that trips over them.
func New(mod *bytecode.Module, options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		module:               mod,
		heap:                 newHeap(),
		output:               io.Discard,
		input:                bytes.NewReader(nil),
		logger:               zerolog.Nop(),
		maxFrameDepth:        MaxFrameDepth,
		maxStackDepth:        MaxStackDepth,
		maxHeapCells:         MaxHeapCells,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range options {
		opt(vm)
	}
	if vm.maxFrameDepth <= 0 {
		vm.maxFrameDepth = MaxFrameDepth
	}
	if vm.maxStackDepth <= 0 {
		vm.maxStackDepth = MaxStackDepth
	}
	if vm.maxHeapCells <= 0 {
		vm.maxHeapCells = MaxHeapCells
	}
	vm.out = bufio.NewWriter(vm.output)
	vm.in = bufio.NewReader(vm.input)
	vm.log = vm.logger
	return vm
}

// Load decodes an o0 module and creates a Virtual Machine for it. Decoding
// errors are returned as a MalformedModule fault wrapping the
// *bytecode.FormatError.
func Load(data []byte, options ...Option) (*VirtualMachine, error) {
	mod, err := bytecode.Decode(data)
	if err != nil {
		return nil, malformed(err)
	}
	return New(mod, options...), nil
}

// Module returns the module being executed.
func (vm *VirtualMachine) Module() *bytecode.Module {
	return vm.module
}

// Heap returns the heap of the current or most recent run.
func (vm *VirtualMachine) Heap() *Heap {
	return vm.heap
}

// Steps returns the number of instructions executed by the most recent run.
func (vm *VirtualMachine) Steps() int64 {
	return vm.steps
}

func (vm *VirtualMachine) start(ctx context.Context) error {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return ErrRunning
	}
	vm.running = true
	// Halt execution when the context is cancelled. The watcher belongs to
	// this run only and exits in stop.
	atomic.StoreInt32(&vm.halt, 0)
	vm.stopChan, vm.watching = nil, nil
	if doneChan := ctx.Done(); doneChan != nil {
		stopChan := make(chan struct{})
		watching := make(chan struct{})
		vm.stopChan, vm.watching = stopChan, watching
		go func() {
			defer close(watching)
			select {
			case <-doneChan:
				atomic.StoreInt32(&vm.halt, 1)
			case <-stopChan:
			}
		}()
	}
	return nil
}

func (vm *VirtualMachine) stop() {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.stopChan != nil {
		close(vm.stopChan)
		<-vm.watching
		vm.stopChan, vm.watching = nil, nil
	}
	vm.running = false
}

// Run executes the entry function until it returns. A value left on the
// entry function's operand stack is available from TOS afterwards.
func (vm *VirtualMachine) Run(ctx context.Context) error {
	if err := vm.start(ctx); err != nil {
		return err
	}
	defer vm.stop()
	_, err := vm.run(ctx, vm.entry, nil)
	return err
}

// Call executes function fn with the given arguments and returns the value
// it transfers on return, which is a NoneKind Value if it leaves its stack
// empty.
func (vm *VirtualMachine) Call(ctx context.Context, fn int, args ...Value) (Value, error) {
	if err := vm.start(ctx); err != nil {
		return Value{}, err
	}
	defer vm.stop()
	return vm.run(ctx, fn, args)
}

// TOS returns the value transferred out of the most recent run, if any.
func (vm *VirtualMachine) TOS() (Value, bool) {
	return vm.result, vm.hasResult
}

func (vm *VirtualMachine) run(ctx context.Context, fn int, args []Value) (result Value, err error) {
	vm.reset()

	id, idErr := uuid.NewV4()
	if idErr == nil {
		vm.log = vm.logger.With().Str("run", id.String()).Logger()
	}
	vm.log.Debug().
		Int("entry", fn).
		Int("functions", vm.module.FunctionCount()).
		Int("constants", vm.module.ConstantCount()).
		Msg("run started")

	defer func() {
		if flushErr := vm.out.Flush(); flushErr != nil && err == nil {
			err = &Fault{Kind: IO, Func: -1, IP: -1, Cause: flushErr}
		}
		if err != nil {
			vm.log.Error().Err(err).Int64("steps", vm.Steps()).Msg("run failed")
			return
		}
		result = vm.result
		vm.log.Debug().
			Int64("steps", vm.Steps()).
			Bool("result", vm.hasResult).
			Msg("run finished")
	}()

	if fn < 0 || fn >= vm.module.FunctionCount() {
		return Value{}, &Fault{
			Kind:    FunctionIndex,
			Func:    -1,
			IP:      -1,
			Message: fmt.Sprintf("entry function %d out of range (%d functions)", fn, vm.module.FunctionCount()),
		}
	}
	if want := vm.module.FunctionAt(fn).Params(); len(args) != want {
		return Value{}, fmt.Errorf("function %d takes %d argument(s), got %d", fn, want, len(args))
	}
	if err := vm.enter(fn, args); err != nil {
		return Value{}, vm.locate(err, fn, -1, 0)
	}
	return Value{}, vm.eval(ctx)
}

func (vm *VirtualMachine) reset() {
	vm.frames = vm.frames[:0]
	vm.result = Value{}
	vm.hasResult = false
	vm.steps = 0
	vm.sampledSteps = 0
	vm.heap.Reset()
	if vm.observer != nil {
		vm.observerCfg = normalizeConfig(vm.observer.Config())
	}
}

// enter pushes an activation of fn with args placed in its first locals.
// A double argument fills two local slots.
func (vm *VirtualMachine) enter(fn int, args []Value) error {
	if len(vm.frames) >= vm.maxFrameDepth {
		return faultf(FrameOverflow, "call depth limit of %d exceeded", vm.maxFrameDepth)
	}
	code := vm.module.FunctionAt(fn)
	if len(vm.frames) < cap(vm.frames) {
		vm.frames = vm.frames[:len(vm.frames)+1]
	} else {
		vm.frames = append(vm.frames, frame{})
	}
	vm.serial++
	f := &vm.frames[len(vm.frames)-1]
	f.activate(fn, code, vm.serial)

	if err := f.bind(args); err != nil {
		vm.frames = vm.frames[:len(vm.frames)-1]
		return err
	}

	if vm.observer != nil && vm.observerCfg.ObserveCalls {
		if !vm.observer.OnCall(CallEvent{
			Func:         fn,
			FunctionName: code.Label(fn),
			ArgCount:     len(args),
			FrameDepth:   len(vm.frames),
		}) {
			return ErrHalted
		}
	}
	return nil
}

// leave pops the active frame and transfers its top value to the caller,
// or to the run result when the outermost frame returns.
func (vm *VirtualMachine) leave() error {
	callee := &vm.frames[len(vm.frames)-1]
	fn, name := callee.fn, callee.code.Label(callee.fn)
	v, has := callee.top()
	vm.frames = vm.frames[:len(vm.frames)-1]
	if len(vm.frames) == 0 {
		vm.result, vm.hasResult = v, has
	} else if has {
		if err := vm.frames[len(vm.frames)-1].push(v, vm.maxStackDepth); err != nil {
			return err
		}
	}
	if vm.observer != nil && vm.observerCfg.ObserveReturns {
		if !vm.observer.OnReturn(ReturnEvent{
			Func:         fn,
			FunctionName: name,
			HasValue:     has,
			FrameDepth:   len(vm.frames),
		}) {
			return ErrHalted
		}
	}
	return nil
}

// locate fills in where a fault happened. Errors that are not faults are
// returned unchanged.
func (vm *VirtualMachine) locate(err error, fn, ip int, code op.Code) error {
	var fault *Fault
	if !errors.As(err, &fault) {
		return err
	}
	fault.Func = fn
	fault.IP = ip
	fault.Op = code
	fault.Stack = vm.captureStack(ip)
	return fault
}

// captureStack builds a stack trace from the active frames, innermost
// first. Callers are reported at their call instruction.
func (vm *VirtualMachine) captureStack(ip int) []StackFrame {
	stack := make([]StackFrame, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := &vm.frames[i]
		at := f.ip - 1
		if i == len(vm.frames)-1 {
			at = ip
		}
		stack = append(stack, StackFrame{Func: f.fn, IP: at})
	}
	return stack
}
