package vm

import (
	"io"

	"github.com/rs/zerolog"
)

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithOutput sets where the print instructions write. The default is
// io.Discard.
func WithOutput(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.output = w
	}
}

// WithInput sets where the scan instructions read from. The default is an
// empty reader.
func WithInput(r io.Reader) Option {
	return func(vm *VirtualMachine) {
		vm.input = r
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(vm *VirtualMachine) {
		vm.logger = logger
	}
}

// WithEntry sets the index of the function Run starts in. The default is 0.
func WithEntry(fn int) Option {
	return func(vm *VirtualMachine) {
		vm.entry = fn
	}
}

// WithMaxFrameDepth limits the call stack depth. Exceeding it is a
// FrameOverflow fault.
func WithMaxFrameDepth(depth int) Option {
	return func(vm *VirtualMachine) {
		vm.maxFrameDepth = depth
	}
}

// WithMaxStackDepth limits each frame's operand stack. Exceeding it is a
// StackOverflow fault.
func WithMaxStackDepth(depth int) Option {
	return func(vm *VirtualMachine) {
		vm.maxStackDepth = depth
	}
}

// WithMaxHeapCells limits the total number of heap cells a run may
// allocate. Exceeding it is a HeapOverflow fault.
func WithMaxHeapCells(cells int) Option {
	return func(vm *VirtualMachine) {
		vm.maxHeapCells = cells
	}
}

// WithTrace logs every dispatched instruction at trace level.
func WithTrace(enabled bool) Option {
	return func(vm *VirtualMachine) {
		vm.trace = enabled
	}
}

// WithObserver sets an observer for execution events.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}

// WithContextCheckInterval sets how often, in instructions, the VM checks
// ctx.Done() during execution. Zero disables the deterministic check and
// relies only on the goroutine that watches the context. The default is
// DefaultContextCheckInterval.
func WithContextCheckInterval(interval int) Option {
	return func(vm *VirtualMachine) {
		vm.contextCheckInterval = interval
	}
}
