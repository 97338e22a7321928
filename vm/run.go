package vm

import (
	"context"

	"github.com/cloudcmds/c0/bytecode"
)

// Run the given module in a new Virtual Machine and return the value the
// entry function transfers on return, if any.
func Run(ctx context.Context, mod *bytecode.Module, options ...Option) (Value, bool, error) {
	machine := New(mod, options...)
	if err := machine.Run(ctx); err != nil {
		return Value{}, false, err
	}
	v, ok := machine.TOS()
	return v, ok, nil
}

// RunBytes decodes an o0 module and runs it in a new Virtual Machine.
func RunBytes(ctx context.Context, data []byte, options ...Option) (Value, bool, error) {
	machine, err := Load(data, options...)
	if err != nil {
		return Value{}, false, err
	}
	if err := machine.Run(ctx); err != nil {
		return Value{}, false, err
	}
	v, ok := machine.TOS()
	return v, ok, nil
}
