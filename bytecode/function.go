package bytecode

import (
	"fmt"

	"github.com/cloudcmds/c0/op"
)

// Function is an immutable compiled function. Its first Params locals hold
// the arguments; Locals is the total number of local slots and is never
// less than Params.
type Function struct {
	name         string
	params       uint16
	locals       uint16
	instructions []op.Instruction
}

// FunctionParams contains parameters for creating a new Function.
type FunctionParams struct {
	// Name is for listings only and is not part of the binary format.
	Name         string
	Params       uint16
	Locals       uint16
	Instructions []op.Instruction
}

// NewFunction creates a new immutable Function from the given parameters.
// The instruction slice is copied.
func NewFunction(params FunctionParams) *Function {
	return &Function{
		name:         params.Name,
		params:       params.Params,
		locals:       params.Locals,
		instructions: copyInstructions(params.Instructions),
	}
}

// Name returns the function's name, which is empty for decoded modules.
func (f *Function) Name() string {
	return f.name
}

// Params returns the number of parameters.
func (f *Function) Params() int {
	return int(f.params)
}

// Locals returns the number of local slots.
func (f *Function) Locals() int {
	return int(f.locals)
}

// InstructionCount returns the number of instructions.
func (f *Function) InstructionCount() int {
	return len(f.instructions)
}

// InstructionAt returns the instruction at the given index.
func (f *Function) InstructionAt(index int) op.Instruction {
	return f.instructions[index]
}

// Label returns the function's name, or "fn<index>" if it has none.
func (f *Function) Label(index int) string {
	if f.name != "" {
		return f.name
	}
	return fmt.Sprintf("fn%d", index)
}

func (f *Function) String() string {
	return fmt.Sprintf("function(params=%d, locals=%d, instructions=%d)",
		f.params, f.locals, len(f.instructions))
}

func copyInstructions(src []op.Instruction) []op.Instruction {
	if src == nil {
		return nil
	}
	dst := make([]op.Instruction, len(src))
	copy(dst, src)
	return dst
}
