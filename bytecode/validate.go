package bytecode

import (
	"fmt"

	"github.com/cloudcmds/c0/op"
	"github.com/hashicorp/go-multierror"
)

// Validate checks the module's structure and reports every problem found
// rather than stopping at the first: operand indexes into the constant and
// function tables, jump targets, local slots and the header fields. Errors
// that only depend on run time values, such as stack depth, are left to the
// VM.
func (m *Module) Validate() error {
	var result *multierror.Error
	if m.magic != Magic {
		result = multierror.Append(result, fmt.Errorf("%w: 0x%08x", ErrBadMagic, m.magic))
	}
	if m.version != Version {
		result = multierror.Append(result, fmt.Errorf("%w: %d", ErrUnsupportedVersion, m.version))
	}
	for i, c := range m.constants {
		if c.Kind > String {
			result = multierror.Append(result, fmt.Errorf("constant %d: %w %d", i, ErrUnknownConstant, c.Kind))
		}
	}
	for i, fn := range m.functions {
		if fn.locals < fn.params {
			result = multierror.Append(result, fmt.Errorf("fn %d: %d locals cannot hold %d params", i, fn.locals, fn.params))
		}
		for ip, ins := range fn.instructions {
			if err := m.validateInstruction(fn, ins); err != nil {
				result = multierror.Append(result, fmt.Errorf("fn %d, ip %d: %s: %w", i, ip, ins.Op, err))
			}
		}
	}
	return result.ErrorOrNil()
}

func (m *Module) validateInstruction(fn *Function, ins op.Instruction) error {
	if !op.GetInfo(ins.Op).Valid() {
		return ErrUnknownOpcode
	}
	switch {
	case ins.Op == op.LoadC:
		if int(ins.A) >= len(m.constants) {
			return fmt.Errorf("constant index %d out of range (%d constants)", ins.A, len(m.constants))
		}
	case ins.Op == op.Call:
		if int(ins.A) >= len(m.functions) {
			return fmt.Errorf("function index %d out of range (%d functions)", ins.A, len(m.functions))
		}
	case ins.Op == op.LoadA:
		if slot := uint64(ins.A) + uint64(ins.B); slot >= uint64(fn.locals) {
			return fmt.Errorf("local slot %d out of range (%d locals)", slot, fn.locals)
		}
	case ins.Op.IsJump():
		if int(ins.A) > len(fn.instructions) {
			return fmt.Errorf("jump target %d out of range (%d instructions)", ins.A, len(fn.instructions))
		}
	}
	return nil
}
