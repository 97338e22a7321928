package vm

import "github.com/cloudcmds/c0/bytecode"

// frame is one function activation. Each frame owns its locals and a
// private operand stack.
type frame struct {
	fn     int
	code   *bytecode.Function
	ip     int
	serial uint64
	locals []Value
	stack  []Value
}

func (f *frame) activate(fn int, code *bytecode.Function, serial uint64) {
	f.fn = fn
	f.code = code
	f.ip = 0
	f.serial = serial
	f.stack = f.stack[:0]
	if cap(f.locals) >= code.Locals() {
		f.locals = f.locals[:code.Locals()]
		for i := range f.locals {
			f.locals[i] = Value{}
		}
	} else {
		f.locals = make([]Value, code.Locals())
	}
}

func (f *frame) push(v Value, max int) error {
	if len(f.stack) >= max {
		return faultf(StackOverflow, "operand stack limit of %d exceeded", max)
	}
	f.stack = append(f.stack, v)
	return nil
}

func (f *frame) pop() (Value, error) {
	if len(f.stack) == 0 {
		return Value{}, faultf(StackUnderflow, "operand stack is empty")
	}
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v, nil
}

// popN removes n values. The values are returned bottom first.
func (f *frame) popN(n int) ([]Value, error) {
	if n > len(f.stack) {
		return nil, faultf(StackUnderflow, "need %d operand(s), have %d", n, len(f.stack))
	}
	vals := f.stack[len(f.stack)-n:]
	f.stack = f.stack[:len(f.stack)-n]
	return vals, nil
}

func (f *frame) top() (Value, bool) {
	if len(f.stack) == 0 {
		return Value{}, false
	}
	return f.stack[len(f.stack)-1], true
}

// local returns a pointer to local slot i.
func (f *frame) local(i int) (*Value, error) {
	if i < 0 || i >= len(f.locals) {
		return nil, faultf(LocalIndex, "local slot %d out of range (%d locals)", i, len(f.locals))
	}
	return &f.locals[i], nil
}

// storeDouble writes a double to locals i and i+1.
func (f *frame) storeDouble(i int, v float64) error {
	if i < 0 || i+1 >= len(f.locals) {
		return faultf(LocalIndex, "double at local slot %d needs slots %d and %d (%d locals)",
			i, i, i+1, len(f.locals))
	}
	f.locals[i] = DoubleValue(v)
	f.locals[i+1] = Value{kind: highKind}
	return nil
}

// bind places call arguments in the first locals. A double argument fills
// two slots.
func (f *frame) bind(args []Value) error {
	slot := 0
	for _, arg := range args {
		if arg.kind == DoubleKind {
			if err := f.storeDouble(slot, arg.d); err != nil {
				return err
			}
			slot += 2
			continue
		}
		p, err := f.local(slot)
		if err != nil {
			return err
		}
		*p = arg
		slot++
	}
	return nil
}
