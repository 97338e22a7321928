package vm

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/cloudcmds/c0/bytecode"
	"github.com/cloudcmds/c0/op"
)

// haltError is the error for a run stopped by the halt flag. It is never nil.
func haltError(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrHalted
}

func (vm *VirtualMachine) eval(ctx context.Context) error {
	var instructionCount int
	checkInterval := vm.contextCheckInterval
	doneChan := ctx.Done()

	for len(vm.frames) > 0 {
		if atomic.LoadInt32(&vm.halt) == 1 {
			return haltError(ctx)
		}
		if checkInterval > 0 && doneChan != nil {
			instructionCount++
			if instructionCount >= checkInterval {
				instructionCount = 0
				select {
				case <-doneChan:
					atomic.StoreInt32(&vm.halt, 1)
					return haltError(ctx)
				default:
				}
			}
		}

		f := &vm.frames[len(vm.frames)-1]
		ip := f.ip

		// Falling off the end of a function returns from it.
		if ip >= f.code.InstructionCount() {
			fn := f.fn
			if err := vm.leave(); err != nil {
				return vm.locate(err, fn, ip, op.Ret)
			}
			continue
		}

		ins := f.code.InstructionAt(ip)
		if vm.observer != nil && !vm.step(f, ins) {
			return ErrHalted
		}
		if vm.trace {
			vm.log.Trace().
				Int("fn", f.fn).
				Int("ip", ip).
				Str("op", ins.String()).
				Int("stack", len(f.stack)).
				Int("depth", len(vm.frames)).
				Msg("step")
		}

		f.ip++
		vm.steps++
		if err := vm.exec(f, ins); err != nil {
			return vm.locate(err, f.fn, ip, ins.Op)
		}
	}
	return nil
}

func (vm *VirtualMachine) step(f *frame, ins op.Instruction) bool {
	switch vm.observerCfg.StepMode {
	case StepNone:
		return true
	case StepSampled:
		vm.sampledSteps++
		if vm.sampledSteps < vm.observerCfg.SampleInterval {
			return true
		}
		vm.sampledSteps = 0
	}
	return vm.observer.OnStep(StepEvent{
		Func:       f.fn,
		IP:         f.ip,
		Opcode:     ins.Op,
		OpcodeName: ins.Op.String(),
		StackDepth: len(f.stack),
		FrameDepth: len(vm.frames),
	})
}

// exec executes one instruction in frame f, whose ip already points past
// it. f must not be used after a call since the frame slice may grow.
func (vm *VirtualMachine) exec(f *frame, ins op.Instruction) error {
	switch ins.Op {
	case op.Nop:
		return nil
	case op.CPush:
		return vm.push(f, IntValue(int32(uint8(ins.A))))
	case op.IPush:
		return vm.push(f, IntValue(ins.Int()))
	case op.Pop1:
		_, err := f.pop()
		return err
	case op.Pop2:
		_, err := f.popN(2)
		return err
	case op.PopN:
		_, err := f.popN(int(ins.A))
		return err
	case op.Dup:
		v, ok := f.top()
		if !ok {
			return faultf(StackUnderflow, "operand stack is empty")
		}
		return vm.push(f, v)
	case op.Dup2:
		if len(f.stack) < 2 {
			return faultf(StackUnderflow, "need 2 operand(s), have %d", len(f.stack))
		}
		a, b := f.stack[len(f.stack)-2], f.stack[len(f.stack)-1]
		if err := vm.push(f, a); err != nil {
			return err
		}
		return vm.push(f, b)

	case op.LoadC:
		return vm.loadConstant(f, int(ins.A))
	case op.LoadA:
		index := int(ins.A) + int(ins.B)
		if _, err := f.local(index); err != nil {
			return err
		}
		return vm.push(f, RefValue(Reference{
			space:  localSpace,
			depth:  len(vm.frames) - 1,
			serial: f.serial,
			index:  index,
		}))
	case op.New:
		return vm.alloc(f, 1)
	case op.SNew:
		n, err := popInt(f)
		if err != nil {
			return err
		}
		if n < 0 {
			return faultf(ArrayIndex, "negative array length %d", n)
		}
		return vm.alloc(f, int(n))

	case op.ILoad, op.DLoad, op.ALoad:
		r, err := popRef(f)
		if err != nil {
			return err
		}
		return vm.load(f, ins.Op, r)
	case op.IALoad, op.DALoad, op.AALoad:
		r, err := vm.element(f, ins.Op == op.DALoad)
		if err != nil {
			return err
		}
		return vm.load(f, ins.Op, r)
	case op.IStore, op.DStore, op.AStore:
		v, err := popStored(f, ins.Op)
		if err != nil {
			return err
		}
		r, err := popRef(f)
		if err != nil {
			return err
		}
		return vm.store(r, v)
	case op.IAStore, op.DAStore, op.AAStore:
		v, err := popStored(f, ins.Op)
		if err != nil {
			return err
		}
		r, err := vm.element(f, ins.Op == op.DAStore)
		if err != nil {
			return err
		}
		return vm.store(r, v)

	case op.IAdd, op.ISub, op.IMul, op.IDiv, op.ICmp:
		b, err := popInt(f)
		if err != nil {
			return err
		}
		a, err := popInt(f)
		if err != nil {
			return err
		}
		v, err := intBinary(ins.Op, a, b)
		if err != nil {
			return err
		}
		return vm.push(f, IntValue(v))
	case op.DAdd, op.DSub, op.DMul, op.DDiv, op.DCmp:
		b, err := popDouble(f)
		if err != nil {
			return err
		}
		a, err := popDouble(f)
		if err != nil {
			return err
		}
		if ins.Op == op.DCmp {
			return vm.push(f, IntValue(compareDouble(a, b)))
		}
		return vm.push(f, DoubleValue(doubleBinary(ins.Op, a, b)))
	case op.INeg:
		a, err := popInt(f)
		if err != nil {
			return err
		}
		return vm.push(f, IntValue(-a))
	case op.DNeg:
		a, err := popDouble(f)
		if err != nil {
			return err
		}
		return vm.push(f, DoubleValue(-a))

	case op.I2D:
		a, err := popInt(f)
		if err != nil {
			return err
		}
		return vm.push(f, DoubleValue(float64(a)))
	case op.D2I:
		a, err := popDouble(f)
		if err != nil {
			return err
		}
		return vm.push(f, IntValue(truncate(a)))
	case op.I2C:
		a, err := popInt(f)
		if err != nil {
			return err
		}
		return vm.push(f, IntValue(a&0xff))

	case op.Jmp, op.Je, op.Jne, op.Jl, op.Jge, op.Jg, op.Jle:
		target := int(ins.A)
		if target > f.code.InstructionCount() {
			return faultf(JumpTarget, "jump target %d out of range (%d instructions)",
				target, f.code.InstructionCount())
		}
		if ins.Op != op.Jmp {
			v, err := popInt(f)
			if err != nil {
				return err
			}
			if !jumpTaken(ins.Op, v) {
				return nil
			}
		}
		f.ip = target
		return nil

	case op.Call:
		fn := int(ins.A)
		if fn >= vm.module.FunctionCount() {
			return faultf(FunctionIndex, "function %d out of range (%d functions)",
				fn, vm.module.FunctionCount())
		}
		if len(vm.frames) >= vm.maxFrameDepth {
			return faultf(FrameOverflow, "call depth limit of %d exceeded", vm.maxFrameDepth)
		}
		args, err := f.popN(vm.module.FunctionAt(fn).Params())
		if err != nil {
			return err
		}
		return vm.enter(fn, args)
	case op.Ret:
		return vm.leave()

	case op.IPrint, op.DPrint, op.CPrint, op.SPrint, op.PrintLn:
		return vm.print(f, ins.Op)
	case op.IScan, op.DScan, op.CScan:
		return vm.scan(f, ins.Op)
	}
	return faultf(MalformedModule, "unknown opcode 0x%02x", uint8(ins.Op))
}

func (vm *VirtualMachine) push(f *frame, v Value) error {
	return f.push(v, vm.maxStackDepth)
}

func (vm *VirtualMachine) loadConstant(f *frame, index int) error {
	if index >= vm.module.ConstantCount() {
		return faultf(ConstantIndex, "constant %d out of range (%d constants)",
			index, vm.module.ConstantCount())
	}
	c := vm.module.ConstantAt(index)
	switch c.Kind {
	case bytecode.Integer:
		return vm.push(f, IntValue(c.Int))
	case bytecode.Float:
		return vm.push(f, DoubleValue(c.Float))
	default:
		return vm.push(f, StringValue(c.Str))
	}
}

// element pops an index and an array reference and returns a reference to
// the element. Double elements of an array in locals are two slots wide.
func (vm *VirtualMachine) element(f *frame, double bool) (Reference, error) {
	index, err := popInt(f)
	if err != nil {
		return Reference{}, err
	}
	arr, err := popRef(f)
	if err != nil {
		return Reference{}, err
	}
	if index < 0 {
		return Reference{}, faultf(ArrayIndex, "negative array index %d", index)
	}
	if double && arr.space == localSpace {
		return arr.offset(2 * int(index)), nil
	}
	return arr.offset(int(index)), nil
}

// deref returns the slot or cell r designates.
func (vm *VirtualMachine) deref(r Reference) (*Value, error) {
	switch r.space {
	case localSpace:
		if r.depth >= len(vm.frames) || vm.frames[r.depth].serial != r.serial {
			return nil, faultf(DanglingReference, "%s outlived its frame", r)
		}
		return vm.frames[r.depth].local(r.index)
	case heapSpace:
		return vm.heap.cell(r)
	default:
		return nil, faultf(DanglingReference, "null reference")
	}
}

func (vm *VirtualMachine) load(f *frame, code op.Code, r Reference) error {
	p, err := vm.deref(r)
	if err != nil {
		return err
	}
	v := *p
	switch code {
	case op.ILoad, op.IALoad:
		if v.kind == NoneKind || v.kind == IntKind {
			return vm.push(f, IntValue(v.i))
		}
	case op.DLoad, op.DALoad:
		if v.kind == NoneKind || v.kind == DoubleKind {
			return vm.push(f, DoubleValue(v.d))
		}
	default:
		switch v.kind {
		case NoneKind:
			return vm.push(f, RefValue(Reference{}))
		case RefKind, StringKind:
			return vm.push(f, v)
		}
	}
	return faultf(TypeMismatch, "%s through %s found %s", code, r, v.kind)
}

func (vm *VirtualMachine) store(r Reference, v Value) error {
	if v.kind == DoubleKind && r.space == localSpace {
		if _, err := vm.deref(r); err != nil {
			return err
		}
		return vm.frames[r.depth].storeDouble(r.index, v.d)
	}
	p, err := vm.deref(r)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// alloc pushes a reference to a new heap array of n cells.
func (vm *VirtualMachine) alloc(f *frame, n int) error {
	if n > vm.maxHeapCells-vm.heap.Cells() {
		return faultf(HeapOverflow, "allocating %d cell(s) exceeds the heap limit of %d", n, vm.maxHeapCells)
	}
	return vm.push(f, RefValue(vm.heap.Alloc(n)))
}

func popInt(f *frame) (int32, error) {
	v, err := f.pop()
	if err != nil {
		return 0, err
	}
	if v.kind != IntKind {
		return 0, faultf(TypeMismatch, "expected int, found %s", v.kind)
	}
	return v.i, nil
}

func popDouble(f *frame) (float64, error) {
	v, err := f.pop()
	if err != nil {
		return 0, err
	}
	if v.kind != DoubleKind {
		return 0, faultf(TypeMismatch, "expected double, found %s", v.kind)
	}
	return v.d, nil
}

func popRef(f *frame) (Reference, error) {
	v, err := f.pop()
	if err != nil {
		return Reference{}, err
	}
	if v.kind != RefKind {
		return Reference{}, faultf(TypeMismatch, "expected ref, found %s", v.kind)
	}
	return v.ref, nil
}

// popStored pops the value operand of a store instruction.
func popStored(f *frame, code op.Code) (Value, error) {
	v, err := f.pop()
	if err != nil {
		return Value{}, err
	}
	var ok bool
	switch code {
	case op.IStore, op.IAStore:
		ok = v.kind == IntKind
	case op.DStore, op.DAStore:
		ok = v.kind == DoubleKind
	default:
		ok = v.kind == RefKind || v.kind == StringKind
	}
	if !ok {
		return Value{}, faultf(TypeMismatch, "%s cannot store %s", code, v.kind)
	}
	return v, nil
}

func intBinary(code op.Code, a, b int32) (int32, error) {
	switch code {
	case op.IAdd:
		return a + b, nil
	case op.ISub:
		return a - b, nil
	case op.IMul:
		return a * b, nil
	case op.IDiv:
		if b == 0 {
			return 0, faultf(DivideByZero, "%d / 0", a)
		}
		return a / b, nil
	default:
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		}
		return 0, nil
	}
}

func doubleBinary(code op.Code, a, b float64) float64 {
	switch code {
	case op.DAdd:
		return a + b
	case op.DSub:
		return a - b
	case op.DMul:
		return a * b
	default:
		return a / b
	}
}

// compareDouble orders a and b; comparisons involving NaN yield 1.
func compareDouble(a, b float64) int32 {
	switch {
	case a < b:
		return -1
	case a == b:
		return 0
	}
	return 1
}

// truncate converts toward zero, saturating at the int32 range. NaN
// converts to 0.
func truncate(d float64) int32 {
	switch {
	case math.IsNaN(d):
		return 0
	case d >= math.MaxInt32:
		return math.MaxInt32
	case d <= math.MinInt32:
		return math.MinInt32
	}
	return int32(d)
}

func jumpTaken(code op.Code, v int32) bool {
	switch code {
	case op.Je:
		return v == 0
	case op.Jne:
		return v != 0
	case op.Jl:
		return v < 0
	case op.Jge:
		return v >= 0
	case op.Jg:
		return v > 0
	default:
		return v <= 0
	}
}
