package bytecode

import (
	"fmt"
	"math"

	"github.com/cloudcmds/c0/op"
	"github.com/hashicorp/go-multierror"
)

// Builder assembles a Module. Constants are interned, and jumps may refer
// to labels that are marked later in the same function.
type Builder struct {
	constants []Constant
	interned  map[constantKey]uint16
	functions []*FunctionBuilder
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{interned: map[constantKey]uint16{}}
}

// Constant adds c to the constant pool unless an equal constant is already
// there, and returns its index.
func (b *Builder) Constant(c Constant) uint16 {
	key := keyOf(c)
	if idx, ok := b.interned[key]; ok {
		return idx
	}
	idx := uint16(len(b.constants))
	b.constants = append(b.constants, c)
	b.interned[key] = idx
	return idx
}

// constantKey compares floats by bit pattern so 0 and -0 stay distinct.
type constantKey struct {
	kind ConstantKind
	bits uint64
	str  string
}

func keyOf(c Constant) constantKey {
	switch c.Kind {
	case Integer:
		return constantKey{kind: c.Kind, bits: uint64(uint32(c.Int))}
	case Float:
		return constantKey{kind: c.Kind, bits: math.Float64bits(c.Float)}
	default:
		return constantKey{kind: c.Kind, str: c.Str}
	}
}

// IntConst interns an integer constant.
func (b *Builder) IntConst(v int32) uint16 { return b.Constant(IntConstant(v)) }

// FloatConst interns a float constant.
func (b *Builder) FloatConst(v float64) uint16 { return b.Constant(FloatConstant(v)) }

// StringConst interns a string constant.
func (b *Builder) StringConst(v string) uint16 { return b.Constant(StringConstant(v)) }

// Function declares a new function and returns a builder for its body. The
// function's index is its declaration order.
func (b *Builder) Function(name string, params, locals uint16) *FunctionBuilder {
	fb := &FunctionBuilder{
		index:  uint16(len(b.functions)),
		name:   name,
		params: params,
		locals: locals,
	}
	b.functions = append(b.functions, fb)
	return fb
}

// Build resolves labels and returns the validated module.
func (b *Builder) Build() (*Module, error) {
	var result *multierror.Error
	if len(b.constants) > math.MaxUint16 {
		result = multierror.Append(result, fmt.Errorf("%w: %d constants", ErrTooLarge, len(b.constants)))
	}
	functions := make([]*Function, 0, len(b.functions))
	for _, fb := range b.functions {
		fn, err := fb.build()
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		functions = append(functions, fn)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	m := NewModule(ModuleParams{Constants: b.constants, Functions: functions})
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Label is a jump target within one function.
type Label int

type fixup struct {
	ip    int
	label Label
}

// FunctionBuilder appends instructions to one function. The first error
// is remembered and reported by Builder.Build.
type FunctionBuilder struct {
	index  uint16
	name   string
	params uint16
	locals uint16
	code   []op.Instruction
	labels []int
	fixups []fixup
	errs   *multierror.Error
}

// Index returns the function's index in the module.
func (f *FunctionBuilder) Index() uint16 {
	return f.index
}

// Len returns the number of instructions emitted so far, which is also the
// index of the next instruction.
func (f *FunctionBuilder) Len() int {
	return len(f.code)
}

// Emit appends an instruction.
func (f *FunctionBuilder) Emit(code op.Code, operands ...int64) *FunctionBuilder {
	ins, err := op.Make(code, operands...)
	if err != nil {
		f.errs = multierror.Append(f.errs, fmt.Errorf("%s ip %d: %w", f.label(), len(f.code), err))
		return f
	}
	f.code = append(f.code, ins)
	return f
}

// Op appends instructions that take no operands.
func (f *FunctionBuilder) Op(codes ...op.Code) *FunctionBuilder {
	for _, code := range codes {
		f.Emit(code)
	}
	return f
}

func (f *FunctionBuilder) IPush(v int32) *FunctionBuilder { return f.Emit(op.IPush, int64(v)) }
func (f *FunctionBuilder) CPush(v uint8) *FunctionBuilder { return f.Emit(op.CPush, int64(v)) }
func (f *FunctionBuilder) PopN(n uint32) *FunctionBuilder { return f.Emit(op.PopN, int64(n)) }
func (f *FunctionBuilder) LoadC(idx uint16) *FunctionBuilder {
	return f.Emit(op.LoadC, int64(idx))
}

// LoadA pushes a reference to local slot+offset.
func (f *FunctionBuilder) LoadA(slot uint16, offset uint32) *FunctionBuilder {
	return f.Emit(op.LoadA, int64(slot), int64(offset))
}

// Call emits a call to the given function index.
func (f *FunctionBuilder) Call(fn uint16) *FunctionBuilder {
	return f.Emit(op.Call, int64(fn))
}

// NewLabel returns an unmarked label.
func (f *FunctionBuilder) NewLabel() Label {
	f.labels = append(f.labels, -1)
	return Label(len(f.labels) - 1)
}

// Mark binds label to the index of the next instruction.
func (f *FunctionBuilder) Mark(label Label) *FunctionBuilder {
	if int(label) >= len(f.labels) {
		f.errs = multierror.Append(f.errs, fmt.Errorf("%s: unknown label %d", f.label(), label))
		return f
	}
	if f.labels[label] >= 0 {
		f.errs = multierror.Append(f.errs, fmt.Errorf("%s: label %d marked twice", f.label(), label))
		return f
	}
	f.labels[label] = len(f.code)
	return f
}

// Jump emits a jump instruction to label. The target is patched when the
// function is built.
func (f *FunctionBuilder) Jump(code op.Code, label Label) *FunctionBuilder {
	if !code.IsJump() {
		f.errs = multierror.Append(f.errs, fmt.Errorf("%s ip %d: %s is not a jump", f.label(), len(f.code), code))
		return f
	}
	f.fixups = append(f.fixups, fixup{ip: len(f.code), label: label})
	return f.Emit(code, 0)
}

func (f *FunctionBuilder) label() string {
	if f.name != "" {
		return f.name
	}
	return fmt.Sprintf("fn%d", f.index)
}

func (f *FunctionBuilder) build() (*Function, error) {
	errs := f.errs
	for _, fx := range f.fixups {
		if int(fx.label) >= len(f.labels) || f.labels[fx.label] < 0 {
			errs = multierror.Append(errs, fmt.Errorf("%s ip %d: label %d is never marked", f.label(), fx.ip, fx.label))
			continue
		}
		f.code[fx.ip].A = uint32(f.labels[fx.label])
	}
	if len(f.code) > math.MaxUint16 {
		errs = multierror.Append(errs, fmt.Errorf("%w: %s has %d instructions", ErrTooLarge, f.label(), len(f.code)))
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return NewFunction(FunctionParams{
		Name:         f.name,
		Params:       f.params,
		Locals:       f.locals,
		Instructions: f.code,
	}), nil
}
