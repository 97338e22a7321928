package bytecode

// Magic identifies an o0 module. It is the first word of every encoded
// module.
const Magic uint32 = 0x43303A29

// Version is the only module format version this package reads and writes.
const Version uint32 = 1

// Module is an immutable o0 module: a constant pool and a function table.
// Function 0 is the entry point unless the VM is told otherwise.
type Module struct {
	magic     uint32
	version   uint32
	constants []Constant
	functions []*Function
}

// ModuleParams contains parameters for creating a new Module. Zero Magic
// and Version select the package defaults.
type ModuleParams struct {
	Magic     uint32
	Version   uint32
	Constants []Constant
	Functions []*Function
}

// NewModule creates a new immutable Module from the given parameters.
// Input slices are copied; functions are already immutable.
func NewModule(params ModuleParams) *Module {
	m := &Module{
		magic:   params.Magic,
		version: params.Version,
	}
	if m.magic == 0 {
		m.magic = Magic
	}
	if m.version == 0 {
		m.version = Version
	}
	if params.Constants != nil {
		m.constants = make([]Constant, len(params.Constants))
		copy(m.constants, params.Constants)
	}
	if params.Functions != nil {
		m.functions = make([]*Function, len(params.Functions))
		copy(m.functions, params.Functions)
	}
	return m
}

// Magic returns the module's magic number.
func (m *Module) Magic() uint32 {
	return m.magic
}

// Version returns the module's format version.
func (m *Module) Version() uint32 {
	return m.version
}

// ConstantCount returns the size of the constant pool.
func (m *Module) ConstantCount() int {
	return len(m.constants)
}

// ConstantAt returns the constant at the given index.
func (m *Module) ConstantAt(index int) Constant {
	return m.constants[index]
}

// FunctionCount returns the number of functions.
func (m *Module) FunctionCount() int {
	return len(m.functions)
}

// FunctionAt returns the function at the given index.
func (m *Module) FunctionAt(index int) *Function {
	return m.functions[index]
}
