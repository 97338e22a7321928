// Package symbol tracks the names a C0 program declares: a lexical scope
// chain used while parsing, and the global tables that give every type and
// variable a stable integer id.
package symbol

import "fmt"

// Kind distinguishes the two kinds of binding a name may have. Types and
// variables share one namespace per scope.
type Kind uint8

const (
	TypeSym Kind = iota + 1
	VarSym
)

func (k Kind) String() string {
	switch k {
	case TypeSym:
		return "type"
	case VarSym:
		return "variable"
	default:
		return "unknown"
	}
}

// SymbolDef is a name's binding: the kind plus the id of the TypeDef or
// VarDef in the Registry.
type SymbolDef struct {
	Kind Kind
	ID   int
}

// IsType reports whether the binding names a type.
func (d SymbolDef) IsType() bool { return d.Kind == TypeSym }

// IsVar reports whether the binding names a variable.
func (d SymbolDef) IsVar() bool { return d.Kind == VarSym }

func (d SymbolDef) String() string {
	return fmt.Sprintf("%s#%d", d.Kind, d.ID)
}

// TypeKind describes the shape of a type.
type TypeKind uint8

const (
	Primitive TypeKind = iota + 1
	Function
	Array
)

// TypeDef describes a type. Params and Result are used by function types,
// Elem by array types.
type TypeDef struct {
	Kind   TypeKind
	Name   string
	Params []int
	Result int
	Elem   int
}

// VarDef describes a variable or a function binding.
type VarDef struct {
	// Name is the name as written in the source.
	Name string
	// Type is the id of the variable's TypeDef.
	Type int
	// Scope is the scope the variable was declared in.
	Scope ScopeID
	// Func is set for names bound by function definitions.
	Func bool
}

// Names of the primitive types registered by NewRegistry.
const (
	VoidType   = "void"
	IntType    = "int"
	DoubleType = "double"
	CharType   = "char"
	BoolType   = "bool"
	StringType = "string"
)

var primitives = []string{VoidType, IntType, DoubleType, CharType, BoolType, StringType}
