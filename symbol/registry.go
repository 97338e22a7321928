package symbol

import (
	"fmt"
	"strings"
)

// Registry is the global table of types and variables for one parse pass.
// Each TypeDef and VarDef gets a stable integer id, and each id has a
// unique registry name.
type Registry struct {
	types     []TypeDef
	typeNames *Names
	vars      []VarDef
	varNames  *Names
}

// NewRegistry returns a registry with the primitive types registered.
func NewRegistry() *Registry {
	r := &Registry{
		typeNames: NewNames(),
		varNames:  NewNames(),
	}
	for _, name := range primitives {
		if _, err := r.InsertType(TypeDef{Kind: Primitive, Name: name}); err != nil {
			panic(err)
		}
	}
	return r
}

// InsertType registers a type under def.Name and returns its id.
func (r *Registry) InsertType(def TypeDef) (int, error) {
	id := len(r.types)
	if err := r.typeNames.Insert(id, def.Name); err != nil {
		return 0, fmt.Errorf("type %q: %w", def.Name, err)
	}
	r.types = append(r.types, def)
	return id, nil
}

// InternFunctionType returns the id of the function type with the given
// signature, registering it on first use.
func (r *Registry) InternFunctionType(params []int, result int) int {
	var b strings.Builder
	b.WriteString("fn(")
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.TypeName(p))
	}
	b.WriteString(") -> ")
	b.WriteString(r.TypeName(result))
	name := b.String()
	if id, ok := r.typeNames.ID(name); ok {
		return id
	}
	id, err := r.InsertType(TypeDef{
		Kind:   Function,
		Name:   name,
		Params: append([]int(nil), params...),
		Result: result,
	})
	if err != nil {
		// The name was checked above, so only a broken id sequence lands here.
		panic(err)
	}
	return id
}

// InternArrayType returns the id of the array type with the given element
// type, registering it on first use.
func (r *Registry) InternArrayType(elem int) int {
	name := r.TypeName(elem) + "[]"
	if id, ok := r.typeNames.ID(name); ok {
		return id
	}
	id, err := r.InsertType(TypeDef{Kind: Array, Name: name, Elem: elem})
	if err != nil {
		panic(err)
	}
	return id
}

// InsertVar registers a variable and returns its id. The registry name is
// qualified by scope so shadowing variables can coexist.
func (r *Registry) InsertVar(def VarDef) (int, error) {
	id := len(r.vars)
	if err := r.varNames.Insert(id, QualifiedName(def.Name, def.Scope)); err != nil {
		return 0, fmt.Errorf("variable %q: %w", def.Name, err)
	}
	r.vars = append(r.vars, def)
	return id, nil
}

// QualifiedName returns the registry name of a variable declared in scope.
func QualifiedName(name string, scope ScopeID) string {
	return fmt.Sprintf("%s#%d", name, scope)
}

// Type returns the type with the given id.
func (r *Registry) Type(id int) (TypeDef, bool) {
	if id < 0 || id >= len(r.types) {
		return TypeDef{}, false
	}
	return r.types[id], true
}

// TypeName returns the name of the type with the given id, or "?" if the
// id is unknown.
func (r *Registry) TypeName(id int) string {
	if name, ok := r.typeNames.Name(id); ok {
		return name
	}
	return "?"
}

// TypeByName returns the id of the named type.
func (r *Registry) TypeByName(name string) (int, bool) {
	return r.typeNames.ID(name)
}

// Var returns the variable with the given id.
func (r *Registry) Var(id int) (VarDef, bool) {
	if id < 0 || id >= len(r.vars) {
		return VarDef{}, false
	}
	return r.vars[id], true
}

// VarByName returns the id of the variable declared as name in scope.
func (r *Registry) VarByName(name string, scope ScopeID) (int, bool) {
	return r.varNames.ID(QualifiedName(name, scope))
}

// TypeCount returns the number of registered types.
func (r *Registry) TypeCount() int { return len(r.types) }

// VarCount returns the number of registered variables.
func (r *Registry) VarCount() int { return len(r.vars) }

// DeclareType registers def and binds its name in scope.
func (r *Registry) DeclareType(t *Table, scope ScopeID, def TypeDef) (int, error) {
	if _, ok := t.Lookup(scope, def.Name); ok {
		return 0, fmt.Errorf("%w: %q", ErrRedefined, def.Name)
	}
	id, err := r.InsertType(def)
	if err != nil {
		return 0, err
	}
	if err := t.Insert(scope, def.Name, SymbolDef{Kind: TypeSym, ID: id}); err != nil {
		return 0, err
	}
	return id, nil
}

// DeclareVar registers def and binds its name in def.Scope. The scope is
// checked before anything is registered, so a failed declaration leaves
// both the table and the registry untouched.
func (r *Registry) DeclareVar(t *Table, def VarDef) (int, error) {
	if existing, ok := t.Lookup(def.Scope, def.Name); ok {
		return 0, fmt.Errorf("%w: %q is a %s", ErrRedefined, def.Name, existing.Kind)
	}
	id, err := r.InsertVar(def)
	if err != nil {
		return 0, err
	}
	if err := t.Insert(def.Scope, def.Name, SymbolDef{Kind: VarSym, ID: id}); err != nil {
		return 0, err
	}
	return id, nil
}

// BindPrimitives binds every registered primitive type in the given scope,
// normally the root scope of a fresh Table.
func (r *Registry) BindPrimitives(t *Table, scope ScopeID) error {
	for _, name := range primitives {
		id, _ := r.typeNames.ID(name)
		if err := t.Insert(scope, name, SymbolDef{Kind: TypeSym, ID: id}); err != nil {
			return err
		}
	}
	return nil
}
