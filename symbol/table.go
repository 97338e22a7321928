package symbol

import (
	"errors"
	"fmt"
)

// ErrRedefined is returned when a name is bound twice in the same scope.
var ErrRedefined = errors.New("already defined in this scope")

// ScopeID is a handle to a Scope stored in a Table.
type ScopeID int

// NoScope is the parent of the root scope.
const NoScope ScopeID = -1

// ScopeKind enumerates scope categories.
type ScopeKind uint8

const (
	RootScope ScopeKind = iota + 1
	FunctionScope
	BlockScope
)

func (k ScopeKind) String() string {
	switch k {
	case RootScope:
		return "root"
	case FunctionScope:
		return "function"
	case BlockScope:
		return "block"
	default:
		return "invalid"
	}
}

// Scope is one lexical scope. Parent is a non-owning back-reference used
// only for lookup.
type Scope struct {
	Kind   ScopeKind
	Parent ScopeID
	defs   map[string]SymbolDef
	order  []string
}

// Names returns the names bound directly in this scope in insertion order.
func (s *Scope) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Table is an arena of scopes. Scopes are never removed for the lifetime of
// the table, so handles held by AST nodes stay valid after parsing.
type Table struct {
	scopes []*Scope
}

// NewTable returns a table holding only the root scope.
func NewTable() *Table {
	t := &Table{}
	t.push(RootScope, NoScope)
	return t
}

// Root returns the handle of the root scope.
func (t *Table) Root() ScopeID {
	return 0
}

func (t *Table) push(kind ScopeKind, parent ScopeID) ScopeID {
	t.scopes = append(t.scopes, &Scope{
		Kind:   kind,
		Parent: parent,
		defs:   map[string]SymbolDef{},
	})
	return ScopeID(len(t.scopes) - 1)
}

// NewChild creates a scope enclosed by parent.
func (t *Table) NewChild(parent ScopeID, kind ScopeKind) ScopeID {
	if !t.valid(parent) {
		panic(fmt.Sprintf("symbol: invalid parent scope %d", parent))
	}
	return t.push(kind, parent)
}

// Scope returns the scope for the handle.
func (t *Table) Scope(id ScopeID) *Scope {
	if !t.valid(id) {
		return nil
	}
	return t.scopes[id]
}

// Parent returns the enclosing scope, or NoScope for the root.
func (t *Table) Parent(id ScopeID) ScopeID {
	if !t.valid(id) {
		return NoScope
	}
	return t.scopes[id].Parent
}

// Len returns the number of scopes created so far.
func (t *Table) Len() int {
	return len(t.scopes)
}

func (t *Table) valid(id ScopeID) bool {
	return id >= 0 && int(id) < len(t.scopes)
}

// Insert binds name in scope. A name may be bound only once per scope,
// whatever its kind. Binding the same name in a child scope shadows the
// outer binding.
func (t *Table) Insert(scope ScopeID, name string, def SymbolDef) error {
	s := t.Scope(scope)
	if s == nil {
		return fmt.Errorf("symbol: invalid scope %d", scope)
	}
	if existing, ok := s.defs[name]; ok {
		return fmt.Errorf("%w: %q is a %s", ErrRedefined, name, existing.Kind)
	}
	s.defs[name] = def
	s.order = append(s.order, name)
	return nil
}

// Lookup returns the binding of name in scope only, ignoring ancestors.
func (t *Table) Lookup(scope ScopeID, name string) (SymbolDef, bool) {
	s := t.Scope(scope)
	if s == nil {
		return SymbolDef{}, false
	}
	def, ok := s.defs[name]
	return def, ok
}

// FindDef searches scope and then each ancestor, innermost first, and
// returns the first binding of name.
func (t *Table) FindDef(scope ScopeID, name string) (SymbolDef, bool) {
	for id := scope; t.valid(id); id = t.scopes[id].Parent {
		if def, ok := t.scopes[id].defs[name]; ok {
			return def, true
		}
	}
	return SymbolDef{}, false
}

// Enclosing walks up from scope and returns the nearest scope of the given
// kind.
func (t *Table) Enclosing(scope ScopeID, kind ScopeKind) (ScopeID, bool) {
	for id := scope; t.valid(id); id = t.scopes[id].Parent {
		if t.scopes[id].Kind == kind {
			return id, true
		}
	}
	return NoScope, false
}

// Depth returns the number of ancestors of scope.
func (t *Table) Depth(scope ScopeID) int {
	depth := 0
	for id := t.Parent(scope); t.valid(id); id = t.scopes[id].Parent {
		depth++
	}
	return depth
}

// Visible returns every name that FindDef can resolve from scope, innermost
// scope first. A shadowed name appears once.
func (t *Table) Visible(scope ScopeID) []string {
	var out []string
	seen := map[string]bool{}
	for id := scope; t.valid(id); id = t.scopes[id].Parent {
		for _, name := range t.scopes[id].order {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
