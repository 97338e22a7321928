package symbol

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID is returned when inserting an id that is already mapped.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrDuplicateName is returned when inserting a name that is already mapped.
	ErrDuplicateName = errors.New("duplicate name")
)

// Names is a bidirectional id<->name mapping. Both directions are kept in
// sync: every id maps to exactly one name and every name to exactly one id.
type Names struct {
	byID   map[int]string
	byName map[string]int
}

// NewNames returns an empty mapping.
func NewNames() *Names {
	return &Names{
		byID:   map[int]string{},
		byName: map[string]int{},
	}
}

// Insert adds the pair. If either the id or the name is already present
// nothing is modified and an error is returned.
func (n *Names) Insert(id int, name string) error {
	if existing, ok := n.byID[id]; ok {
		return fmt.Errorf("%w: %d (mapped to %q)", ErrDuplicateID, id, existing)
	}
	if existing, ok := n.byName[name]; ok {
		return fmt.Errorf("%w: %q (mapped to %d)", ErrDuplicateName, name, existing)
	}
	n.byID[id] = name
	n.byName[name] = id
	return nil
}

// Name returns the name mapped to id.
func (n *Names) Name(id int) (string, bool) {
	name, ok := n.byID[id]
	return name, ok
}

// ID returns the id mapped to name.
func (n *Names) ID(name string) (int, bool) {
	id, ok := n.byName[name]
	return id, ok
}

// Len returns the number of pairs.
func (n *Names) Len() int {
	return len(n.byID)
}
