package vm

import (
	"fmt"
	"strconv"
)

// Kind is the type of a Value.
type Kind uint8

const (
	// NoneKind is the zero Value, held by locals and heap cells that were
	// never stored to. It loads as 0, 0.0 or a null reference.
	NoneKind Kind = iota
	IntKind
	DoubleKind
	RefKind
	StringKind

	// highKind marks the second local slot of a double.
	highKind
)

func (k Kind) String() string {
	switch k {
	case NoneKind:
		return "none"
	case IntKind:
		return "int"
	case DoubleKind:
		return "double"
	case RefKind:
		return "ref"
	case StringKind:
		return "string"
	case highKind:
		return "double(high)"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is one operand stack slot, local slot or heap cell.
type Value struct {
	kind Kind
	i    int32
	d    float64
	s    string
	ref  Reference
}

// IntValue returns an int value.
func IntValue(v int32) Value { return Value{kind: IntKind, i: v} }

// DoubleValue returns a double value.
func DoubleValue(v float64) Value { return Value{kind: DoubleKind, d: v} }

// StringValue returns a string value. Strings only come from constants.
func StringValue(v string) Value { return Value{kind: StringKind, s: v} }

// RefValue returns a reference value.
func RefValue(r Reference) Value { return Value{kind: RefKind, ref: r} }

func (v Value) Kind() Kind { return v.kind }

// Int returns the int payload. A NoneKind value reads as 0.
func (v Value) Int() int32 { return v.i }

// Double returns the double payload. A NoneKind value reads as 0.
func (v Value) Double() float64 { return v.d }

// Str returns the string payload.
func (v Value) Str() string { return v.s }

// Ref returns the reference payload. A NoneKind value reads as the null
// reference.
func (v Value) Ref() Reference { return v.ref }

func (v Value) String() string {
	switch v.kind {
	case IntKind:
		return strconv.FormatInt(int64(v.i), 10)
	case DoubleKind:
		return strconv.FormatFloat(v.d, 'g', -1, 64)
	case StringKind:
		return strconv.Quote(v.s)
	case RefKind:
		return v.ref.String()
	default:
		return v.kind.String()
	}
}

type space uint8

const (
	nullSpace space = iota
	localSpace
	heapSpace
)

// Reference designates a local slot of a live frame or a heap cell. Local
// references carry the frame's depth and activation serial so that a
// reference outliving its frame is detected. Heap references carry the heap
// generation they were allocated in.
type Reference struct {
	space  space
	depth  int
	serial uint64
	object int
	gen    uint32
	index  int
}

// IsNull reports whether the reference designates nothing.
func (r Reference) IsNull() bool { return r.space == nullSpace }

// IsHeap reports whether the reference designates a heap cell.
func (r Reference) IsHeap() bool { return r.space == heapSpace }

// Index returns the slot or cell index the reference designates.
func (r Reference) Index() int { return r.index }

// offset returns a reference n slots or cells further on.
func (r Reference) offset(n int) Reference {
	r.index += n
	return r
}

func (r Reference) String() string {
	switch r.space {
	case localSpace:
		return fmt.Sprintf("&local[%d]@%d", r.index, r.depth)
	case heapSpace:
		return fmt.Sprintf("&heap[%d][%d]", r.object, r.index)
	default:
		return "null"
	}
}
