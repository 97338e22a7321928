package bytecode

import (
	"fmt"
	"strconv"
)

// ConstantKind is the tag of a constant in the constant pool. The values
// are the tags used in the binary format.
type ConstantKind uint8

const (
	Integer ConstantKind = 0
	Float   ConstantKind = 1
	String  ConstantKind = 2
)

func (k ConstantKind) String() string {
	switch k {
	case Integer:
		return "int"
	case Float:
		return "double"
	case String:
		return "string"
	default:
		return fmt.Sprintf("ConstantKind(%d)", uint8(k))
	}
}

// Constant is an entry in a module's constant pool. Only the field that
// matches Kind is meaningful.
type Constant struct {
	Kind  ConstantKind
	Int   int32
	Float float64
	Str   string
}

// IntConstant returns an integer constant.
func IntConstant(v int32) Constant {
	return Constant{Kind: Integer, Int: v}
}

// FloatConstant returns a float constant.
func FloatConstant(v float64) Constant {
	return Constant{Kind: Float, Float: v}
}

// StringConstant returns a string constant.
func StringConstant(v string) Constant {
	return Constant{Kind: String, Str: v}
}

// Value returns the constant's payload as an int32, float64 or string.
func (c Constant) Value() any {
	switch c.Kind {
	case Integer:
		return c.Int
	case Float:
		return c.Float
	default:
		return c.Str
	}
}

func (c Constant) String() string {
	switch c.Kind {
	case Integer:
		return strconv.FormatInt(int64(c.Int), 10)
	case Float:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	case String:
		return strconv.Quote(c.Str)
	default:
		return "?"
	}
}
