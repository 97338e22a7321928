// Package op defines the opcodes of the o0 instruction set executed by the
// C0 virtual machine.
package op

import (
	"fmt"
	"math"
	"strings"
)

// Code is a one byte opcode that indicates an operation to execute.
type Code uint8

const (
	Nop Code = 0x00

	// Push and pop
	CPush Code = 0x01
	IPush Code = 0x02
	Pop1  Code = 0x04
	Pop2  Code = 0x05
	PopN  Code = 0x06
	Dup   Code = 0x07
	Dup2  Code = 0x08

	// Constants, addresses and allocation
	LoadC Code = 0x09
	LoadA Code = 0x0a
	New   Code = 0x0b
	SNew  Code = 0x0c

	// Load through a reference
	ILoad  Code = 0x10
	DLoad  Code = 0x11
	ALoad  Code = 0x12
	IALoad Code = 0x18
	DALoad Code = 0x19
	AALoad Code = 0x1a

	// Store through a reference
	IStore  Code = 0x20
	DStore  Code = 0x21
	AStore  Code = 0x22
	IAStore Code = 0x28
	DAStore Code = 0x29
	AAStore Code = 0x2a

	// Arithmetic
	IAdd Code = 0x30
	DAdd Code = 0x31
	ISub Code = 0x34
	DSub Code = 0x35
	IMul Code = 0x38
	DMul Code = 0x39
	IDiv Code = 0x3c
	DDiv Code = 0x3d
	INeg Code = 0x40
	DNeg Code = 0x41
	ICmp Code = 0x44
	DCmp Code = 0x45

	// Conversion
	I2D Code = 0x60
	D2I Code = 0x61
	I2C Code = 0x62

	// Jump
	Jmp Code = 0x70
	Je  Code = 0x71
	Jne Code = 0x72
	Jl  Code = 0x73
	Jge Code = 0x74
	Jg  Code = 0x75
	Jle Code = 0x76

	// Execution
	Call Code = 0x80
	Ret  Code = 0x88

	// I/O
	IPrint  Code = 0xa0
	DPrint  Code = 0xa1
	CPrint  Code = 0xa2
	SPrint  Code = 0xa3
	PrintLn Code = 0xaf
	IScan   Code = 0xb0
	DScan   Code = 0xb1
	CScan   Code = 0xb2
)

// Info contains information about an opcode. Widths holds the encoded size
// in bytes of each immediate operand, in order.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
	Widths       []int
	// Signed is set when the first operand is a two's complement value.
	Signed bool
}

// Valid reports whether the Info describes a defined opcode.
func (i Info) Valid() bool {
	return i.Name != ""
}

// Size returns the encoded size of an instruction with this opcode.
func (i Info) Size() int {
	size := 1
	for _, w := range i.Widths {
		size += w
	}
	return size
}

var (
	infos  [256]Info
	byName = map[string]Code{}
)

func init() {
	type opInfo struct {
		op     Code
		name   string
		widths []int
	}
	ops := []opInfo{
		{Nop, "nop", nil},
		{CPush, "cpush", []int{1}},
		{IPush, "ipush", []int{4}},
		{Pop1, "pop1", nil},
		{Pop2, "pop2", nil},
		{PopN, "popn", []int{4}},
		{Dup, "dup", nil},
		{Dup2, "dup2", nil},
		{LoadC, "loadc", []int{2}},
		{LoadA, "loada", []int{2, 4}},
		{New, "new", nil},
		{SNew, "snew", nil},
		{ILoad, "iload", nil},
		{DLoad, "dload", nil},
		{ALoad, "aload", nil},
		{IALoad, "iaload", nil},
		{DALoad, "daload", nil},
		{AALoad, "aaload", nil},
		{IStore, "istore", nil},
		{DStore, "dstore", nil},
		{AStore, "astore", nil},
		{IAStore, "iastore", nil},
		{DAStore, "dastore", nil},
		{AAStore, "aastore", nil},
		{IAdd, "iadd", nil},
		{DAdd, "dadd", nil},
		{ISub, "isub", nil},
		{DSub, "dsub", nil},
		{IMul, "imul", nil},
		{DMul, "dmul", nil},
		{IDiv, "idiv", nil},
		{DDiv, "ddiv", nil},
		{INeg, "ineg", nil},
		{DNeg, "dneg", nil},
		{ICmp, "icmp", nil},
		{DCmp, "dcmp", nil},
		{I2D, "i2d", nil},
		{D2I, "d2i", nil},
		{I2C, "i2c", nil},
		{Jmp, "jmp", []int{2}},
		{Je, "je", []int{2}},
		{Jne, "jne", []int{2}},
		{Jl, "jl", []int{2}},
		{Jge, "jge", []int{2}},
		{Jg, "jg", []int{2}},
		{Jle, "jle", []int{2}},
		{Call, "call", []int{2}},
		{Ret, "ret", nil},
		{IPrint, "iprint", nil},
		{DPrint, "dprint", nil},
		{CPrint, "cprint", nil},
		{SPrint, "sprint", nil},
		{PrintLn, "println", nil},
		{IScan, "iscan", nil},
		{DScan, "dscan", nil},
		{CScan, "cscan", nil},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:         o.op,
			Name:         o.name,
			OperandCount: len(o.widths),
			Widths:       o.widths,
			Signed:       o.op == IPush,
		}
		byName[o.name] = o.op
	}
}

// GetInfo returns information about the given opcode. The result is the
// zero Info for undefined opcodes.
func GetInfo(op Code) Info {
	return infos[op]
}

// Lookup returns the opcode with the given mnemonic.
func Lookup(name string) (Code, bool) {
	code, ok := byName[strings.ToLower(name)]
	return code, ok
}

// Codes returns every defined opcode in ascending order.
func Codes() []Code {
	var codes []Code
	for i := range infos {
		if infos[i].Valid() {
			codes = append(codes, Code(i))
		}
	}
	return codes
}

func (c Code) String() string {
	if info := infos[c]; info.Valid() {
		return info.Name
	}
	return fmt.Sprintf("op(0x%02x)", uint8(c))
}

// IsJump reports whether the opcode takes a jump target operand.
func (c Code) IsJump() bool {
	return c >= Jmp && c <= Jle
}

// IsConditionalJump reports whether the opcode pops a value to decide
// whether to jump.
func (c Code) IsConditionalJump() bool {
	return c > Jmp && c <= Jle
}

// Instruction is a decoded instruction. Operands beyond the opcode's
// OperandCount are zero. A signed operand is stored in two's complement.
type Instruction struct {
	Op Code
	A  uint32
	B  uint32
}

// Make returns an instruction after checking the operand count and that
// each operand fits its encoded width.
func Make(code Code, operands ...int64) (Instruction, error) {
	info := GetInfo(code)
	if !info.Valid() {
		return Instruction{}, fmt.Errorf("unknown opcode 0x%02x", uint8(code))
	}
	if len(operands) != info.OperandCount {
		return Instruction{}, fmt.Errorf("%s takes %d operand(s), got %d",
			info.Name, info.OperandCount, len(operands))
	}
	ins := Instruction{Op: code}
	for i, v := range operands {
		lo, hi := operandRange(info.Widths[i], info.Signed && i == 0)
		if v < lo || v > hi {
			return Instruction{}, fmt.Errorf("%s operand %d out of range: %d", info.Name, i, v)
		}
		if i == 0 {
			ins.A = uint32(v)
		} else {
			ins.B = uint32(v)
		}
	}
	return ins, nil
}

// MustMake is like Make but panics on error.
func MustMake(code Code, operands ...int64) Instruction {
	ins, err := Make(code, operands...)
	if err != nil {
		panic(err)
	}
	return ins
}

func operandRange(width int, signed bool) (int64, int64) {
	if signed {
		return math.MinInt32, math.MaxInt32
	}
	return 0, int64(1)<<(8*width) - 1
}

// Int returns the first operand as a signed 32-bit value.
func (i Instruction) Int() int32 {
	return int32(i.A)
}

// Operands returns the instruction's operands as written in a listing.
func (i Instruction) Operands() []int64 {
	info := GetInfo(i.Op)
	switch info.OperandCount {
	case 0:
		return nil
	case 1:
		if info.Signed {
			return []int64{int64(i.Int())}
		}
		return []int64{int64(i.A)}
	default:
		return []int64{int64(i.A), int64(i.B)}
	}
}

func (i Instruction) String() string {
	operands := i.Operands()
	if len(operands) == 0 {
		return i.Op.String()
	}
	parts := make([]string, len(operands))
	for j, v := range operands {
		parts[j] = fmt.Sprint(v)
	}
	return i.Op.String() + " " + strings.Join(parts, ", ")
}
