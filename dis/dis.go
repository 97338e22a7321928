// Package dis supports analysis of o0 modules by disassembling them.
// This works with the opcodes defined in the `op` package and the module
// types of the `bytecode` package.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/cloudcmds/c0/bytecode"
	"github.com/cloudcmds/c0/internal/table"
	"github.com/cloudcmds/c0/op"
	"github.com/fatih/color"
)

// Instruction represents a single instruction and its operands. Index is
// the instruction's position, which is what jumps target; Offset is its
// byte offset within the encoded function body.
type Instruction struct {
	Index      int
	Offset     int
	Name       string
	Opcode     op.Code
	Operands   []int64
	Annotation string
	Constant   *bytecode.Constant
}

// Disassemble returns a parsed representation of the function at index fn.
func Disassemble(mod *bytecode.Module, fn int) ([]Instruction, error) {
	if fn < 0 || fn >= mod.FunctionCount() {
		return nil, fmt.Errorf("function index out of range: %d", fn)
	}
	code := mod.FunctionAt(fn)
	instructions := make([]Instruction, 0, code.InstructionCount())
	var offset int
	for ip := 0; ip < code.InstructionCount(); ip++ {
		ins := code.InstructionAt(ip)
		info := op.GetInfo(ins.Op)
		if !info.Valid() {
			return nil, fmt.Errorf("unknown opcode at ip %d: %s", ip, ins.Op)
		}
		var annotation string
		var constant *bytecode.Constant
		switch {
		case ins.Op == op.LoadC:
			if int(ins.A) >= mod.ConstantCount() {
				return nil, fmt.Errorf("constant index out of range: %d", ins.A)
			}
			c := mod.ConstantAt(int(ins.A))
			constant = &c
			annotation = c.String()
		case ins.Op == op.Call:
			if int(ins.A) >= mod.FunctionCount() {
				return nil, fmt.Errorf("function index out of range: %d", ins.A)
			}
			annotation = mod.FunctionAt(int(ins.A)).Label(int(ins.A))
		case ins.Op == op.LoadA:
			annotation = fmt.Sprintf("local_%d", ins.A+ins.B)
		case ins.Op.IsJump():
			if int(ins.A) == code.InstructionCount() {
				annotation = "-> end"
			} else {
				annotation = fmt.Sprintf("-> %d", ins.A)
			}
		case ins.Op == op.CPush:
			if ins.A >= 0x20 && ins.A < 0x7f {
				annotation = fmt.Sprintf("%q", rune(ins.A))
			}
		}
		instructions = append(instructions, Instruction{
			Index:      ip,
			Offset:     offset,
			Name:       info.Name,
			Opcode:     ins.Op,
			Operands:   ins.Operands(),
			Annotation: annotation,
			Constant:   constant,
		})
		offset += info.Size()
	}
	return instructions, nil
}

var (
	bold    = color.New(color.Bold).SprintFunc()
	yellow  = color.New(color.FgYellow).SprintFunc()
	green   = color.New(color.FgGreen).SprintFunc()
	magenta = color.New(color.FgMagenta).SprintFunc()
	cyan    = color.New(color.FgHiCyan).SprintFunc()
)

// Print a string representation of the given instructions to the given writer.
func Print(instructions []Instruction, writer io.Writer) error {
	var lines [][]string
	for _, instr := range instructions {
		var values []string
		values = append(values, fmt.Sprintf("%d", instr.Index))
		values = append(values, fmt.Sprintf("%d", instr.Offset))
		values = append(values, bold(instr.Name))
		values = append(values, formatOperands(instr.Operands))
		switch {
		case instr.Constant != nil:
			values = append(values, formatConstant(*instr.Constant))
		case instr.Opcode == op.Call:
			values = append(values, magenta("fn:"+instr.Annotation))
		case instr.Annotation != "":
			values = append(values, cyan(instr.Annotation))
		default:
			values = append(values, "")
		}
		lines = append(lines, values)
	}

	return table.NewTable(writer).
		WithHeader([]string{"IP", "OFFSET", "OPCODE", "OPERANDS", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

// PrintModule writes the constant pool followed by a listing of every
// function.
func PrintModule(mod *bytecode.Module, writer io.Writer) error {
	if _, err := fmt.Fprintf(writer, "%s magic=0x%08x version=%d\n",
		bold("module"), mod.Magic(), mod.Version()); err != nil {
		return err
	}
	if mod.ConstantCount() > 0 {
		var rows [][]string
		for i := 0; i < mod.ConstantCount(); i++ {
			c := mod.ConstantAt(i)
			rows = append(rows, []string{fmt.Sprintf("%d", i), c.Kind.String(), formatConstant(c)})
		}
		err := table.NewTable(writer).
			WithHeader([]string{"INDEX", "TYPE", "VALUE"}).
			WithColumnAlignment([]table.Alignment{table.AlignRight, table.AlignLeft, table.AlignLeft}).
			WithHeaderAlignment([]table.Alignment{table.AlignCenter, table.AlignCenter, table.AlignCenter}).
			WithRows(rows).
			Render()
		if err != nil {
			return err
		}
	}
	for i := 0; i < mod.FunctionCount(); i++ {
		fn := mod.FunctionAt(i)
		if _, err := fmt.Fprintf(writer, "\n%s params=%d locals=%d\n",
			bold(fn.Label(i)), fn.Params(), fn.Locals()); err != nil {
			return err
		}
		instructions, err := Disassemble(mod, i)
		if err != nil {
			return err
		}
		if err := Print(instructions, writer); err != nil {
			return err
		}
	}
	return nil
}

func formatConstant(c bytecode.Constant) string {
	switch c.Kind {
	case bytecode.Integer, bytecode.Float:
		return yellow(c.String())
	default:
		s := c.Str
		if len(s) > 80 {
			s = s[:77] + "..."
		}
		return green(fmt.Sprintf("%q", s))
	}
}

func formatOperands(ops []int64) string {
	var sb strings.Builder
	for i, v := range ops {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%d", v))
	}
	return sb.String()
}
