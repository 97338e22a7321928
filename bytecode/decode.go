package bytecode

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cloudcmds/c0/op"
)

// Decode parses an o0 module.
func Decode(data []byte) (*Module, error) {
	d := &decoder{data: data}
	m, err := d.module()
	if err != nil {
		return nil, err
	}
	if d.offset != len(d.data) {
		return nil, formatErr(d.offset, ErrTrailingBytes, "%d byte(s)", len(d.data)-d.offset)
	}
	return m, nil
}

// UnmarshalBinary decodes an o0 module into m.
func (m *Module) UnmarshalBinary(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

// ReadFrom reads an entire o0 module from r into m.
func (m *Module) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return int64(len(data)), fmt.Errorf("reading module: %w", err)
	}
	return int64(len(data)), m.UnmarshalBinary(data)
}

// decoder reads big-endian values from data, tracking the offset so that
// errors can point at the failing byte.
type decoder struct {
	data   []byte
	offset int
}

func (d *decoder) take(n int, what string) ([]byte, error) {
	if len(d.data)-d.offset < n {
		return nil, formatErr(d.offset, ErrTruncated, "reading %s", what)
	}
	b := d.data[d.offset : d.offset+n]
	d.offset += n
	return b, nil
}

func (d *decoder) u8(what string) (uint8, error) {
	b, err := d.take(1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) u16(what string) (uint16, error) {
	b, err := d.take(2, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *decoder) u32(what string) (uint32, error) {
	b, err := d.take(4, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *decoder) u64(what string) (uint64, error) {
	b, err := d.take(8, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (d *decoder) module() (*Module, error) {
	magic, err := d.u32("magic")
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, formatErr(0, ErrBadMagic, "got 0x%08x, want 0x%08x", magic, Magic)
	}
	version, err := d.u32("version")
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, formatErr(4, ErrUnsupportedVersion, "got %d, want %d", version, Version)
	}

	m := &Module{magic: magic, version: version}
	count, err := d.u16("constant count")
	if err != nil {
		return nil, err
	}
	m.constants = make([]Constant, 0, count)
	for i := 0; i < int(count); i++ {
		c, err := d.constant()
		if err != nil {
			return nil, err
		}
		m.constants = append(m.constants, c)
	}

	count, err = d.u16("function count")
	if err != nil {
		return nil, err
	}
	m.functions = make([]*Function, 0, count)
	for i := 0; i < int(count); i++ {
		fn, err := d.function()
		if err != nil {
			return nil, err
		}
		m.functions = append(m.functions, fn)
	}
	return m, nil
}

func (d *decoder) constant() (Constant, error) {
	start := d.offset
	tag, err := d.u8("constant tag")
	if err != nil {
		return Constant{}, err
	}
	switch ConstantKind(tag) {
	case Integer:
		v, err := d.u32("int constant")
		if err != nil {
			return Constant{}, err
		}
		return IntConstant(int32(v)), nil
	case Float:
		v, err := d.u64("float constant")
		if err != nil {
			return Constant{}, err
		}
		return FloatConstant(math.Float64frombits(v)), nil
	case String:
		n, err := d.u32("string length")
		if err != nil {
			return Constant{}, err
		}
		if uint64(n) > uint64(len(d.data)-d.offset) {
			return Constant{}, formatErr(d.offset, ErrTruncated, "string of %d bytes", n)
		}
		b, _ := d.take(int(n), "string constant")
		return StringConstant(string(b)), nil
	default:
		return Constant{}, formatErr(start, ErrUnknownConstant, "tag %d", tag)
	}
}

func (d *decoder) function() (*Function, error) {
	params, err := d.u16("params")
	if err != nil {
		return nil, err
	}
	locals, err := d.u16("locals")
	if err != nil {
		return nil, err
	}
	count, err := d.u16("instruction count")
	if err != nil {
		return nil, err
	}
	fn := &Function{
		params:       params,
		locals:       locals,
		instructions: make([]op.Instruction, 0, count),
	}
	for i := 0; i < int(count); i++ {
		ins, err := d.instruction()
		if err != nil {
			return nil, err
		}
		fn.instructions = append(fn.instructions, ins)
	}
	return fn, nil
}

func (d *decoder) instruction() (op.Instruction, error) {
	start := d.offset
	code, err := d.u8("opcode")
	if err != nil {
		return op.Instruction{}, err
	}
	info := op.GetInfo(op.Code(code))
	if !info.Valid() {
		return op.Instruction{}, formatErr(start, ErrUnknownOpcode, "0x%02x", code)
	}
	ins := op.Instruction{Op: op.Code(code)}
	for i, width := range info.Widths {
		var v uint32
		switch width {
		case 1:
			b, err := d.u8(info.Name + " operand")
			if err != nil {
				return op.Instruction{}, err
			}
			v = uint32(b)
		case 2:
			h, err := d.u16(info.Name + " operand")
			if err != nil {
				return op.Instruction{}, err
			}
			v = uint32(h)
		case 4:
			if v, err = d.u32(info.Name + " operand"); err != nil {
				return op.Instruction{}, err
			}
		}
		if i == 0 {
			ins.A = v
		} else {
			ins.B = v
		}
	}
	return ins, nil
}
