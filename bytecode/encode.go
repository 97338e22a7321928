package bytecode

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/cloudcmds/c0/op"
)

// MarshalBinary encodes the module in the o0 format.
func (m *Module) MarshalBinary() ([]byte, error) {
	return m.AppendBinary(nil)
}

// AppendBinary appends the o0 encoding of the module to buf.
func (m *Module) AppendBinary(buf []byte) ([]byte, error) {
	be := binary.BigEndian
	buf = be.AppendUint32(buf, m.magic)
	buf = be.AppendUint32(buf, m.version)

	if len(m.constants) > math.MaxUint16 {
		return nil, formatErr(-1, ErrTooLarge, "%d constants", len(m.constants))
	}
	buf = be.AppendUint16(buf, uint16(len(m.constants)))
	for i, c := range m.constants {
		buf = append(buf, byte(c.Kind))
		switch c.Kind {
		case Integer:
			buf = be.AppendUint32(buf, uint32(c.Int))
		case Float:
			buf = be.AppendUint64(buf, math.Float64bits(c.Float))
		case String:
			if uint64(len(c.Str)) > math.MaxUint32 {
				return nil, formatErr(-1, ErrTooLarge, "constant %d: string of %d bytes", i, len(c.Str))
			}
			buf = be.AppendUint32(buf, uint32(len(c.Str)))
			buf = append(buf, c.Str...)
		default:
			return nil, formatErr(-1, ErrUnknownConstant, "constant %d: tag %d", i, c.Kind)
		}
	}

	if len(m.functions) > math.MaxUint16 {
		return nil, formatErr(-1, ErrTooLarge, "%d functions", len(m.functions))
	}
	buf = be.AppendUint16(buf, uint16(len(m.functions)))
	for i, fn := range m.functions {
		if len(fn.instructions) > math.MaxUint16 {
			return nil, formatErr(-1, ErrTooLarge, "function %d: %d instructions", i, len(fn.instructions))
		}
		buf = be.AppendUint16(buf, fn.params)
		buf = be.AppendUint16(buf, fn.locals)
		buf = be.AppendUint16(buf, uint16(len(fn.instructions)))
		for ip, ins := range fn.instructions {
			var err error
			if buf, err = appendInstruction(buf, ins); err != nil {
				return nil, formatErr(-1, ErrUnknownOpcode, "function %d, ip %d: %v", i, ip, err)
			}
		}
	}
	return buf, nil
}

func appendInstruction(buf []byte, ins op.Instruction) ([]byte, error) {
	info := op.GetInfo(ins.Op)
	if !info.Valid() {
		return nil, ErrUnknownOpcode
	}
	buf = append(buf, byte(ins.Op))
	for i, width := range info.Widths {
		v := ins.A
		if i == 1 {
			v = ins.B
		}
		switch width {
		case 1:
			buf = append(buf, byte(v))
		case 2:
			buf = binary.BigEndian.AppendUint16(buf, uint16(v))
		case 4:
			buf = binary.BigEndian.AppendUint32(buf, v)
		}
	}
	return buf, nil
}

// WriteTo writes the encoded module to w.
func (m *Module) WriteTo(w io.Writer) (int64, error) {
	data, err := m.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}
