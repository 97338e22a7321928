package vm

import (
	"errors"
	"io"
	"strconv"

	"github.com/cloudcmds/c0/op"
)

func (vm *VirtualMachine) print(f *frame, code op.Code) error {
	var err error
	switch code {
	case op.PrintLn:
		err = vm.out.WriteByte('\n')
	case op.IPrint:
		var v int32
		if v, err = popInt(f); err != nil {
			return err
		}
		_, err = vm.out.WriteString(strconv.FormatInt(int64(v), 10))
	case op.DPrint:
		var v float64
		if v, err = popDouble(f); err != nil {
			return err
		}
		_, err = vm.out.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case op.CPrint:
		var v int32
		if v, err = popInt(f); err != nil {
			return err
		}
		err = vm.out.WriteByte(byte(v))
	case op.SPrint:
		var v Value
		if v, err = f.pop(); err != nil {
			return err
		}
		if v.kind != StringKind {
			return faultf(TypeMismatch, "expected string, found %s", v.kind)
		}
		_, err = vm.out.WriteString(v.s)
	}
	if err != nil {
		return &Fault{Kind: IO, Cause: err}
	}
	return nil
}

// scan reads from the input. Pending output is flushed first so prompts
// appear before the VM blocks on input.
func (vm *VirtualMachine) scan(f *frame, code op.Code) error {
	if err := vm.out.Flush(); err != nil {
		return &Fault{Kind: IO, Cause: err}
	}
	switch code {
	case op.CScan:
		b, err := vm.in.ReadByte()
		if errors.Is(err, io.EOF) {
			return vm.push(f, IntValue(-1))
		}
		if err != nil {
			return &Fault{Kind: IO, Cause: err}
		}
		return vm.push(f, IntValue(int32(b)))
	case op.IScan:
		word, err := vm.word()
		if err != nil {
			return err
		}
		v, err := strconv.ParseInt(word, 10, 32)
		if err != nil {
			return &Fault{Kind: IO, Message: "iscan: invalid int " + strconv.Quote(word), Cause: err}
		}
		return vm.push(f, IntValue(int32(v)))
	default:
		word, err := vm.word()
		if err != nil {
			return err
		}
		v, err := strconv.ParseFloat(word, 64)
		if err != nil {
			return &Fault{Kind: IO, Message: "dscan: invalid double " + strconv.Quote(word), Cause: err}
		}
		return vm.push(f, DoubleValue(v))
	}
}

// word reads the next whitespace separated word.
func (vm *VirtualMachine) word() (string, error) {
	var buf []byte
	for {
		b, err := vm.in.ReadByte()
		if errors.Is(err, io.EOF) {
			if len(buf) == 0 {
				return "", &Fault{Kind: IO, Message: "unexpected end of input", Cause: io.ErrUnexpectedEOF}
			}
			return string(buf), nil
		}
		if err != nil {
			return "", &Fault{Kind: IO, Cause: err}
		}
		if isSpace(b) {
			if len(buf) == 0 {
				continue
			}
			return string(buf), nil
		}
		buf = append(buf, b)
	}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
