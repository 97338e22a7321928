package bytecode

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagic           = errors.New("bad magic number")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrTruncated          = errors.New("unexpected end of module data")
	ErrTrailingBytes      = errors.New("trailing bytes after module")
	ErrUnknownOpcode      = errors.New("unknown opcode")
	ErrUnknownConstant    = errors.New("unknown constant tag")
	ErrTooLarge           = errors.New("table too large for format")
)

// FormatError describes malformed module data. Offset is the byte offset
// at which decoding failed, or -1 when encoding.
type FormatError struct {
	Offset int
	Err    error
	Detail string
}

func (e *FormatError) Error() string {
	msg := "o0: " + e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" (offset %d)", e.Offset)
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatErr(offset int, err error, detail string, args ...any) *FormatError {
	return &FormatError{Offset: offset, Err: err, Detail: fmt.Sprintf(detail, args...)}
}
