package vm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cloudcmds/c0/op"
)

// FaultKind is the category of a runtime fault.
type FaultKind int

const (
	StackUnderflow FaultKind = iota + 1
	StackOverflow
	FrameOverflow
	LocalIndex
	ArrayIndex
	ConstantIndex
	FunctionIndex
	JumpTarget
	TypeMismatch
	DivideByZero
	DanglingReference
	MalformedModule
	IO
	HeapOverflow
)

// Sentinel errors, one per FaultKind, for use with errors.Is.
var (
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrStackOverflow     = errors.New("stack overflow")
	ErrFrameOverflow     = errors.New("frame overflow")
	ErrLocalIndex        = errors.New("local index out of range")
	ErrArrayIndex        = errors.New("array index out of range")
	ErrConstantIndex     = errors.New("constant index out of range")
	ErrFunctionIndex     = errors.New("function index out of range")
	ErrJumpTarget        = errors.New("jump target out of range")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrDivideByZero      = errors.New("divide by zero")
	ErrDanglingReference = errors.New("dangling reference")
	ErrMalformedModule   = errors.New("malformed module")
	ErrIO                = errors.New("i/o error")
	ErrHeapOverflow      = errors.New("heap overflow")
)

var faultSentinels = map[FaultKind]error{
	StackUnderflow:    ErrStackUnderflow,
	StackOverflow:     ErrStackOverflow,
	FrameOverflow:     ErrFrameOverflow,
	LocalIndex:        ErrLocalIndex,
	ArrayIndex:        ErrArrayIndex,
	ConstantIndex:     ErrConstantIndex,
	FunctionIndex:     ErrFunctionIndex,
	JumpTarget:        ErrJumpTarget,
	TypeMismatch:      ErrTypeMismatch,
	DivideByZero:      ErrDivideByZero,
	DanglingReference: ErrDanglingReference,
	MalformedModule:   ErrMalformedModule,
	IO:                ErrIO,
	HeapOverflow:      ErrHeapOverflow,
}

func (k FaultKind) String() string {
	if err, ok := faultSentinels[k]; ok {
		return err.Error()
	}
	return "fault"
}

// StackFrame is one entry of a fault's call stack, innermost first.
type StackFrame struct {
	Func int
	IP   int
}

// Fault is the error returned when execution fails. Func and IP locate the
// faulting instruction; IP is -1 for faults raised before execution began,
// such as a malformed module.
type Fault struct {
	Kind    FaultKind
	Func    int
	IP      int
	Op      op.Code
	Message string
	Stack   []StackFrame
	Cause   error
}

func (f *Fault) Error() string {
	var sb strings.Builder
	sb.WriteString("vm fault: ")
	sb.WriteString(f.Kind.String())
	if f.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(f.Message)
	} else if f.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(f.Cause.Error())
	}
	if f.IP >= 0 {
		fmt.Fprintf(&sb, " (fn %d, ip %d, op %s)", f.Func, f.IP, f.Op)
	}
	return sb.String()
}

// Is matches the sentinel error for the fault's kind.
func (f *Fault) Is(target error) bool {
	return faultSentinels[f.Kind] == target
}

func (f *Fault) Unwrap() error {
	return f.Cause
}

// malformed wraps a module loading or validation error.
func malformed(err error) *Fault {
	return &Fault{Kind: MalformedModule, Func: -1, IP: -1, Cause: err}
}

// faultf is the error an instruction handler returns. The dispatch loop
// fills in the location.
func faultf(kind FaultKind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
