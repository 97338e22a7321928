package vm

import "github.com/cloudcmds/c0/op"

// StepMode controls when OnStep callbacks are triggered.
type StepMode uint8

const (
	// StepAll calls OnStep for every instruction.
	StepAll StepMode = iota

	// StepNone never calls OnStep. Use for observers that only need call
	// and return events.
	StepNone

	// StepSampled calls OnStep every SampleInterval instructions.
	StepSampled
)

// ObserverConfig specifies what events an observer wants to receive.
type ObserverConfig struct {
	StepMode StepMode

	// SampleInterval is the number of instructions between OnStep calls
	// when StepMode is StepSampled. Values <= 0 are treated as 1.
	SampleInterval int

	ObserveCalls   bool
	ObserveReturns bool
}

// NewObserverConfig creates a config that observes calls and returns.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
		ObserveCalls:   true,
		ObserveReturns: true,
	}
}

func normalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer receives execution events. Methods are called synchronously
// from the dispatch loop; returning false halts execution with ErrHalted.
//
// Implementations can embed NoOpObserver and override what they need.
type Observer interface {
	// Config is called once at the start of each run.
	Config() ObserverConfig
	OnStep(event StepEvent) bool
	OnCall(event CallEvent) bool
	OnReturn(event ReturnEvent) bool
}

// StepEvent describes the instruction about to execute.
type StepEvent struct {
	Func       int
	IP         int
	Opcode     op.Code
	OpcodeName string
	StackDepth int
	FrameDepth int
}

// CallEvent describes a function activation.
type CallEvent struct {
	Func         int
	FunctionName string
	ArgCount     int

	// FrameDepth is the call stack depth after the call.
	FrameDepth int
}

// ReturnEvent describes a function returning.
type ReturnEvent struct {
	Func         int
	FunctionName string

	// HasValue reports whether a value was transferred to the caller.
	HasValue bool

	// FrameDepth is the call stack depth after returning.
	FrameDepth int
}

// NoOpObserver is an Observer that does nothing. Its config steps every
// instruction and observes calls and returns.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (NoOpObserver) OnStep(StepEvent) bool     { return true }
func (NoOpObserver) OnCall(CallEvent) bool     { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool { return true }

var _ Observer = NoOpObserver{}
