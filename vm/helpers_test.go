package vm

import (
	"bytes"
	"context"
	"testing"

	"github.com/cloudcmds/c0/bytecode"
	"github.com/cloudcmds/c0/op"
	"github.com/stretchr/testify/require"
)

var ins = op.MustMake

func fn(params, locals uint16, code ...op.Instruction) *bytecode.Function {
	return bytecode.NewFunction(bytecode.FunctionParams{
		Params:       params,
		Locals:       locals,
		Instructions: code,
	})
}

func module(constants []bytecode.Constant, functions ...*bytecode.Function) *bytecode.Module {
	return bytecode.NewModule(bytecode.ModuleParams{
		Constants: constants,
		Functions: functions,
	})
}

// exec runs mod and returns what it printed.
func exec(t *testing.T, mod *bytecode.Module, opts ...Option) (string, *VirtualMachine, error) {
	t.Helper()
	var out bytes.Buffer
	machine := New(mod, append([]Option{WithOutput(&out)}, opts...)...)
	err := machine.Run(context.Background())
	return out.String(), machine, err
}

func requireFault(t *testing.T, err error, kind FaultKind, fn, ip int, code op.Code) *Fault {
	t.Helper()
	require.Error(t, err)
	fault, ok := err.(*Fault)
	require.True(t, ok, "expected *Fault, got %T: %v", err, err)
	require.Equal(t, kind, fault.Kind, fault.Error())
	require.Equal(t, fn, fault.Func)
	require.Equal(t, ip, fault.IP)
	require.Equal(t, code, fault.Op)
	return fault
}

// factorial has main as fn 0 calling fact(5) as fn 1.
func factorial(n int32) *bytecode.Module {
	b := bytecode.NewBuilder()
	main := b.Function("main", 0, 0)
	fact := b.Function("fact", 1, 1)
	main.IPush(n).Call(fact.Index()).Op(op.Ret)

	recurse := fact.NewLabel()
	fact.LoadA(0, 0).Op(op.ILoad).IPush(1).Op(op.ICmp)
	fact.Jump(op.Jg, recurse)
	fact.IPush(1).Op(op.Ret)
	fact.Mark(recurse)
	fact.LoadA(0, 0).Op(op.ILoad)
	fact.LoadA(0, 0).Op(op.ILoad).IPush(1).Op(op.ISub)
	fact.Call(fact.Index())
	fact.Op(op.IMul, op.Ret)

	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}
