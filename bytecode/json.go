package bytecode

import (
	"encoding/json"
	"fmt"

	"github.com/cloudcmds/c0/op"
)

// Serialization types for the JSON form of a module, used for inspection
// and tests. The binary o0 format is the interchange format.

type constantDef struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type instructionDef struct {
	Op       string  `json:"op"`
	Operands []int64 `json:"operands,omitempty"`
}

type functionDef struct {
	Name         string           `json:"name,omitempty"`
	Params       uint16           `json:"params"`
	Locals       uint16           `json:"locals"`
	Instructions []instructionDef `json:"instructions"`
}

type moduleDef struct {
	Magic     uint32        `json:"magic"`
	Version   uint32        `json:"version"`
	Constants []constantDef `json:"constants"`
	Functions []functionDef `json:"functions"`
}

// MarshalJSON converts the module into a JSON representation.
func (m *Module) MarshalJSON() ([]byte, error) {
	def := moduleDef{
		Magic:     m.magic,
		Version:   m.version,
		Constants: make([]constantDef, 0, len(m.constants)),
		Functions: make([]functionDef, 0, len(m.functions)),
	}
	for _, c := range m.constants {
		def.Constants = append(def.Constants, constantDef{Type: c.Kind.String(), Value: c.Value()})
	}
	for _, fn := range m.functions {
		fd := functionDef{
			Name:         fn.name,
			Params:       fn.params,
			Locals:       fn.locals,
			Instructions: make([]instructionDef, 0, len(fn.instructions)),
		}
		for _, ins := range fn.instructions {
			fd.Instructions = append(fd.Instructions, instructionDef{
				Op:       ins.Op.String(),
				Operands: ins.Operands(),
			})
		}
		def.Functions = append(def.Functions, fd)
	}
	return json.Marshal(def)
}

// UnmarshalJSON converts a JSON representation into a module.
func (m *Module) UnmarshalJSON(data []byte) error {
	var def struct {
		Magic     uint32 `json:"magic"`
		Version   uint32 `json:"version"`
		Constants []struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		} `json:"constants"`
		Functions []functionDef `json:"functions"`
	}
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	params := ModuleParams{Magic: def.Magic, Version: def.Version}
	for i, cd := range def.Constants {
		c, err := unmarshalConstant(cd.Type, cd.Value)
		if err != nil {
			return fmt.Errorf("constant %d: %w", i, err)
		}
		params.Constants = append(params.Constants, c)
	}
	for i, fd := range def.Functions {
		code := make([]op.Instruction, 0, len(fd.Instructions))
		for ip, id := range fd.Instructions {
			opcode, ok := op.Lookup(id.Op)
			if !ok {
				return fmt.Errorf("fn %d, ip %d: %w %q", i, ip, ErrUnknownOpcode, id.Op)
			}
			ins, err := op.Make(opcode, id.Operands...)
			if err != nil {
				return fmt.Errorf("fn %d, ip %d: %w", i, ip, err)
			}
			code = append(code, ins)
		}
		params.Functions = append(params.Functions, NewFunction(FunctionParams{
			Name:         fd.Name,
			Params:       fd.Params,
			Locals:       fd.Locals,
			Instructions: code,
		}))
	}
	*m = *NewModule(params)
	return nil
}

func unmarshalConstant(typ string, raw json.RawMessage) (Constant, error) {
	switch typ {
	case Integer.String():
		var v int32
		err := json.Unmarshal(raw, &v)
		return IntConstant(v), err
	case Float.String():
		var v float64
		err := json.Unmarshal(raw, &v)
		return FloatConstant(v), err
	case String.String():
		var v string
		err := json.Unmarshal(raw, &v)
		return StringConstant(v), err
	default:
		return Constant{}, fmt.Errorf("%w %q", ErrUnknownConstant, typ)
	}
}
