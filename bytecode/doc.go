// Package bytecode provides immutable representations of o0 modules, the
// compiled form of C0 programs executed by the virtual machine.
//
// # Key Types
//
//   - [Module]: constants and functions plus the header fields
//   - [Function]: an immutable function with its parameter and local counts
//   - [Constant]: an integer, float or string constant (value type)
//   - [Builder]: an assembler that produces a Module
//
// # Immutability Guarantees
//
// Modules and functions are immutable after construction. Constructors
// copy input slices and index-based accessors are used for collections:
//
//	mod.ConstantAt(i)
//	mod.FunctionAt(j)
//	fn.InstructionAt(ip)
//
// # Binary Format
//
// All integers are big-endian.
//
//	module    := magic:u32 version:u32 constCount:u16 constant*
//	             funcCount:u16 function*
//	constant  := tag:u8 payload
//	             tag 0: i32
//	             tag 1: f64 bits
//	             tag 2: len:u32 bytes
//	function  := params:u16 locals:u16 insCount:u16 instruction*
//	instruction := opcode:u8 immediates
//
// Decoding rejects bad magic, an unsupported version, unknown opcodes and
// constant tags, truncated input and trailing bytes with a *FormatError.
package bytecode
