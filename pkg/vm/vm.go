// Package vm implements the bounded-gas bytecode sandbox modules execute in.
// Instructions are fixed-width 8-byte words, loosely modeled on eBPF's
// register machine: a one-byte opcode, a packed destination/source register
// nibble pair, a signed 16-bit branch offset, and a 32-bit immediate. There
// is no ELF loader or verifier pass; a module's Code buffer is the raw
// instruction stream.
package vm

import (
	"encoding/binary"

	"github.com/hardsat/rad/internal/faulterr"
)

// MaxGas is the total instruction budget for a single Execute call. A
// program that has not reached an Exit instruction once this is exhausted
// faults rather than running unbounded.
const MaxGas = 1024

const instructionSize = 8

// Opcodes.
const (
	opNop = iota
	opMovImm
	opMovReg
	opAddImm
	opAddReg
	opSubImm
	opLoad
	opStore
	opJeq
	opJmp
	opCall
	opExit
)

const numRegisters = 10

// Fault is an error type carrying a sandbox fault reason. The interpreter
// does not return it: exhausted gas, out-of-bounds memory accesses and
// unknown syscalls are reported as faulterr VMError errors.
type Fault struct {
	Reason string
}

func (f *Fault) Error() string { return "vm: " + f.Reason }

// VM holds the register file and gas counter for a single execution.
type VM struct {
	regs [numRegisters]uint64
	pc   int
	gas  uint64
	mem  []byte
	sent [][]byte
}

// Sent returns the payloads any SendMessage syscall calls captured during
// execution, in call order.
func (v *VM) Sent() [][]byte { return v.sent }

// Memory exposes the bounded scratch region syscalls read and write
// through. Bounds are enforced by the VM, not by the caller.
func (v *VM) Memory() []byte { return v.mem }

// Gas returns the number of instructions the last run consumed.
func (v *VM) Gas() uint64 { return v.gas }

// ExecuteBytes decodes code (optionally passing it through the
// noise-tolerant uplink decoder first) and runs it against mem, a bounded
// scratch region syscalls may read paths and messages from. It returns r0
// as left by the program's Exit instruction — a file_read or send_message
// syscall leaves its result there, so this is the module's actual output
// size, not the gas spent producing it.
func ExecuteBytes(code []byte, mem []byte, encoded bool) (uint64, error) {
	program := code
	if encoded {
		program = DecodeCode(code)
	}
	if len(program)%instructionSize != 0 {
		return 0, faulterr.New(faulterr.VMError, "vm: code length is not a multiple of the instruction size")
	}
	v := &VM{mem: mem}
	return v.run(program)
}

func (v *VM) run(program []byte) (uint64, error) {
	count := len(program) / instructionSize
	for {
		if v.gas >= MaxGas {
			return 0, faulterr.New(faulterr.VMError, "vm: gas exhausted")
		}
		if v.pc < 0 || v.pc >= count {
			return 0, faulterr.New(faulterr.VMError, "vm: program counter out of range")
		}
		instr := program[v.pc*instructionSize : (v.pc+1)*instructionSize]
		op := instr[0]
		dst := instr[1] >> 4
		src := instr[1] & 0x0f
		offset := int16(binary.LittleEndian.Uint16(instr[2:4]))
		imm := int32(binary.LittleEndian.Uint32(instr[4:8]))
		v.gas++

		next := v.pc + 1
		switch op {
		case opNop:
		case opMovImm:
			v.regs[dst] = uint64(int64(imm))
		case opMovReg:
			v.regs[dst] = v.regs[src]
		case opAddImm:
			v.regs[dst] += uint64(int64(imm))
		case opAddReg:
			v.regs[dst] += v.regs[src]
		case opSubImm:
			v.regs[dst] -= uint64(int64(imm))
		case opLoad:
			addr := int64(v.regs[src]) + int64(offset)
			val, err := v.loadMem(addr)
			if err != nil {
				return 0, err
			}
			v.regs[dst] = val
		case opStore:
			addr := int64(v.regs[dst]) + int64(offset)
			if err := v.storeMem(addr, v.regs[src]); err != nil {
				return 0, err
			}
		case opJeq:
			if v.regs[dst] == v.regs[src] {
				next = v.pc + 1 + int(offset)
			}
		case opJmp:
			next = v.pc + 1 + int(offset)
		case opCall:
			if err := v.syscall(uint32(imm)); err != nil {
				return 0, err
			}
		case opExit:
			return v.regs[0], nil
		default:
			return 0, faulterr.New(faulterr.VMError, "vm: unknown opcode")
		}
		v.pc = next
	}
}

func (v *VM) loadMem(addr int64) (uint64, error) {
	if addr < 0 || addr+8 > int64(len(v.mem)) {
		return 0, faulterr.New(faulterr.VMError, "vm: memory load out of bounds")
	}
	return binary.LittleEndian.Uint64(v.mem[addr : addr+8]), nil
}

func (v *VM) storeMem(addr int64, val uint64) error {
	if addr < 0 || addr+8 > int64(len(v.mem)) {
		return faulterr.New(faulterr.VMError, "vm: memory store out of bounds")
	}
	binary.LittleEndian.PutUint64(v.mem[addr:addr+8], val)
	return nil
}
