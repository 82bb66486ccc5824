// Package rmm abstracts the cross-process memory mutation the executive's
// fault injector performs against the firmware's protected state region. A
// real deployment flips a single bit in the firmware process's live memory
// from outside it; tests substitute a local buffer so the fault-injection
// logic can be exercised without two cooperating processes.
package rmm

import "github.com/hardsat/rad/internal/faulterr"

// Mutator flips a single bit in a byte at the given address within some
// target's address space.
type Mutator interface {
	FlipBit(addr uintptr, bit uint) error
}

// BufferMutator is an in-process Mutator operating on a local byte slice,
// standing in for a remote process during tests.
type BufferMutator struct {
	Buf []byte
}

// FlipBit XORs a single bit in Buf at addr.
func (m *BufferMutator) FlipBit(addr uintptr, bit uint) error {
	if bit > 7 {
		return faulterr.New(faulterr.DataSize, "rmm: bit index out of range")
	}
	if int(addr) < 0 || int(addr) >= len(m.Buf) {
		return faulterr.New(faulterr.DataSize, "rmm: address out of range")
	}
	m.Buf[addr] ^= 1 << bit
	return nil
}
