//go:build linux

package rmm

import (
	"golang.org/x/sys/unix"

	"github.com/hardsat/rad/internal/faulterr"
)

// ProcessMutator flips a single bit inside another process's address space
// using process_vm_readv/process_vm_writev, the same primitive ptrace-based
// debuggers use to peek and poke a tracee's memory without attaching.
type ProcessMutator struct {
	PID int
}

// FlipBit reads the byte at addr in the target process, flips bit, and
// writes it back.
func (m *ProcessMutator) FlipBit(addr uintptr, bit uint) error {
	if bit > 7 {
		return faulterr.New(faulterr.DataSize, "rmm: bit index out of range")
	}

	local := make([]byte, 1)
	localIov := []unix.Iovec{{Base: &local[0], Len: 1}}
	remoteIov := []unix.RemoteIovec{{Base: addr, Len: 1}}

	n, err := unix.ProcessVMReadv(m.PID, localIov, remoteIov, 0)
	if err != nil || n != 1 {
		return faulterr.Wrap(faulterr.IO, "rmm: process_vm_readv failed", err)
	}

	local[0] ^= 1 << bit

	n, err = unix.ProcessVMWritev(m.PID, localIov, remoteIov, 0)
	if err != nil || n != 1 {
		return faulterr.Wrap(faulterr.IO, "rmm: process_vm_writev failed", err)
	}
	return nil
}
