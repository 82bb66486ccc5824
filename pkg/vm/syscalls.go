package vm

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/hardsat/rad/internal/faulterr"
)

// Syscall hashes, matching the values baked into compiled module bytecode.
// Host functions are looked up by these integers rather than by name so the
// sandbox surface can't be probed by string.
const (
	syscallFileRead    = 23
	syscallSendMessage = 7
)

const maxSendMessageLen = 64
const maxFileReadLen = 4096

// FileRoot is the directory file_read paths are resolved against. The
// filter below rejects any path containing the substring "rad"; since
// filepath.Join does not stop ".." segments from escaping FileRoot, a path
// that never mentions "rad" can still traverse anywhere readable, e.g.
// "../../../FLAG".
var FileRoot = "."

func (v *VM) syscall(id uint32) error {
	switch id {
	case syscallFileRead:
		return v.sysFileRead()
	case syscallSendMessage:
		return v.sysSendMessage()
	default:
		return faulterr.New(faulterr.VMError, "vm: unknown syscall")
	}
}

// sysFileRead reads a NUL-terminated path from memory at r1, rejects it if
// it contains "rad", and otherwise reads the file into the buffer at r2
// (capacity r3). r0 receives the number of bytes read, or a negative value
// on rejection or failure.
func (v *VM) sysFileRead() error {
	pathAddr := int64(v.regs[1])
	dstAddr := int64(v.regs[2])
	dstCap := int64(v.regs[3])

	path, err := v.readCString(pathAddr, maxFileReadLen)
	if err != nil {
		v.regs[0] = ^uint64(0)
		return nil
	}
	if strings.Contains(path, "rad") {
		v.regs[0] = ^uint64(0)
		return nil
	}
	data, err := os.ReadFile(filepath.Join(FileRoot, path))
	if err != nil {
		v.regs[0] = ^uint64(0)
		return nil
	}
	if int64(len(data)) > dstCap {
		data = data[:dstCap]
	}
	if dstAddr < 0 || dstAddr+int64(len(data)) > int64(len(v.mem)) {
		return faulterr.New(faulterr.VMError, "vm: file_read destination out of bounds")
	}
	copy(v.mem[dstAddr:dstAddr+int64(len(data))], data)
	v.regs[0] = uint64(len(data))
	return nil
}

// sysSendMessage copies a short message out of the sandbox for the host to
// relay. Messages 64 bytes or longer are rejected outright.
func (v *VM) sysSendMessage() error {
	addr := int64(v.regs[1])
	length := int64(v.regs[2])
	if length >= maxSendMessageLen {
		v.regs[0] = ^uint64(0)
		return nil
	}
	if addr < 0 || addr+length > int64(len(v.mem)) {
		return faulterr.New(faulterr.VMError, "vm: send_message source out of bounds")
	}
	msg := append([]byte(nil), v.mem[addr:addr+length]...)
	v.sent = append(v.sent, msg)
	v.regs[0] = 0
	return nil
}

func (v *VM) readCString(addr int64, maxLen int64) (string, error) {
	if addr < 0 || addr >= int64(len(v.mem)) {
		return "", faulterr.New(faulterr.VMError, "vm: string address out of bounds")
	}
	end := addr + maxLen
	if end > int64(len(v.mem)) {
		end = int64(len(v.mem))
	}
	region := v.mem[addr:end]
	idx := bytes.IndexByte(region, 0)
	if idx < 0 {
		return "", faulterr.New(faulterr.VMError, "vm: unterminated string")
	}
	return string(region[:idx]), nil
}
