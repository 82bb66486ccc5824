package vm

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func instr(op, dst, src byte, offset int16, imm int32) []byte {
	b := make([]byte, 8)
	b[0] = op
	b[1] = dst<<4 | src
	binary.LittleEndian.PutUint16(b[2:4], uint16(offset))
	binary.LittleEndian.PutUint32(b[4:8], uint32(imm))
	return b
}

func TestExecuteBytesHaltsOnExit(t *testing.T) {
	code := append(instr(opMovImm, 0, 0, 0, 42), instr(opExit, 0, 0, 0, 0)...)
	result, err := ExecuteBytes(code, make([]byte, 16), false)
	require.NoError(t, err)
	require.Equal(t, uint64(42), result, "exit returns r0, not gas consumed")
}

func TestExecuteBytesGasExhausted(t *testing.T) {
	code := make([]byte, 0)
	for i := 0; i < MaxGas+10; i++ {
		code = append(code, instr(opNop, 0, 0, 0, 0)...)
	}
	_, err := ExecuteBytes(code, make([]byte, 16), false)
	require.Error(t, err)
}

func TestExecuteBytesMemoryOutOfBounds(t *testing.T) {
	code := append(instr(opMovImm, 1, 0, 0, 1000), instr(opLoad, 0, 1, 0, 0)...)
	code = append(code, instr(opExit, 0, 0, 0, 0)...)
	_, err := ExecuteBytes(code, make([]byte, 16), false)
	require.Error(t, err)
}

func TestDecodeCodeMajorityVote(t *testing.T) {
	allOnes := []byte{1, 1, 1, 1, 1, 1, 1, 1}
	allZero := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	mixed := []byte{1, 1, 1, 1, 0, 0, 0, 0}
	out := DecodeCode(append(append(allOnes, allZero...), mixed...))
	require.Equal(t, []byte{1, 0, 1}, out)
}

func TestSysFileReadRejectsPathContainingRadSubstring(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "rad"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "FLAG"), []byte("flag{test}"), 0o600))
	old := FileRoot
	FileRoot = dir
	defer func() { FileRoot = old }()

	mem := make([]byte, 256)
	copy(mem[0:], "rad/secret\x00")
	code := append(instr(opMovImm, 1, 0, 0, 0), instr(opMovImm, 2, 0, 0, 64)...)
	code = append(code, instr(opMovImm, 3, 0, 0, 64)...)
	code = append(code, instr(opCall, 0, 0, 0, syscallFileRead)...)
	code = append(code, instr(opExit, 0, 0, 0, 0)...)
	_, err := ExecuteBytes(code, mem, false)
	require.NoError(t, err)
	require.NotContains(t, string(mem[64:64+10]), "flag{test}")
}

func TestSysFileReadAllowsTraversalPathWithoutRad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sandbox"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "FLAG"), []byte("flag{test}"), 0o600))
	old := FileRoot
	FileRoot = dir
	defer func() { FileRoot = old }()

	mem := make([]byte, 256)
	copy(mem[0:], "sandbox/../FLAG\x00")
	code := append(instr(opMovImm, 1, 0, 0, 0), instr(opMovImm, 2, 0, 0, 64)...)
	code = append(code, instr(opMovImm, 3, 0, 0, 64)...)
	code = append(code, instr(opCall, 0, 0, 0, syscallFileRead)...)
	code = append(code, instr(opExit, 0, 0, 0, 0)...)
	_, err := ExecuteBytes(code, mem, false)
	require.NoError(t, err)
	require.Contains(t, string(mem[64:64+10]), "flag{test}")
}

func TestSysSendMessageRejectsLongMessage(t *testing.T) {
	mem := make([]byte, 256)
	code := append(instr(opMovImm, 1, 0, 0, 0), instr(opMovImm, 2, 0, 0, 64)...)
	code = append(code, instr(opCall, 0, 0, 0, syscallSendMessage)...)
	code = append(code, instr(opExit, 0, 0, 0, 0)...)
	r0, err := ExecuteBytes(code, mem, false)
	require.NoError(t, err)
	require.Equal(t, ^uint64(0), r0)
}
