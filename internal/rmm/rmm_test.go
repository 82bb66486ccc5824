package rmm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferMutatorFlipsSingleBit(t *testing.T) {
	m := &BufferMutator{Buf: []byte{0x00, 0xff}}
	require.NoError(t, m.FlipBit(0, 3))
	require.Equal(t, byte(0x08), m.Buf[0])
	require.NoError(t, m.FlipBit(1, 0))
	require.Equal(t, byte(0xfe), m.Buf[1])
}

func TestBufferMutatorRejectsOutOfRange(t *testing.T) {
	m := &BufferMutator{Buf: []byte{0x00}}
	require.Error(t, m.FlipBit(5, 0))
	require.Error(t, m.FlipBit(0, 9))
}
