package protected

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBytesRoundTrip(t *testing.T) {
	data := []byte("hello, ground control")
	padded := make([]byte, len(data)+1)
	copy(padded, data)
	b, err := NewBytes(padded)
	require.NoError(t, err)
	out, err := b.Get()
	require.NoError(t, err)
	require.Equal(t, padded, out)
}

func TestBytesRejectsOddLength(t *testing.T) {
	_, err := NewBytes([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestBytesRepairsSingleShardCorruption(t *testing.T) {
	b, err := NewBytes([]byte("abcd"))
	require.NoError(t, err)
	b.shards[0][0] ^= 0xff
	require.False(t, b.Verify())
	require.NoError(t, b.Repair())
	out, err := b.Get()
	require.NoError(t, err)
	require.Equal(t, []byte("abcd"), out)
}

func TestBytesUpdateRejectsWrongLength(t *testing.T) {
	b, err := NewBytes([]byte("abcd"))
	require.NoError(t, err)
	err = b.Update([]byte("ab"))
	require.Error(t, err)
}
