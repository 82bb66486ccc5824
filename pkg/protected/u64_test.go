package protected

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestU64RoundTrip(t *testing.T) {
	u := NewU64(0xdeadbeefcafef00d)
	v, err := u.Get()
	require.NoError(t, err)
	require.Equal(t, uint64(0xdeadbeefcafef00d), v)
	require.True(t, u.Verify())
}

func TestU64RepairsSingleShardCorruption(t *testing.T) {
	u := NewU64(123456789)
	u.shards[1][0] ^= 0xff
	require.False(t, u.Verify())
	require.NoError(t, u.Repair())
	require.True(t, u.Verify())
	v, err := u.Get()
	require.NoError(t, err)
	require.Equal(t, uint64(123456789), v)
}

func TestU64UnrepairableOnDoubleShardCorruption(t *testing.T) {
	u := NewU64(42)
	u.shards[0][0] ^= 0xff
	u.shards[1][0] ^= 0xff
	err := u.Repair()
	require.Error(t, err)
}

func TestU64IncrementRepairsFirst(t *testing.T) {
	u := NewU64(10)
	u.shards[2][0] ^= 0x01
	require.NoError(t, u.Increment(5))
	v, err := u.Get()
	require.NoError(t, err)
	require.Equal(t, uint64(15), v)
}

func TestU64UpdateResetsChecksum(t *testing.T) {
	u := NewU64(1)
	u.Update(2)
	v, err := u.Get()
	require.NoError(t, err)
	require.Equal(t, uint64(2), v)
}
