package protected

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalStateRoundTrip(t *testing.T) {
	s := New()
	require.NoError(t, s.Log(42, []byte("boot")))
	require.NoError(t, s.Repairs.Increment(3))
	s.Modules[0].SetEnabled(true)

	buf := MarshalState(s)
	require.Len(t, buf, StateArenaSize)

	got, err := UnmarshalState(buf)
	require.NoError(t, err)

	repairs, err := got.Repairs.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), repairs)

	enabled, err := got.Modules[0].IsEnabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	ts, msg, err := got.Events[0].Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), ts)
	assert.Equal(t, "boot", string(trimZero(msg)))
}

func TestUnmarshalStateRejectsWrongSize(t *testing.T) {
	_, err := UnmarshalState(make([]byte, 10))
	assert.Error(t, err)
}

func TestMarshalStateSurvivesBitFlip(t *testing.T) {
	s := New()
	require.NoError(t, s.Repairs.Increment(5))
	buf := MarshalState(s)

	// Flip a single bit inside Repairs' first shard.
	buf[0] ^= 0x01

	got, err := UnmarshalState(buf)
	require.NoError(t, err)
	assert.False(t, got.Repairs.Verify())

	repairs, err := got.Repairs.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), repairs, "single-shard corruption must self-heal through Get")
}

func trimZero(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}
