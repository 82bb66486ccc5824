package gateway

import (
	"testing"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardsat/rad/internal/keys"
)

func seal(t *testing.T, plain []byte) (sealed, nonce []byte) {
	t.Helper()
	aead, err := chacha20poly1305.New(keys.SealKey)
	require.NoError(t, err)
	nonce = make([]byte, chacha20poly1305.NonceSize)
	for i := range nonce {
		nonce[i] = byte(i + 1)
	}
	sealed = aead.Seal(nil, nonce, plain, nil)
	return sealed, nonce
}

func TestUnsealRoundTrip(t *testing.T) {
	sealed, nonce := seal(t, []byte("a ground-client token"))
	plain, err := Unseal(sealed, nonce)
	require.NoError(t, err)
	assert.Equal(t, "a ground-client token", string(plain))
}

func TestUnsealRejectsTamperedCiphertext(t *testing.T) {
	sealed, nonce := seal(t, []byte("token"))
	sealed[0] ^= 0xff
	_, err := Unseal(sealed, nonce)
	assert.Error(t, err)
}

func TestUnsealRejectsWrongNonceLength(t *testing.T) {
	sealed, _ := seal(t, []byte("token"))
	_, err := Unseal(sealed, []byte{1, 2, 3})
	assert.Error(t, err)
}
