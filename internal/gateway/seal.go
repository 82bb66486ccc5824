// Package gateway implements the proxy and node halves of the front-end
// tier (spec component C5): ground-client authentication, team hash
// routing, per-team container lifecycling, and traffic splicing.
package gateway

import (
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/hardsat/rad/internal/faulterr"
	"github.com/hardsat/rad/internal/keys"
)

// Unseal decrypts a ChaCha20-Poly1305 sealed authentication token using the
// compiled-in key and the caller-supplied nonce. A failed tag check (wrong
// key, tampered ciphertext, or wrong nonce) surfaces as AuthReject: the
// seal's integrity check is the only authentication the proxy performs on
// the token's confidentiality boundary.
func Unseal(sealed, nonce []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(keys.SealKey)
	if err != nil {
		return nil, faulterr.Wrap(faulterr.AuthReject, "gateway: construct seal cipher", err)
	}
	if len(nonce) != chacha20poly1305.NonceSize {
		return nil, faulterr.New(faulterr.AuthReject, "gateway: malformed nonce length")
	}
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, faulterr.Wrap(faulterr.AuthReject, "gateway: unseal token", err)
	}
	return plain, nil
}
