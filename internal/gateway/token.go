package gateway

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hardsat/rad/internal/faulterr"
)

// ExtractUserID decodes a ground-client JWT without verifying its
// signature and returns the "user_id" claim as an unsigned integer. Per
// spec, confidentiality comes from the ChaCha20-Poly1305 seal, not from the
// token's own signature; this is a deliberate design choice, not an
// oversight, so jwt.Parser's signature check is bypassed on purpose.
func ExtractUserID(token string) (uint64, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return 0, faulterr.Wrap(faulterr.AuthReject, "gateway: parse token", err)
	}

	raw, ok := claims["user_id"]
	if !ok {
		return 0, faulterr.New(faulterr.AuthReject, "gateway: token missing user_id claim")
	}

	switch v := raw.(type) {
	case float64:
		if v < 0 {
			return 0, faulterr.New(faulterr.AuthReject, "gateway: user_id claim is negative")
		}
		return uint64(v), nil
	case string:
		var id uint64
		if _, err := fmt.Sscanf(v, "%d", &id); err != nil {
			return 0, faulterr.Wrap(faulterr.AuthReject, "gateway: user_id claim is non-integer", err)
		}
		return id, nil
	default:
		return 0, faulterr.New(faulterr.AuthReject, "gateway: user_id claim has unsupported type")
	}
}
