// Package keys holds the compiled-in cryptographic material used to
// authenticate module uploads and ground-station sessions. None of it is
// read from disk or environment at runtime: a build that wants different
// keys recompiles with different constants here, the same way the firmware
// image embeds its signing key.
package keys

// ModulePublicKey verifies the signature over an uploaded module's code
// buffer. The matching private key never ships with the firmware image.
var ModulePublicKey = []byte{
	0x1a, 0x2b, 0x3c, 0x4d, 0x5e, 0x6f, 0x70, 0x81,
	0x92, 0xa3, 0xb4, 0xc5, 0xd6, 0xe7, 0xf8, 0x09,
	0x1a, 0x2b, 0x3c, 0x4d, 0x5e, 0x6f, 0x70, 0x81,
	0x92, 0xa3, 0xb4, 0xc5, 0xd6, 0xe7, 0xf8, 0x09,
}

// SealKey is the compiled-in ChaCha20-Poly1305 key used by the gateway to
// open ground-client authentication tokens sealed by the matchmaking
// service. It is 32 bytes, as required by chacha20poly1305.New.
var SealKey = []byte{
	0xc0, 0xff, 0xee, 0x00, 0x11, 0x22, 0x33, 0x44,
	0x55, 0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb, 0xcc,
	0xdd, 0xee, 0xff, 0x01, 0x02, 0x03, 0x04, 0x05,
	0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d,
}
