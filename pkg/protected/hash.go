package protected

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// rootSeed is the compiled-in 256-bit key for the protected-datum checksum.
// It must never change across builds of the firmware image: a deserialised
// checkpoint's stored checksums are only valid against the seed that wrote
// them.
var rootSeed = [32]byte{
	0x67, 0x67, 0x89, 0x57, 0x51, 0x9d, 0xcf, 0x38,
	0xb3, 0xa2, 0x47, 0xb1, 0xd0, 0x38, 0xf5, 0x70,
	0x3a, 0x1c, 0x73, 0x7b, 0x3e, 0x72, 0xf2, 0xa4,
	0xd3, 0x83, 0xf8, 0x4a, 0x00, 0xe3, 0x30, 0x0f,
}

// hashShards computes the 64-bit keyed checksum over a triple of shards, in
// order. The hash must be deterministic across process runs so that
// deserialised checksums still validate against freshly recomputed ones.
func hashShards(shards ...[]byte) uint64 {
	h, err := blake2b.New(8, rootSeed[:])
	if err != nil {
		// rootSeed is a fixed 32-byte key, well within blake2b's 64-byte
		// limit; this can only fail if the constant above is corrupted.
		panic("protected: invalid checksum key: " + err.Error())
	}
	for _, s := range shards {
		h.Write(s)
	}
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum)
}

// ChecksumBytes exposes the same keyed 64-bit hash used internally for shard
// checksums, for callers that need a tamper-evident digest of raw bytes that
// aren't themselves a protected datum — e.g. reporting a module's code
// checksum to ground control without transmitting all 4096 bytes.
func ChecksumBytes(data []byte) uint64 {
	return hashShards(data)
}
