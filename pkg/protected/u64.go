package protected

import (
	"encoding/binary"

	"github.com/hardsat/rad/internal/faulterr"
)

// U64 is a triple-redundant, erasure-coded 64-bit integer. The value is
// split across two 4-byte halves (shard0, shard1) with a third XOR-parity
// shard (shard2) computed by the shared RS(2,1) encoder, so any single
// corrupted shard can be reconstructed from the other two. A keyed checksum
// over all three shards detects corruption and confirms a repair candidate.
type U64 struct {
	shards   [3][]byte
	checksum uint64
}

// NewU64 builds a freshly encoded, checksummed datum for value.
func NewU64(value uint64) *U64 {
	u := &U64{}
	u.set(value)
	return u
}

func (u *U64) set(value uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], value)
	shard0 := append([]byte(nil), buf[0:4]...)
	shard1 := append([]byte(nil), buf[4:8]...)
	shard2 := make([]byte, 4)
	shards := [3][]byte{shard0, shard1, shard2}
	if err := encodeParity(shards); err != nil {
		panic("protected: U64 parity encode failed: " + err.Error())
	}
	u.shards = shards
	u.checksum = hashShards(shards[0], shards[1], shards[2])
}

func decodeU64(shard0, shard1 []byte) uint64 {
	var buf [8]byte
	copy(buf[0:4], shard0)
	copy(buf[4:8], shard1)
	return binary.BigEndian.Uint64(buf[:])
}

// Verify reports whether the stored checksum matches the current shards.
func (u *U64) Verify() bool {
	return hashShards(u.shards[0], u.shards[1], u.shards[2]) == u.checksum
}

// Repair attempts to reconstruct a single corrupted shard by trying each
// shard index in turn as the missing one, accepting the first reconstruction
// whose recomputed checksum matches the stored one. Two or more corrupted
// shards are unrepairable.
func (u *U64) Repair() error {
	if u.Verify() {
		return nil
	}
	for missing := 0; missing < 3; missing++ {
		candidate, err := reconstructMissing(u.shards, missing)
		if err != nil {
			continue
		}
		if hashShards(candidate[0], candidate[1], candidate[2]) == u.checksum {
			u.shards = candidate
			return nil
		}
	}
	return faulterr.New(faulterr.IntegrityUnrepairable, "u64: no single-shard reconstruction matched checksum")
}

// Get verifies the datum, repairing it first if necessary, and returns the
// decoded value.
func (u *U64) Get() (uint64, error) {
	if !u.Verify() {
		if err := u.Repair(); err != nil {
			return 0, err
		}
	}
	return decodeU64(u.shards[0], u.shards[1]), nil
}

// Update re-encodes the datum for a new value, recomputing shards and
// checksum from scratch.
func (u *U64) Update(value uint64) {
	u.set(value)
}

// Increment adds delta to the current value, repairing first if needed.
func (u *U64) Increment(delta uint64) error {
	v, err := u.Get()
	if err != nil {
		return err
	}
	u.Update(v + delta)
	return nil
}

// Checksum returns the stored checksum, primarily for diagnostics and tests.
func (u *U64) Checksum() uint64 { return u.checksum }
