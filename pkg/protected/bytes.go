package protected

import "github.com/hardsat/rad/internal/faulterr"

// Bytes is a triple-redundant, erasure-coded byte buffer of fixed length,
// split into two equal halves plus an XOR-parity shard, following the same
// repair discipline as U64. The length is fixed at construction time; Update
// must always be called with a buffer of that same length.
type Bytes struct {
	half     int
	shards   [3][]byte
	checksum uint64
}

// NewBytes builds a freshly encoded, checksummed datum from data. len(data)
// must be even; it is split into two equal halves.
func NewBytes(data []byte) (*Bytes, error) {
	if len(data)%2 != 0 {
		return nil, faulterr.New(faulterr.DataSize, "bytes: length must be even to split into two shards")
	}
	b := &Bytes{half: len(data) / 2}
	if err := b.set(data); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bytes) set(data []byte) error {
	if len(data) != b.half*2 {
		return faulterr.New(faulterr.DataSize, "bytes: update length does not match datum length")
	}
	shard0 := append([]byte(nil), data[0:b.half]...)
	shard1 := append([]byte(nil), data[b.half:2*b.half]...)
	shard2 := make([]byte, b.half)
	shards := [3][]byte{shard0, shard1, shard2}
	if err := encodeParity(shards); err != nil {
		return faulterr.Wrap(faulterr.EccReconstruct, "bytes: parity encode failed", err)
	}
	b.shards = shards
	b.checksum = hashShards(shards[0], shards[1], shards[2])
	return nil
}

// Verify reports whether the stored checksum matches the current shards.
func (b *Bytes) Verify() bool {
	return hashShards(b.shards[0], b.shards[1], b.shards[2]) == b.checksum
}

// Repair attempts single-shard reconstruction, same discipline as
// U64.Repair.
func (b *Bytes) Repair() error {
	if b.Verify() {
		return nil
	}
	for missing := 0; missing < 3; missing++ {
		candidate, err := reconstructMissing(b.shards, missing)
		if err != nil {
			continue
		}
		if hashShards(candidate[0], candidate[1], candidate[2]) == b.checksum {
			b.shards = candidate
			return nil
		}
	}
	return faulterr.New(faulterr.IntegrityUnrepairable, "bytes: no single-shard reconstruction matched checksum")
}

// Get verifies the datum, repairing it first if necessary, and returns the
// decoded buffer.
func (b *Bytes) Get() ([]byte, error) {
	if !b.Verify() {
		if err := b.Repair(); err != nil {
			return nil, err
		}
	}
	out := make([]byte, 2*b.half)
	copy(out[0:b.half], b.shards[0])
	copy(out[b.half:2*b.half], b.shards[1])
	return out, nil
}

// Update re-encodes the datum for a new buffer of the same length.
func (b *Bytes) Update(data []byte) error {
	return b.set(data)
}

// Len returns the full (unsplit) length of the datum.
func (b *Bytes) Len() int { return 2 * b.half }

// Checksum returns the stored checksum, primarily for diagnostics and tests.
func (b *Bytes) Checksum() uint64 { return b.checksum }
