package protected

import (
	"fmt"
	"sync"

	"github.com/klauspost/reedsolomon"
)

// encoder is the single Reed-Solomon(2,1) systematic encoder shared by every
// protected datum in the process. klauspost/reedsolomon encoders are
// stateless with respect to shard length, so one instance serves shards of
// any size (4 bytes for U64, N bytes for Bytes[N]).
var (
	encoderOnce sync.Once
	encoderImpl reedsolomon.Encoder
)

func encoder() reedsolomon.Encoder {
	encoderOnce.Do(func() {
		enc, err := reedsolomon.New(2, 1)
		if err != nil {
			panic("protected: unable to construct RS(2,1) encoder: " + err.Error())
		}
		encoderImpl = enc
	})
	return encoderImpl
}

// encodeParity fills shards[2] with the XOR parity of shards[0] and
// shards[1]. shards[2] must already be allocated to the same length.
func encodeParity(shards [3][]byte) error {
	s := [][]byte{shards[0], shards[1], shards[2]}
	if err := encoder().Encode(s); err != nil {
		return fmt.Errorf("encode parity shard: %w", err)
	}
	return nil
}

// reconstructMissing rebuilds shardLen-sized data assuming shards[missing] is
// corrupt, returning the reconstructed triple without mutating the input.
func reconstructMissing(shards [3][]byte, missing int) ([3][]byte, error) {
	work := make([][]byte, 3)
	for i, s := range shards {
		if i == missing {
			work[i] = nil
			continue
		}
		cp := make([]byte, len(s))
		copy(cp, s)
		work[i] = cp
	}
	if err := encoder().Reconstruct(work); err != nil {
		return [3][]byte{}, fmt.Errorf("reconstruct shard %d: %w", missing, err)
	}
	var out [3][]byte
	for i := range out {
		out[i] = work[i]
	}
	return out, nil
}
