package protected

import "github.com/hardsat/rad/internal/faulterr"

// Sizes for the flat, page-reportable encoding of protected state. Every
// protected datum serializes as its shards followed by its checksum;
// Module's plain Verified/Signature/Code fields serialize as themselves,
// exactly as they sit in memory, since nothing protects them.
const (
	u64RawSize    = 4 + 4 + 4 + 8
	eventHalfSize = MaxMessageSize / 2
	eventRawSize  = u64RawSize + (3*eventHalfSize + 8)
	moduleRawSize = 3*u64RawSize + 8 + 64 + CodeSize

	// StateArenaSize is the exact byte length of the flat encoding of a
	// State: three top-level counters, the event ring, then the module
	// table, in that order. This is the span the executive's fault
	// injector treats as the firmware's protected-state region, and the
	// size the firmware reports in its startup log line.
	StateArenaSize = 3*u64RawSize + EventLogSize*eventRawSize + ModuleCount*moduleRawSize
)

func putU64Raw(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (56 - 8*i))
	}
}

func getU64Raw(src []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(src[i])
	}
	return v
}

func encodeU64Raw(dst []byte, u *U64) {
	copy(dst[0:4], u.shards[0])
	copy(dst[4:8], u.shards[1])
	copy(dst[8:12], u.shards[2])
	putU64Raw(dst[12:20], u.checksum)
}

func decodeU64Raw(src []byte) *U64 {
	return &U64{
		shards: [3][]byte{
			append([]byte(nil), src[0:4]...),
			append([]byte(nil), src[4:8]...),
			append([]byte(nil), src[8:12]...),
		},
		checksum: getU64Raw(src[12:20]),
	}
}

func encodeBytesRaw(dst []byte, b *Bytes) {
	h := b.half
	copy(dst[0:h], b.shards[0])
	copy(dst[h:2*h], b.shards[1])
	copy(dst[2*h:3*h], b.shards[2])
	putU64Raw(dst[3*h:3*h+8], b.checksum)
}

func decodeBytesRaw(src []byte, half int) *Bytes {
	return &Bytes{
		half: half,
		shards: [3][]byte{
			append([]byte(nil), src[0:half]...),
			append([]byte(nil), src[half:2*half]...),
			append([]byte(nil), src[2*half:3*half]...),
		},
		checksum: getU64Raw(src[3*half : 3*half+8]),
	}
}

func encodeEventRaw(dst []byte, e *Event) {
	encodeU64Raw(dst[0:u64RawSize], e.Timestamp)
	encodeBytesRaw(dst[u64RawSize:eventRawSize], e.Message)
}

func decodeEventRaw(src []byte) *Event {
	return &Event{
		Timestamp: decodeU64Raw(src[0:u64RawSize]),
		Message:   decodeBytesRaw(src[u64RawSize:eventRawSize], eventHalfSize),
	}
}

func encodeModuleRaw(dst []byte, m *Module) {
	off := 0
	encodeU64Raw(dst[off:off+u64RawSize], m.Updated)
	off += u64RawSize
	encodeU64Raw(dst[off:off+u64RawSize], m.Enabled)
	off += u64RawSize
	encodeU64Raw(dst[off:off+u64RawSize], m.Encoded)
	off += u64RawSize
	putU64Raw(dst[off:off+8], m.Verified)
	off += 8
	copy(dst[off:off+64], m.Signature[:])
	off += 64
	copy(dst[off:off+CodeSize], m.Code[:])
}

func decodeModuleRaw(src []byte) *Module {
	off := 0
	updated := decodeU64Raw(src[off : off+u64RawSize])
	off += u64RawSize
	enabled := decodeU64Raw(src[off : off+u64RawSize])
	off += u64RawSize
	encoded := decodeU64Raw(src[off : off+u64RawSize])
	off += u64RawSize
	verified := getU64Raw(src[off : off+8])
	off += 8
	m := &Module{Updated: updated, Enabled: enabled, Encoded: encoded, Verified: verified}
	copy(m.Signature[:], src[off:off+64])
	off += 64
	copy(m.Code[:], src[off:off+CodeSize])
	return m
}

// MarshalState flattens s into a fixed-size byte arena of exactly
// StateArenaSize bytes, byte-for-byte reproducible so the executive's fault
// injector and checkpoint file operate on the same layout as the firmware's
// own live copy.
func MarshalState(s *State) []byte {
	buf := make([]byte, StateArenaSize)
	off := 0
	encodeU64Raw(buf[off:off+u64RawSize], s.Repairs)
	off += u64RawSize
	encodeU64Raw(buf[off:off+u64RawSize], s.Restarts)
	off += u64RawSize
	encodeU64Raw(buf[off:off+u64RawSize], s.EventIndex)
	off += u64RawSize
	for _, e := range s.Events {
		encodeEventRaw(buf[off:off+eventRawSize], e)
		off += eventRawSize
	}
	for _, m := range s.Modules {
		encodeModuleRaw(buf[off:off+moduleRawSize], m)
		off += moduleRawSize
	}
	return buf
}

// UnmarshalState reconstructs a State from an arena previously produced by
// MarshalState, possibly mutated in place by the fault injector in the
// interim. It never fails on corrupt shard data: corruption surfaces later,
// through Verify/Get/Repair, exactly as it would for a State assembled the
// ordinary way with New().
func UnmarshalState(buf []byte) (*State, error) {
	if len(buf) != StateArenaSize {
		return nil, faulterr.New(faulterr.DataSize, "protected: arena has wrong size for State")
	}
	s := &State{}
	off := 0
	s.Repairs = decodeU64Raw(buf[off : off+u64RawSize])
	off += u64RawSize
	s.Restarts = decodeU64Raw(buf[off : off+u64RawSize])
	off += u64RawSize
	s.EventIndex = decodeU64Raw(buf[off : off+u64RawSize])
	off += u64RawSize
	for i := range s.Events {
		s.Events[i] = decodeEventRaw(buf[off : off+eventRawSize])
		off += eventRawSize
	}
	for i := range s.Modules {
		s.Modules[i] = decodeModuleRaw(buf[off : off+moduleRawSize])
		off += moduleRawSize
	}
	return s, nil
}
