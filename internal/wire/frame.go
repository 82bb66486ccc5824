// Package wire implements the length-prefixed binary framing and tagged
// message codec used on every socket in the system: the firmware's control
// socket, the executive's ground TCP port, and the executive's own service
// socket. Every frame is a four-byte big-endian length followed by that many
// bytes of tagged payload.
package wire

import (
	"encoding/binary"
	"io"

	"github.com/hardsat/rad/internal/faulterr"
)

// MaxFrameSize bounds a single frame's payload, guarding against a
// malformed length prefix forcing an unbounded allocation.
const MaxFrameSize = 1 << 20

// WriteFrame writes a length-prefixed frame containing payload.
func WriteFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return faulterr.Wrap(faulterr.IO, "wire: write frame length", err)
	}
	if _, err := w.Write(payload); err != nil {
		return faulterr.Wrap(faulterr.IO, "wire: write frame payload", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame's payload.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, faulterr.Wrap(faulterr.IO, "wire: read frame length", err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxFrameSize {
		return nil, faulterr.New(faulterr.ProtocolViolation, "wire: frame exceeds maximum size")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, faulterr.Wrap(faulterr.IO, "wire: read frame payload", err)
	}
	return buf, nil
}
