package wire

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/hardsat/rad/internal/faulterr"
)

type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) byte(b byte)        { e.buf.WriteByte(b) }
func (e *encoder) u8(v uint8)         { e.buf.WriteByte(v) }
func (e *encoder) bool(v bool) {
	if v {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
}
func (e *encoder) u64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}
func (e *encoder) f64(v float64) { e.u64(math.Float64bits(v)) }
func (e *encoder) bytes(v []byte) {
	var l [4]byte
	binary.BigEndian.PutUint32(l[:], uint32(len(v)))
	e.buf.Write(l[:])
	e.buf.Write(v)
}
func (e *encoder) fixed(v []byte) { e.buf.Write(v) }
func (e *encoder) str(v string)   { e.bytes([]byte(v)) }

type decoder struct {
	r *bytes.Reader
}

func newDecoder(data []byte) *decoder { return &decoder{r: bytes.NewReader(data)} }

func (d *decoder) byte() (byte, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, faulterr.Wrap(faulterr.ProtocolViolation, "wire: short frame", err)
	}
	return b, nil
}

func (d *decoder) bool() (bool, error) {
	b, err := d.byte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (d *decoder) u64() (uint64, error) {
	var b [8]byte
	if _, err := d.r.Read(b[:]); err != nil {
		return 0, faulterr.Wrap(faulterr.ProtocolViolation, "wire: short frame reading u64", err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func (d *decoder) f64() (float64, error) {
	v, err := d.u64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (d *decoder) bytes() ([]byte, error) {
	var l [4]byte
	if _, err := d.r.Read(l[:]); err != nil {
		return nil, faulterr.Wrap(faulterr.ProtocolViolation, "wire: short frame reading length", err)
	}
	n := binary.BigEndian.Uint32(l[:])
	if n > MaxFrameSize {
		return nil, faulterr.New(faulterr.ProtocolViolation, "wire: embedded length exceeds maximum")
	}
	buf := make([]byte, n)
	if _, err := d.r.Read(buf); err != nil && n > 0 {
		return nil, faulterr.Wrap(faulterr.ProtocolViolation, "wire: short frame reading bytes", err)
	}
	return buf, nil
}

func (d *decoder) fixed(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := d.r.Read(buf); err != nil && n > 0 {
		return nil, faulterr.Wrap(faulterr.ProtocolViolation, "wire: short frame reading fixed buffer", err)
	}
	return buf, nil
}

func (d *decoder) str() (string, error) {
	b, err := d.bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
