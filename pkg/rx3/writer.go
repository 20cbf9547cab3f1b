package rx3

import (
	"encoding/binary"
	"math"

	"github.com/Faultbox/rx3kit/pkg/encoding"
)

// Writer appends encoded values to a growing buffer.
type Writer struct {
	buf   []byte
	order binary.ByteOrder
}

// NewWriter returns an empty writer.
func NewWriter(order binary.ByteOrder) *Writer {
	return &Writer{order: order}
}

// Bytes returns the written data.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return len(w.buf) }

// Reserve grows the buffer capacity to at least n bytes.
func (w *Writer) Reserve(n int) {
	if n > cap(w.buf) {
		grown := make([]byte, len(w.buf), n)
		copy(grown, w.buf)
		w.buf = grown
	}
}

// PutBytes appends raw bytes.
func (w *Writer) PutBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// PutU8 appends a byte.
func (w *Writer) PutU8(v uint8) {
	w.buf = append(w.buf, v)
}

// PutU16 appends an unsigned 16-bit integer.
func (w *Writer) PutU16(v uint16) {
	var b [2]byte
	w.order.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// PutI16 appends a signed 16-bit integer.
func (w *Writer) PutI16(v int16) {
	w.PutU16(uint16(v))
}

// PutU32 appends an unsigned 32-bit integer.
func (w *Writer) PutU32(v uint32) {
	var b [4]byte
	w.order.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// PutF32 appends a 32-bit float.
func (w *Writer) PutF32(v float32) {
	w.PutU32(math.Float32bits(v))
}

// PutCString appends s followed by a NUL terminator. Characters that fit
// Windows-1252 are written in that encoding, matching what CString reads.
func (w *Writer) PutCString(s string) {
	w.buf = append(w.buf, encoding.ToLegacy(s)...)
	w.buf = append(w.buf, 0)
}

// Align pads with zero bytes up to the next multiple of n.
func (w *Writer) Align(n int) {
	if n <= 0 {
		return
	}
	for len(w.buf)%n != 0 {
		w.buf = append(w.buf, 0)
	}
}
