package rx3

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Faultbox/rx3kit/pkg/encoding"
)

// Reader is a bounds-checked sequential cursor over a byte slice.
//
// The first failed read is recorded and returned by Err; later reads return
// zero values without advancing, so a decode routine can read a whole record
// and check Err once.
type Reader struct {
	data  []byte
	pos   int
	order binary.ByteOrder
	err   error
}

// NewReader returns a cursor positioned at the start of data.
func NewReader(data []byte, order binary.ByteOrder) *Reader {
	return &Reader{data: data, order: order}
}

// Err returns the first error encountered.
func (r *Reader) Err() error { return r.err }

// Pos returns the current offset.
func (r *Reader) Pos() int { return r.pos }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.data) - r.pos }

// Order returns the cursor byte order.
func (r *Reader) Order() binary.ByteOrder { return r.order }

// Data returns the underlying buffer.
func (r *Reader) Data() []byte { return r.data }

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > len(r.data)-r.pos {
		r.fail(fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrUnexpectedEOF, n, r.pos, len(r.data)-r.pos))
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) {
	r.take(n)
}

// Seek moves the cursor to an absolute offset.
func (r *Reader) Seek(pos int) {
	if r.err != nil {
		return
	}
	if pos < 0 || pos > len(r.data) {
		r.fail(fmt.Errorf("%w: seek to %d of %d", ErrUnexpectedEOF, pos, len(r.data)))
		return
	}
	r.pos = pos
}

// Bytes returns the next n bytes without copying.
func (r *Reader) Bytes(n int) []byte {
	return r.take(n)
}

// U8 reads an unsigned byte.
func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// U16 reads an unsigned 16-bit integer.
func (r *Reader) U16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return r.order.Uint16(b)
}

// I16 reads a signed 16-bit integer.
func (r *Reader) I16() int16 {
	return int16(r.U16())
}

// U32 reads an unsigned 32-bit integer.
func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return r.order.Uint32(b)
}

// I32 reads a signed 32-bit integer.
func (r *Reader) I32() int32 {
	return int32(r.U32())
}

// F32 reads a 32-bit float.
func (r *Reader) F32() float32 {
	return math.Float32frombits(r.U32())
}

// Vec3 reads three floats.
func (r *Reader) Vec3() [3]float32 {
	return [3]float32{r.F32(), r.F32(), r.F32()}
}

// Mat4 reads sixteen floats in storage order.
func (r *Reader) Mat4() [16]float32 {
	var m [16]float32
	for i := range m {
		m[i] = r.F32()
	}
	return m
}

func (r *Reader) rawCString() []byte {
	if r.err != nil {
		return nil
	}
	end := bytes.IndexByte(r.data[r.pos:], 0)
	if end < 0 {
		r.fail(fmt.Errorf("%w at offset %d", ErrUnterminatedString, r.pos))
		return nil
	}
	return r.data[r.pos : r.pos+end]
}

// PeekCString returns the NUL-terminated string at the cursor without
// advancing. Bytes that are not UTF-8 are decoded as Windows-1252.
func (r *Reader) PeekCString() string {
	return encoding.ToUTF8(r.rawCString())
}

// CString reads a NUL-terminated string and advances past the terminator.
func (r *Reader) CString() string {
	raw := r.rawCString()
	if r.err != nil {
		return ""
	}
	r.pos += len(raw) + 1
	return encoding.ToUTF8(raw)
}
