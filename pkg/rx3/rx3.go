// Package rx3 provides reading and writing of RX3 chunk containers.
//
// An RX3 file is a 16 byte header followed by a flat chunk table and the
// concatenated chunk payloads:
//
//	magic    [4]byte  "RX3l" (little endian) or "RX3b" (big endian)
//	version  uint32
//	size     uint32   total file size
//	count    uint32
//	table    count x {id, offset, size, reserved uint32}
//
// Header fields after the magic and every chunk payload use the byte order
// selected by the magic.
package rx3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Structural errors returned while loading a container or reading a chunk.
var (
	ErrTooShort            = errors.New("rx3: data too short")
	ErrBadMagic            = errors.New("rx3: invalid magic")
	ErrTruncatedChunkTable = errors.New("rx3: truncated chunk table")
	ErrChunkOutOfBounds    = errors.New("rx3: chunk out of bounds")
	ErrUnexpectedEOF       = errors.New("rx3: unexpected end of data")
	ErrUnterminatedString  = errors.New("rx3: unterminated string")
)

const (
	magicLittle = "RX3l"
	magicBig    = "RX3b"

	// HeaderSize is the size of the fixed file header.
	HeaderSize = 16
	// TableEntrySize is the size of one chunk table entry.
	TableEntrySize = 16
	// Version is the header version written by Save.
	Version = 4
)

// Chunk is one tagged record of a container.
type Chunk struct {
	ID        uint32
	Data      []byte
	BigEndian bool
}

// Order returns the byte order of the chunk payload.
func (c *Chunk) Order() binary.ByteOrder {
	return byteOrder(c.BigEndian)
}

// Reader returns a bounds-checked cursor over the chunk payload.
func (c *Chunk) Reader() *Reader {
	return NewReader(c.Data, c.Order())
}

// Name returns the well-known name of the chunk type, or its id in hex.
func (c *Chunk) Name() string {
	return ChunkName(c.ID)
}

// Container is an ordered list of chunks.
type Container struct {
	Name      string
	BigEndian bool
	Chunks    []*Chunk
}

// TableEntry is one decoded chunk table record.
type TableEntry struct {
	ID     uint32
	Offset uint32
	Size   uint32
}

// Load parses a container from memory. Chunk payloads are copied.
func Load(data []byte) (*Container, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooShort, len(data))
	}

	var bigEndian bool
	switch string(data[:4]) {
	case magicLittle:
	case magicBig:
		bigEndian = true
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, data[:4])
	}

	r := NewReader(data, byteOrder(bigEndian))
	r.Skip(4 + 8)
	count := r.U32()

	tableEnd := uint64(HeaderSize) + uint64(count)*TableEntrySize
	if tableEnd > uint64(len(data)) {
		return nil, fmt.Errorf("%w: %d entries need %d bytes, have %d",
			ErrTruncatedChunkTable, count, tableEnd, len(data))
	}

	c := &Container{
		BigEndian: bigEndian,
		Chunks:    make([]*Chunk, 0, count),
	}

	for i := uint32(0); i < count; i++ {
		e := TableEntry{ID: r.U32(), Offset: r.U32(), Size: r.U32()}
		r.Skip(4)

		end := uint64(e.Offset) + uint64(e.Size)
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: chunk %d (%s) [%d, %d) exceeds %d bytes",
				ErrChunkOutOfBounds, i, ChunkName(e.ID), e.Offset, end, len(data))
		}

		payload := make([]byte, e.Size)
		copy(payload, data[e.Offset:end])
		c.Chunks = append(c.Chunks, &Chunk{ID: e.ID, Data: payload, BigEndian: bigEndian})
	}

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("reading chunk table: %w", err)
	}

	return c, nil
}

// LoadFile reads and parses a container file. The container is named after
// the file stem.
func LoadFile(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	c, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	c.Name = Stem(path)
	return c, nil
}

// HeaderLen returns the size of the header plus chunk table.
func (c *Container) HeaderLen() int {
	return HeaderSize + TableEntrySize*len(c.Chunks)
}

// TotalSize returns the serialized size of the container.
func (c *Container) TotalSize() int {
	n := c.HeaderLen()
	for _, ch := range c.Chunks {
		n += len(ch.Data)
	}
	return n
}

// Table returns the chunk table Save would write.
func (c *Container) Table() []TableEntry {
	table := make([]TableEntry, len(c.Chunks))
	offset := uint32(c.HeaderLen())
	for i, ch := range c.Chunks {
		table[i] = TableEntry{ID: ch.ID, Offset: offset, Size: uint32(len(ch.Data))}
		offset += uint32(len(ch.Data))
	}
	return table
}

// Save serializes the container. Offsets are recomputed from chunk order.
func (c *Container) Save() []byte {
	w := NewWriter(byteOrder(c.BigEndian))
	w.Reserve(c.TotalSize())

	if c.BigEndian {
		w.PutBytes([]byte(magicBig))
	} else {
		w.PutBytes([]byte(magicLittle))
	}
	w.PutU32(Version)
	w.PutU32(uint32(c.TotalSize()))
	w.PutU32(uint32(len(c.Chunks)))

	for _, e := range c.Table() {
		w.PutU32(e.ID)
		w.PutU32(e.Offset)
		w.PutU32(e.Size)
		w.PutU32(0)
	}
	for _, ch := range c.Chunks {
		w.PutBytes(ch.Data)
	}

	return w.Bytes()
}

// SaveFile writes the serialized container to path.
func (c *Container) SaveFile(path string) error {
	if err := os.WriteFile(path, c.Save(), 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// FindFirst returns the first chunk with the given id, or nil.
func (c *Container) FindFirst(id uint32) *Chunk {
	for _, ch := range c.Chunks {
		if ch.ID == id {
			return ch
		}
	}
	return nil
}

// FindAll returns every chunk with the given id in container order.
func (c *Container) FindAll(id uint32) []*Chunk {
	var result []*Chunk
	for _, ch := range c.Chunks {
		if ch.ID == id {
			result = append(result, ch)
		}
	}
	return result
}

// Contains reports whether a chunk with the given id exists.
func (c *Container) Contains(id uint32) bool {
	return c.FindFirst(id) != nil
}

// AddChunk appends an empty chunk using the container byte order.
func (c *Container) AddChunk(id uint32) *Chunk {
	ch := &Chunk{ID: id, BigEndian: c.BigEndian}
	c.Chunks = append(c.Chunks, ch)
	return ch
}

// Stem returns the file name without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func byteOrder(bigEndian bool) binary.ByteOrder {
	if bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
