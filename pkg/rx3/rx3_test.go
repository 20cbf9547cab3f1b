package rx3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// makeContainer builds a serialized container by hand, independent of Save.
func makeContainer(magic string, order binary.AppendByteOrder, chunks ...[]byte) []byte {
	header := 16 + 16*len(chunks)
	buf := []byte(magic)
	buf = order.AppendUint32(buf, 4)
	total := header
	for _, c := range chunks {
		total += len(c)
	}
	buf = order.AppendUint32(buf, uint32(total))
	buf = order.AppendUint32(buf, uint32(len(chunks)))
	offset := header
	for i, c := range chunks {
		buf = order.AppendUint32(buf, uint32(100+i))
		buf = order.AppendUint32(buf, uint32(offset))
		buf = order.AppendUint32(buf, uint32(len(c)))
		buf = order.AppendUint32(buf, 0)
		offset += len(c)
	}
	for _, c := range chunks {
		buf = append(buf, c...)
	}
	return buf
}

func TestLoad_Validation(t *testing.T) {
	valid := makeContainer("RX3l", binary.LittleEndian, []byte{1, 2, 3})

	truncatedTable := makeContainer("RX3l", binary.LittleEndian)
	binary.LittleEndian.PutUint32(truncatedTable[12:], 3)

	outOfBounds := makeContainer("RX3l", binary.LittleEndian, []byte{1, 2, 3, 4})
	binary.LittleEndian.PutUint32(outOfBounds[24:], 1000)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"valid", valid, nil},
		{"empty", nil, ErrTooShort},
		{"short header", []byte("RX3l0000"), ErrTooShort},
		{"bad magic", makeContainer("RX4l", binary.LittleEndian), ErrBadMagic},
		{"truncated table", truncatedTable, ErrTruncatedChunkTable},
		{"chunk out of bounds", outOfBounds, ErrChunkOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.data)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Endianness(t *testing.T) {
	tests := []struct {
		name      string
		magic     string
		order     binary.AppendByteOrder
		bigEndian bool
	}{
		{"little endian", "RX3l", binary.LittleEndian, false},
		{"big endian", "RX3b", binary.BigEndian, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := makeContainer(tt.magic, tt.order, []byte("abc"), []byte("defgh"))
			c, err := Load(data)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if c.BigEndian != tt.bigEndian {
				t.Errorf("BigEndian = %v, want %v", c.BigEndian, tt.bigEndian)
			}
			if len(c.Chunks) != 2 {
				t.Fatalf("got %d chunks, want 2", len(c.Chunks))
			}
			if c.Chunks[0].ID != 100 || string(c.Chunks[0].Data) != "abc" {
				t.Errorf("chunk 0 = %d %q", c.Chunks[0].ID, c.Chunks[0].Data)
			}
			if c.Chunks[1].ID != 101 || string(c.Chunks[1].Data) != "defgh" {
				t.Errorf("chunk 1 = %d %q", c.Chunks[1].ID, c.Chunks[1].Data)
			}
			for i, ch := range c.Chunks {
				if ch.BigEndian != tt.bigEndian {
					t.Errorf("chunk %d BigEndian = %v", i, ch.BigEndian)
				}
			}
		})
	}
}

func TestLoad_CopiesPayload(t *testing.T) {
	data := makeContainer("RX3l", binary.LittleEndian, []byte{9, 9})
	c, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	data[len(data)-1] = 0
	if c.Chunks[0].Data[1] != 9 {
		t.Error("chunk payload aliases the input buffer")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	for _, big := range []bool{false, true} {
		c := &Container{BigEndian: big}
		c.AddChunk(ChunkVertexBuffer).Data = []byte{1, 2, 3, 4, 5}
		c.AddChunk(ChunkIndexBuffer).Data = []byte{6, 7}
		c.AddChunk(ChunkVertexBuffer).Data = nil
		c.AddChunk(ChunkNameTable).Data = []byte("names\x00")

		saved := c.Save()

		if got := len(saved); got != c.TotalSize() {
			t.Errorf("saved %d bytes, TotalSize %d", got, c.TotalSize())
		}
		order := byteOrder(big)
		if total := order.Uint32(saved[8:]); int(total) != len(saved) {
			t.Errorf("header total size = %d, want %d", total, len(saved))
		}
		if v := order.Uint32(saved[4:]); v != Version {
			t.Errorf("header version = %d, want %d", v, Version)
		}

		loaded, err := Load(saved)
		if err != nil {
			t.Fatalf("Load(Save()): %v", err)
		}
		if len(loaded.Chunks) != len(c.Chunks) {
			t.Fatalf("got %d chunks, want %d", len(loaded.Chunks), len(c.Chunks))
		}
		for i := range c.Chunks {
			if loaded.Chunks[i].ID != c.Chunks[i].ID {
				t.Errorf("chunk %d id = %d, want %d", i, loaded.Chunks[i].ID, c.Chunks[i].ID)
			}
			if !bytes.Equal(loaded.Chunks[i].Data, c.Chunks[i].Data) {
				t.Errorf("chunk %d data = %v, want %v", i, loaded.Chunks[i].Data, c.Chunks[i].Data)
			}
		}

		if again := loaded.Save(); !bytes.Equal(again, saved) {
			t.Error("second save differs from first")
		}
	}
}

func TestTable_Offsets(t *testing.T) {
	c := &Container{}
	c.AddChunk(1).Data = make([]byte, 10)
	c.AddChunk(2).Data = make([]byte, 3)
	c.AddChunk(3).Data = make([]byte, 7)

	table := c.Table()
	header := uint32(16 + 16*3)
	want := []TableEntry{
		{ID: 1, Offset: header, Size: 10},
		{ID: 2, Offset: header + 10, Size: 3},
		{ID: 3, Offset: header + 13, Size: 7},
	}
	for i := range want {
		if table[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, table[i], want[i])
		}
	}
	if c.TotalSize() != int(header)+20 {
		t.Errorf("TotalSize = %d, want %d", c.TotalSize(), header+20)
	}
}

func TestFind(t *testing.T) {
	c := &Container{}
	a := c.AddChunk(ChunkVertexBuffer)
	c.AddChunk(ChunkIndexBuffer)
	b := c.AddChunk(ChunkVertexBuffer)

	if got := c.FindFirst(ChunkVertexBuffer); got != a {
		t.Error("FindFirst returned wrong chunk")
	}
	all := c.FindAll(ChunkVertexBuffer)
	if len(all) != 2 || all[0] != a || all[1] != b {
		t.Errorf("FindAll returned %v", all)
	}
	if c.FindFirst(ChunkSkeleton) != nil {
		t.Error("FindFirst found missing chunk")
	}
	if c.FindAll(ChunkSkeleton) != nil {
		t.Error("FindAll found missing chunk")
	}
	if !c.Contains(ChunkIndexBuffer) || c.Contains(ChunkMaterial) {
		t.Error("Contains mismatch")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stadium_12.rx3")
	src := &Container{}
	src.AddChunk(ChunkMaterial).Data = []byte{1}
	if err := src.SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Name != "stadium_12" {
		t.Errorf("Name = %q, want stadium_12", c.Name)
	}

	if err := os.WriteFile(path, []byte("junkjunkjunkjunk"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); !errors.Is(err, ErrBadMagic) {
		t.Errorf("got %v, want ErrBadMagic", err)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.rx3")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHash(t *testing.T) {
	tests := []struct {
		name string
		want uint32
	}{
		{"", 5321},
		{"a", 97 + 5321*33},
		{"ib", uint32('b') + (uint32('i')+5321*33)*33},
	}
	for _, tt := range tests {
		if got := Hash(tt.name); got != tt.want {
			t.Errorf("Hash(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestChunkName(t *testing.T) {
	if got := ChunkName(ChunkSceneLayer); got != "scenelayer" {
		t.Errorf("ChunkName = %q, want scenelayer", got)
	}
	if got := ChunkName(0xDEADBEEF); got != "0xDEADBEEF" {
		t.Errorf("ChunkName = %q, want 0xDEADBEEF", got)
	}
	if !Known(ChunkAdjacency) || Known(1) {
		t.Error("Known mismatch")
	}
}
