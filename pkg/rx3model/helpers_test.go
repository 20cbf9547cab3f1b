package rx3model

import (
	"encoding/binary"

	"github.com/Faultbox/rx3kit/pkg/math"
	"github.com/Faultbox/rx3kit/pkg/rx3"
)

// makeChunk builds a little endian chunk with the given body.
func makeChunk(id uint32, build func(w *rx3.Writer)) *rx3.Chunk {
	w := rx3.NewWriter(binary.LittleEndian)
	build(w)
	return &rx3.Chunk{ID: id, Data: w.Bytes()}
}

func makeVertexFormat(decl string) *rx3.Chunk {
	return makeChunk(rx3.ChunkVertexFormat, func(w *rx3.Writer) {
		w.PutU32(0)
		if decl == "" {
			w.PutU32(0)
			return
		}
		w.PutU32(uint32(len(decl) + 1))
		w.PutU32(0)
		w.PutU32(0)
		w.PutCString(decl)
	})
}

func makeVertexBuffer(count, stride uint32, data []byte) *rx3.Chunk {
	return makeChunk(rx3.ChunkVertexBuffer, func(w *rx3.Writer) {
		w.PutU32(0)
		w.PutU32(count)
		w.PutU32(stride)
		w.PutU32(0)
		w.PutBytes(data)
	})
}

func makeIndexBuffer(width uint8, indices ...uint32) *rx3.Chunk {
	return makeChunk(rx3.ChunkIndexBuffer, func(w *rx3.Writer) {
		w.PutU32(0)
		w.PutU32(uint32(len(indices)))
		w.PutU8(width)
		w.PutBytes(make([]byte, 7))
		for _, idx := range indices {
			switch width {
			case 1:
				w.PutU8(uint8(idx))
			case 2:
				w.PutU16(uint16(idx))
			case 4:
				w.PutU32(idx)
			}
		}
	})
}

func makeSimpleMesh(prim Primitive) *rx3.Chunk {
	return makeChunk(rx3.ChunkSimpleMesh, func(w *rx3.Writer) {
		w.PutU32(uint32(prim))
		w.PutU32(0)
	})
}

type nameRecord struct {
	id   uint32
	name string
}

func makeNameTable(names ...nameRecord) *rx3.Chunk {
	return makeChunk(rx3.ChunkNameTable, func(w *rx3.Writer) {
		w.PutU32(0)
		w.PutU32(uint32(len(names)))
		w.PutU32(0)
		w.PutU32(0)
		for _, n := range names {
			w.PutU32(n.id)
			w.PutU32(uint32(len(n.name) + 1))
			w.PutCString(n.name)
		}
	})
}

func putFloats(w *rx3.Writer, v ...float32) {
	for _, f := range v {
		w.PutF32(f)
	}
}

func putMat4(w *rx3.Writer, m math.Mat4) {
	putFloats(w, m[:]...)
}

// positions returns a buffer of 3f32 positions.
func positions(p ...[3]float32) []byte {
	w := rx3.NewWriter(binary.LittleEndian)
	for _, v := range p {
		putFloats(w, v[:]...)
	}
	return w.Bytes()
}

// triangleMesh returns the buffers of a single position-only triangle.
func triangleMesh() (vf, vb, ib *rx3.Chunk) {
	vf = makeVertexFormat("p0:00:00:0000:3f32")
	vb = makeVertexBuffer(3, 12, positions([3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}))
	ib = makeIndexBuffer(2, 0, 1, 2)
	return vf, vb, ib
}

func container(chunks ...*rx3.Chunk) *rx3.Container {
	return &rx3.Container{Name: "test", Chunks: chunks}
}
