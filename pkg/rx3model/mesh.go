package rx3model

import (
	"fmt"
	"sync"

	"github.com/Faultbox/rx3kit/pkg/math"
	"github.com/Faultbox/rx3kit/pkg/model"
	"github.com/Faultbox/rx3kit/pkg/rx3"
	"github.com/Faultbox/rx3kit/pkg/vertex"
)

// Primitive is the index topology of a mesh.
type Primitive uint32

// Topologies stored in the first word of a simplemesh chunk.
const (
	PrimTriangleList  Primitive = 4
	PrimTriangleStrip Primitive = 6
)

func (p Primitive) String() string {
	switch p {
	case PrimTriangleList:
		return "list"
	case PrimTriangleStrip:
		return "strip"
	}
	return fmt.Sprintf("Primitive(%d)", uint32(p))
}

// Sizes of the fixed chunk headers preceding buffer data.
const (
	vertexBufferHeader = 16
	indexBufferHeader  = 16
)

// VertexBuffer is a decoded vertex buffer chunk header plus its data.
type VertexBuffer struct {
	Count  uint32
	Stride uint32
	Data   []byte
}

// ReadVertexBuffer parses a vertex buffer chunk: 4 reserved bytes, u32
// count, u32 stride, 4 reserved bytes, then interleaved vertex data.
func ReadVertexBuffer(c *rx3.Chunk) (VertexBuffer, error) {
	r := c.Reader()
	r.Skip(4)
	vb := VertexBuffer{Count: r.U32(), Stride: r.U32()}
	r.Skip(4)
	if err := r.Err(); err != nil {
		return VertexBuffer{}, fmt.Errorf("reading vertex buffer header: %w", err)
	}
	vb.Data = c.Data[vertexBufferHeader:]

	need := uint64(vb.Count) * uint64(max(vb.Stride, 1))
	if need > uint64(len(vb.Data)) {
		return VertexBuffer{}, fmt.Errorf("%w: %d vertices of stride %d need %d bytes, have %d",
			rx3.ErrUnexpectedEOF, vb.Count, vb.Stride, need, len(vb.Data))
	}
	return vb, nil
}

// IndexBuffer is a decoded index buffer chunk header plus its data.
type IndexBuffer struct {
	Count uint32
	Width uint8
	Data  []byte
}

// ReadIndexBuffer parses an index buffer chunk: 4 reserved bytes, u32
// count, u8 index width, 7 reserved bytes, then index data. Widths other
// than 1, 2 and 4 are returned without a bounds check; they yield no
// triangles.
func ReadIndexBuffer(c *rx3.Chunk) (IndexBuffer, error) {
	r := c.Reader()
	r.Skip(4)
	ib := IndexBuffer{Count: r.U32(), Width: r.U8()}
	r.Skip(7)
	if err := r.Err(); err != nil {
		return IndexBuffer{}, fmt.Errorf("reading index buffer header: %w", err)
	}
	ib.Data = c.Data[indexBufferHeader:]

	if !ib.validWidth() {
		return ib, nil
	}
	need := uint64(ib.Count) * uint64(ib.Width)
	if need > uint64(len(ib.Data)) {
		return IndexBuffer{}, fmt.Errorf("%w: %d indices of width %d need %d bytes, have %d",
			rx3.ErrUnexpectedEOF, ib.Count, ib.Width, need, len(ib.Data))
	}
	return ib, nil
}

func (ib *IndexBuffer) validWidth() bool {
	return ib.Width == 1 || ib.Width == 2 || ib.Width == 4
}

// Indices decodes every index. Unsupported widths give nil.
func (ib *IndexBuffer) Indices(c *rx3.Chunk) []uint32 {
	if !ib.validWidth() {
		return nil
	}
	order := c.Order()
	out := make([]uint32, ib.Count)
	for i := range out {
		off := i * int(ib.Width)
		switch ib.Width {
		case 1:
			out[i] = uint32(ib.Data[off])
		case 2:
			out[i] = uint32(order.Uint16(ib.Data[off:]))
		case 4:
			out[i] = order.Uint32(ib.Data[off:])
		}
	}
	return out
}

// TriangleList groups indices in consecutive triples. Trailing indices
// that do not fill a triple are dropped.
func TriangleList(indices []uint32) []model.Triangle {
	tris := make([]model.Triangle, len(indices)/3)
	for i := range tris {
		tris[i] = model.Triangle{indices[i*3], indices[i*3+1], indices[i*3+2]}
	}
	return tris
}

// TriangleStrip expands a strip. Odd steps swap the first two indices to
// keep a consistent winding, and degenerate triangles are dropped.
func TriangleStrip(indices []uint32) []model.Triangle {
	var tris []model.Triangle
	for k := 0; k+2 < len(indices); k++ {
		i0, i1, i2 := indices[k], indices[k+1], indices[k+2]
		tri := model.Triangle{i0, i1, i2}
		if k&1 == 1 {
			tri = model.Triangle{i1, i0, i2}
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			continue
		}
		tris = append(tris, tri)
	}
	return tris
}

// AssembleMesh decodes a mesh from its vertex format, vertex buffer and
// index buffer chunks.
//
// A format chunk with an empty declaration yields an empty mesh. Unknown
// attribute types decode to zeros and unsupported index widths or
// topologies yield no triangles. Reads outside the buffers are errors.
func AssembleMesh(vf, vb, ib *rx3.Chunk, prim Primitive, opts MeshOptions) (model.MeshData, error) {
	var mesh model.MeshData

	decl, err := vertex.ReadDeclaration(vf)
	if err != nil {
		return mesh, err
	}
	if decl == "" {
		return mesh, nil
	}
	elements := vertex.ParseDeclaration(decl)

	vbuf, err := ReadVertexBuffer(vb)
	if err != nil {
		return mesh, err
	}
	ibuf, err := ReadIndexBuffer(ib)
	if err != nil {
		return mesh, err
	}

	mesh.Vertices = make([]model.Vertex, vbuf.Count)
	order := vb.Order()

	for _, e := range elements {
		if e.Index > vertex.MaxIndex(e.Usage) {
			continue
		}

		dt := e.Type
		switch e.Usage {
		case vertex.UsageNormal:
			mesh.Format |= model.FormatNormal
		case vertex.UsageTangent:
			mesh.Format |= model.FormatTangent
		case vertex.UsageBinormal:
			mesh.Format |= model.FormatBinormal
		case vertex.UsageTexCoord:
			mesh.Format = mesh.Format.WithUVs(max(mesh.Format.NumUVs(), e.Index+1))
		case vertex.UsageColor:
			mesh.Format = mesh.Format.WithColors(max(mesh.Format.NumColors(), e.Index+1))
		case vertex.UsageBoneIndices:
			mesh.Format = mesh.Format.WithBones(max(mesh.Format.NumBones(), (e.Index+1)*4))
			if dt == vertex.Type4U8 && opts.WideBoneIndices {
				dt = vertex.Type4U16
			}
		}

		for v := range mesh.Vertices {
			addr := uint64(v)*uint64(vbuf.Stride) + uint64(e.Offset)
			if addr > uint64(len(vbuf.Data)) {
				return mesh, fmt.Errorf("%w: vertex %d attribute %s at %d", rx3.ErrUnexpectedEOF, v, e, addr)
			}
			lanes, err := vertex.Decode(dt, vbuf.Data[addr:], order)
			if err != nil {
				return mesh, fmt.Errorf("vertex %d attribute %s: %w", v, e, err)
			}
			setAttribute(&mesh.Vertices[v], e, lanes, opts.LegacyColorAlpha)
		}
	}

	indices := ibuf.Indices(ib)
	switch prim {
	case PrimTriangleList:
		mesh.Triangles = TriangleList(indices)
	case PrimTriangleStrip:
		mesh.Triangles = TriangleStrip(indices)
	}

	return mesh, nil
}

func setAttribute(v *model.Vertex, e vertex.Element, l vertex.Lanes, legacyAlpha bool) {
	switch e.Usage {
	case vertex.UsagePosition:
		v.Position = math.V3(l.Vec3())
	case vertex.UsageNormal:
		v.Normal = math.V3(l.Vec3())
	case vertex.UsageTangent:
		v.Tangent = math.V3(l.Vec3())
	case vertex.UsageBinormal:
		v.Binormal = math.V3(l.Vec3())
	case vertex.UsageTexCoord:
		v.UV[e.Index] = math.Vec2{X: l[0], Y: l[1]}
	case vertex.UsageColor:
		v.Colors[e.Index] = l.Color(legacyAlpha)
	case vertex.UsageBoneIndices:
		idx := l.Indices()
		copy(v.BoneIndices[e.Index*4:], idx[:])
	case vertex.UsageBoneWeights:
		copy(v.BoneWeights[e.Index*4:], l[:])
	}
}

// MeshJob names the chunks of one mesh.
type MeshJob struct {
	Format    *rx3.Chunk
	Vertices  *rx3.Chunk
	Indices   *rx3.Chunk
	Primitive Primitive
}

// primitiveAt returns the topology of mesh i from the simplemesh chunks,
// defaulting to a triangle list.
func primitiveAt(meshChunks []*rx3.Chunk, i int) Primitive {
	if i >= len(meshChunks) {
		return PrimTriangleList
	}
	r := meshChunks[i].Reader()
	p := Primitive(r.U32())
	if r.Err() != nil {
		return PrimTriangleList
	}
	return p
}

// AssembleMeshes decodes every job. With more than one worker the meshes
// are decoded concurrently into slots addressed by job index, so the
// result order never depends on scheduling. The first error by job index
// is returned.
func AssembleMeshes(jobs []MeshJob, opts MeshOptions, workers int) ([]model.MeshData, error) {
	meshes := make([]model.MeshData, len(jobs))
	errs := make([]error, len(jobs))

	if workers <= 1 || len(jobs) < 2 {
		for i, j := range jobs {
			meshes[i], errs[i] = AssembleMesh(j.Format, j.Vertices, j.Indices, j.Primitive, opts)
			if errs[i] != nil {
				return nil, fmt.Errorf("mesh %d: %w", i, errs[i])
			}
		}
		return meshes, nil
	}

	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < min(workers, len(jobs)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				j := jobs[idx]
				meshes[idx], errs[idx] = AssembleMesh(j.Format, j.Vertices, j.Indices, j.Primitive, opts)
			}
		}()
	}
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
	}
	return meshes, nil
}
