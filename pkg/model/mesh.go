package model

import (
	"fmt"

	"github.com/Faultbox/rx3kit/pkg/math"
)

// MaxSets is the number of UV, color and bone influence slots per vertex.
const MaxSets = 8

// VertexFormat is a bitmask describing the populated vertex attributes.
//
//	bit 0       normal
//	bit 1       tangent
//	bit 2       binormal
//	bits 3-6    UV set count
//	bits 7-10   color set count
//	bits 11-14  bone influence count
type VertexFormat uint32

// Attribute flags.
const (
	FormatNormal   VertexFormat = 1
	FormatTangent  VertexFormat = 2
	FormatBinormal VertexFormat = 4

	uvShift    = 3
	colorShift = 7
	boneShift  = 11
	countMask  = 0xF
)

func (f VertexFormat) count(shift uint) int {
	return int(f >> shift & countMask)
}

func (f VertexFormat) withCount(shift uint, n int) VertexFormat {
	return f&^(countMask<<shift) | VertexFormat(n&countMask)<<shift
}

// HasNormal reports whether normals are populated.
func (f VertexFormat) HasNormal() bool { return f&FormatNormal != 0 }

// HasTangent reports whether tangents are populated.
func (f VertexFormat) HasTangent() bool { return f&FormatTangent != 0 }

// HasBinormal reports whether binormals are populated.
func (f VertexFormat) HasBinormal() bool { return f&FormatBinormal != 0 }

// NumUVs returns the UV set count.
func (f VertexFormat) NumUVs() int { return f.count(uvShift) }

// NumColors returns the color set count.
func (f VertexFormat) NumColors() int { return f.count(colorShift) }

// NumBones returns the bone influence count.
func (f VertexFormat) NumBones() int { return f.count(boneShift) }

// WithUVs returns f with the UV set count replaced.
func (f VertexFormat) WithUVs(n int) VertexFormat { return f.withCount(uvShift, n) }

// WithColors returns f with the color set count replaced.
func (f VertexFormat) WithColors(n int) VertexFormat { return f.withCount(colorShift, n) }

// WithBones returns f with the bone influence count replaced.
func (f VertexFormat) WithBones(n int) VertexFormat { return f.withCount(boneShift, n) }

// String lists the populated attributes.
func (f VertexFormat) String() string {
	s := "p"
	if f.HasNormal() {
		s += "n"
	}
	if f.HasTangent() {
		s += "g"
	}
	if f.HasBinormal() {
		s += "b"
	}
	return fmt.Sprintf("%s t%d c%d w%d", s, f.NumUVs(), f.NumColors(), f.NumBones())
}

// RGBA is an 8-bit per channel color.
type RGBA [4]uint8

// Vertex is one mesh vertex. Slots beyond the counts of the owning
// VertexFormat are zero.
type Vertex struct {
	Position    math.Vec3
	Normal      math.Vec3
	Tangent     math.Vec3
	Binormal    math.Vec3
	UV          [MaxSets]math.Vec2
	Colors      [MaxSets]RGBA
	BoneWeights [MaxSets]float32
	BoneIndices [MaxSets]uint16
}

// Triangle holds three vertex indices.
type Triangle [3]uint32

// MeshData is an indexed triangle mesh.
type MeshData struct {
	Format    VertexFormat
	Vertices  []Vertex
	Triangles []Triangle
	// Material is resolved by name against Model.Materials.
	Material string
	// ColorLayerNames optionally names each color set.
	ColorLayerNames [MaxSets]string
}

// Empty reports whether the mesh has no geometry.
func (m *MeshData) Empty() bool {
	return len(m.Vertices) == 0 && len(m.Triangles) == 0
}

// Bounds returns the axis-aligned bounds of the vertex positions.
func (m *MeshData) Bounds() (lo, hi math.Vec3) {
	for i, v := range m.Vertices {
		p := v.Position
		if i == 0 {
			lo, hi = p, p
			continue
		}
		lo = math.Vec3{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = math.Vec3{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	return lo, hi
}

// Validate checks that every triangle references an existing vertex.
func (m *MeshData) Validate() error {
	n := uint32(len(m.Vertices))
	for i, t := range m.Triangles {
		for _, idx := range t {
			if idx >= n {
				return fmt.Errorf("triangle %d references vertex %d of %d", i, idx, n)
			}
		}
	}
	return nil
}
