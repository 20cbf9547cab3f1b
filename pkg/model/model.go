// Package model defines the in-memory scene reconstructed from RX3 containers.
//
// Objects and bones form trees through parent names rather than pointers.
// A parent name that matches nothing makes the node a root, and when several
// nodes share a name the first one wins.
package model

import (
	"errors"
	"fmt"

	"github.com/Faultbox/rx3kit/pkg/math"
)

// ErrSkeletonMismatch is returned by Merge when both models carry different
// skeletons.
var ErrSkeletonMismatch = errors.New("model: skeletons differ")

// Object is a named scene node with an optional mesh.
type Object struct {
	Name       string
	Parent     string
	Transform  math.Mat4
	Mesh       MeshData
	Properties Properties
}

// NewObject returns an object with an identity transform.
func NewObject(name, parent string) Object {
	return Object{Name: name, Parent: parent, Transform: math.Identity()}
}

// HasMesh reports whether the object carries geometry.
func (o *Object) HasMesh() bool {
	return !o.Mesh.Empty()
}

// Material describes surface textures by name.
type Material struct {
	Name       string
	Texture    string
	NormalMap  string
	Color      RGBA
	Properties Properties
}

// Texture references an image file.
type Texture struct {
	Name       string
	Filename   string
	Properties Properties
}

// Model is the complete decoded scene.
type Model struct {
	Name       string
	Objects    []Object
	Materials  []Material
	Textures   []Texture
	Skeleton   Skeleton
	Properties Properties
}

// Empty reports whether the model has neither objects nor bones.
func (m *Model) Empty() bool {
	return len(m.Objects) == 0 && len(m.Skeleton.Bones) == 0
}

// FindObject returns the first object with the given name, or nil.
func (m *Model) FindObject(name string) *Object {
	for i := range m.Objects {
		if m.Objects[i].Name == name {
			return &m.Objects[i]
		}
	}
	return nil
}

// FindMaterial returns the first material with the given name, or nil.
func (m *Model) FindMaterial(name string) *Material {
	for i := range m.Materials {
		if m.Materials[i].Name == name {
			return &m.Materials[i]
		}
	}
	return nil
}

// Children returns the objects whose parent is name.
func (m *Model) Children(name string) []*Object {
	var result []*Object
	for i := range m.Objects {
		if m.Objects[i].Parent == name {
			result = append(result, &m.Objects[i])
		}
	}
	return result
}

// Stats summarizes model contents.
type Stats struct {
	Objects   int
	Meshes    int
	Vertices  int
	Triangles int
	Materials int
	Textures  int
	Bones     int
}

// Stats counts model contents.
func (m *Model) Stats() Stats {
	s := Stats{
		Objects:   len(m.Objects),
		Materials: len(m.Materials),
		Textures:  len(m.Textures),
		Bones:     len(m.Skeleton.Bones),
	}
	for i := range m.Objects {
		mesh := &m.Objects[i].Mesh
		if mesh.Empty() {
			continue
		}
		s.Meshes++
		s.Vertices += len(mesh.Vertices)
		s.Triangles += len(mesh.Triangles)
	}
	return s
}

// Merge appends other into m.
//
// Object names that already exist get a ".001" to ".999" suffix, then
// "_dup<n>". Materials and textures are added only when their name is new.
// A skeleton is adopted when m has none; merging two different skeletons
// fails with ErrSkeletonMismatch and leaves m unchanged. Properties are
// added only for missing keys.
func (m *Model) Merge(other *Model) error {
	if len(m.Skeleton.Bones) > 0 && len(other.Skeleton.Bones) > 0 &&
		!m.Skeleton.Equal(&other.Skeleton) {
		return fmt.Errorf("%w: %d and %d bones", ErrSkeletonMismatch,
			len(m.Skeleton.Bones), len(other.Skeleton.Bones))
	}

	existing := make(map[string]struct{}, len(m.Objects)+len(other.Objects))
	for _, o := range m.Objects {
		existing[o.Name] = struct{}{}
	}
	for _, o := range other.Objects {
		o.Name = uniqueName(o.Name, existing)
		m.Objects = append(m.Objects, o)
	}

	materials := make(map[string]struct{}, len(m.Materials))
	for _, mat := range m.Materials {
		materials[mat.Name] = struct{}{}
	}
	for _, mat := range other.Materials {
		if _, ok := materials[mat.Name]; !ok {
			materials[mat.Name] = struct{}{}
			m.Materials = append(m.Materials, mat)
		}
	}

	textures := make(map[string]struct{}, len(m.Textures))
	for _, tex := range m.Textures {
		textures[tex.Name] = struct{}{}
	}
	for _, tex := range other.Textures {
		if _, ok := textures[tex.Name]; !ok {
			textures[tex.Name] = struct{}{}
			m.Textures = append(m.Textures, tex)
		}
	}

	if len(m.Skeleton.Bones) == 0 && len(other.Skeleton.Bones) > 0 {
		m.Skeleton = other.Skeleton.Clone()
	}

	m.Properties.MergeMissing(other.Properties)
	return nil
}

func uniqueName(base string, existing map[string]struct{}) string {
	if _, ok := existing[base]; !ok {
		existing[base] = struct{}{}
		return base
	}
	for i := 1; i <= 999; i++ {
		candidate := fmt.Sprintf("%s.%03d", base, i)
		if _, ok := existing[candidate]; !ok {
			existing[candidate] = struct{}{}
			return candidate
		}
	}
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("%s_dup%d", base, i)
		if _, ok := existing[candidate]; !ok {
			existing[candidate] = struct{}{}
			return candidate
		}
	}
}
