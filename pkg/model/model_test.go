package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Faultbox/rx3kit/pkg/math"
)

func TestVertexFormat(t *testing.T) {
	f := FormatNormal | FormatBinormal
	f = f.WithUVs(3).WithColors(8).WithBones(4)

	if !f.HasNormal() || f.HasTangent() || !f.HasBinormal() {
		t.Errorf("flags wrong: %v", f)
	}
	if f.NumUVs() != 3 || f.NumColors() != 8 || f.NumBones() != 4 {
		t.Errorf("counts = %d %d %d", f.NumUVs(), f.NumColors(), f.NumBones())
	}
	if uint32(f) != 1|4|3<<3|8<<7|4<<11 {
		t.Errorf("raw format = %#x", uint32(f))
	}

	f = f.WithUVs(1)
	if f.NumUVs() != 1 || f.NumColors() != 8 {
		t.Errorf("WithUVs disturbed other fields: %v", f)
	}
	if got := f.String(); got != "pnb t1 c8 w4" {
		t.Errorf("String() = %q", got)
	}
}

func TestMeshValidate(t *testing.T) {
	m := MeshData{Vertices: make([]Vertex, 3), Triangles: []Triangle{{0, 1, 2}}}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	m.Triangles = append(m.Triangles, Triangle{0, 1, 3})
	if err := m.Validate(); err == nil {
		t.Error("expected out of range error")
	}
}

func TestMeshBounds(t *testing.T) {
	m := MeshData{Vertices: []Vertex{
		{Position: math.Vec3{X: 1, Y: -2, Z: 3}},
		{Position: math.Vec3{X: -1, Y: 5, Z: 0}},
	}}
	lo, hi := m.Bounds()
	if lo != (math.Vec3{X: -1, Y: -2, Z: 0}) || hi != (math.Vec3{X: 1, Y: 5, Z: 3}) {
		t.Errorf("Bounds = %v %v", lo, hi)
	}
}

func TestMerge_Objects(t *testing.T) {
	a := &Model{Objects: []Object{NewObject("mesh", ""), NewObject("mesh.001", "")}}
	b := &Model{Objects: []Object{NewObject("mesh", "root"), NewObject("other", ""), NewObject("mesh", "")}}

	if err := a.Merge(b); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	want := []string{"mesh", "mesh.001", "mesh.002", "other", "mesh.003"}
	if len(a.Objects) != len(want) {
		t.Fatalf("got %d objects, want %d", len(a.Objects), len(want))
	}
	for i, name := range want {
		if a.Objects[i].Name != name {
			t.Errorf("object %d = %q, want %q", i, a.Objects[i].Name, name)
		}
	}
	if a.Objects[2].Parent != "root" {
		t.Errorf("parent lost: %q", a.Objects[2].Parent)
	}
	if b.Objects[0].Name != "mesh" {
		t.Error("Merge renamed objects of the source model")
	}
}

func TestUniqueName_Overflow(t *testing.T) {
	existing := map[string]struct{}{"x": {}, "x_dup0": {}}
	for i := 1; i <= 999; i++ {
		existing[fmt.Sprintf("x.%03d", i)] = struct{}{}
	}
	if got := uniqueName("x", existing); got != "x_dup1" {
		t.Errorf("uniqueName = %q, want x_dup1", got)
	}
	if _, ok := existing["x_dup1"]; !ok {
		t.Error("new name not recorded")
	}
}

func TestMerge_MaterialsTexturesProperties(t *testing.T) {
	a := &Model{
		Materials: []Material{{Name: "grass"}},
		Textures:  []Texture{{Name: "t1", Filename: "t1.png"}},
	}
	a.Properties.Set("source", String("a"))

	b := &Model{
		Materials: []Material{{Name: "grass", Texture: "ignored"}, {Name: "seat"}},
		Textures:  []Texture{{Name: "t1"}, {Name: "t2", Filename: "t2.png"}},
		Properties: Properties{
			"source": String("b"),
			"scale":  Float(2),
		},
	}

	if err := a.Merge(b); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(a.Materials) != 2 || a.Materials[0].Texture != "" || a.Materials[1].Name != "seat" {
		t.Errorf("materials = %+v", a.Materials)
	}
	if len(a.Textures) != 2 || a.Textures[0].Filename != "t1.png" {
		t.Errorf("textures = %+v", a.Textures)
	}
	if s, _ := a.Properties.GetString("source"); s != "a" {
		t.Errorf("existing property overwritten: %q", s)
	}
	if a.Properties["scale"] != Float(2) {
		t.Errorf("missing property not added: %v", a.Properties["scale"])
	}
}

func TestMerge_Skeleton(t *testing.T) {
	skel := Skeleton{Bones: []Bone{
		{Name: "root", Transform: math.Identity()},
		{Name: "spine", Parent: "root", Transform: math.Translate(0, 1, 0)},
	}}

	a := &Model{}
	if err := a.Merge(&Model{Skeleton: skel}); err != nil {
		t.Fatalf("adopt: %v", err)
	}
	if len(a.Skeleton.Bones) != 2 {
		t.Fatalf("skeleton not adopted")
	}
	a.Skeleton.Bones[0].Name = "changed"
	if skel.Bones[0].Name != "root" {
		t.Error("adopted skeleton shares bones with source")
	}
	a.Skeleton.Bones[0].Name = "root"

	if err := a.Merge(&Model{Skeleton: skel}); err != nil {
		t.Errorf("equal skeletons: %v", err)
	}

	other := Skeleton{Bones: []Bone{{Name: "root"}, {Name: "spine"}}}
	before := len(a.Objects)
	err := a.Merge(&Model{Skeleton: other, Objects: []Object{NewObject("x", "")}})
	if !errors.Is(err, ErrSkeletonMismatch) {
		t.Errorf("got %v, want ErrSkeletonMismatch", err)
	}
	if len(a.Objects) != before {
		t.Error("failed merge modified the model")
	}
}

func TestSkeleton_WorldTransforms(t *testing.T) {
	s := Skeleton{Bones: []Bone{
		{Name: "child", Parent: "root", Transform: math.Translate(0, 2, 0)},
		{Name: "root", Transform: math.Translate(1, 0, 0)},
		{Name: "orphan", Parent: "missing", Transform: math.Translate(0, 0, 5)},
	}}

	parents := s.ParentIndex()
	if parents[0] != 1 || parents[1] != -1 || parents[2] != -1 {
		t.Errorf("ParentIndex = %v", parents)
	}

	world := s.WorldTransforms()
	if got := world[0].Translation(); got != (math.Vec3{X: 1, Y: 2, Z: 0}) {
		t.Errorf("child world = %v", got)
	}
	if got := world[2].Translation(); got != (math.Vec3{X: 0, Y: 0, Z: 5}) {
		t.Errorf("orphan world = %v", got)
	}
}

func TestSkeleton_Cycle(t *testing.T) {
	s := Skeleton{Bones: []Bone{
		{Name: "a", Parent: "b", Transform: math.Identity()},
		{Name: "b", Parent: "a", Transform: math.Identity()},
	}}
	if got := len(s.WorldTransforms()); got != 2 {
		t.Errorf("got %d transforms", got)
	}
}

func TestModelLookups(t *testing.T) {
	m := &Model{
		Objects: []Object{
			NewObject("layer", ""),
			NewObject("mesh", "layer"),
			NewObject("mesh", "layer"),
		},
		Materials: []Material{{Name: "m1"}},
	}
	m.Objects[1].Mesh.Vertices = make([]Vertex, 3)
	m.Objects[1].Mesh.Triangles = []Triangle{{0, 1, 2}}

	if m.FindObject("mesh") != &m.Objects[1] || m.FindObject("nope") != nil {
		t.Error("FindObject mismatch")
	}
	if m.FindMaterial("m1") == nil || m.FindMaterial("m2") != nil {
		t.Error("FindMaterial mismatch")
	}
	if len(m.Children("layer")) != 2 {
		t.Error("Children mismatch")
	}
	if !m.Objects[0].Transform.IsIdentity() {
		t.Error("NewObject transform is not identity")
	}

	s := m.Stats()
	if s.Objects != 3 || s.Meshes != 1 || s.Vertices != 3 || s.Triangles != 1 || s.Materials != 1 {
		t.Errorf("Stats = %+v", s)
	}
	if m.Empty() || !(&Model{}).Empty() {
		t.Error("Empty mismatch")
	}
}
