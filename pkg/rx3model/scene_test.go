package rx3model

import (
	stdmath "math"
	"testing"

	"github.com/Faultbox/rx3kit/pkg/math"
	"github.com/Faultbox/rx3kit/pkg/model"
	"github.com/Faultbox/rx3kit/pkg/rx3"
)

type textureRole struct {
	role  string
	index uint32
}

func makeMaterial(shader string, roles ...textureRole) *rx3.Chunk {
	return makeChunk(rx3.ChunkMaterial, func(w *rx3.Writer) {
		w.PutU32(0)
		w.PutU32(uint32(len(roles)))
		w.PutU32(0)
		w.PutU32(0)
		w.PutCString(shader)
		for _, r := range roles {
			w.PutCString(r.role)
			w.PutU32(r.index)
		}
	})
}

func makeSceneLayer(layerType uint32, name string, instance uint32) *rx3.Chunk {
	return makeChunk(rx3.ChunkSceneLayer, func(w *rx3.Writer) {
		w.PutU32(0)
		w.PutU32(layerType)
		w.PutU32(0)
		w.PutU32(0)
		w.PutCString(name)
		w.PutU32(instance)
	})
}

func makeSceneInstance(transform math.Mat4, meshes ...MeshInstance) *rx3.Chunk {
	return makeChunk(rx3.ChunkSceneInstance, func(w *rx3.Writer) {
		w.PutBytes(make([]byte, 16))
		putMat4(w, transform)
		w.PutBytes(make([]byte, 32))
		w.PutU32(uint32(len(meshes)))
		w.PutU32(0)
		for _, m := range meshes {
			w.PutBytes(make([]byte, 32))
			w.PutU32(m.Mesh)
			w.PutU32(m.Material)
		}
	})
}

func makeCollision(name string, tris ...[9]float32) *rx3.Chunk {
	return makeChunk(rx3.ChunkCollisionTriMesh, func(w *rx3.Writer) {
		w.PutBytes(make([]byte, 16))
		w.PutCString(name)
		w.PutU32(0)
		w.PutU32(uint32(len(tris)))
		for _, t := range tris {
			putFloats(w, t[:]...)
		}
	})
}

func makeLocation(pos, rot math.Vec3) *rx3.Chunk {
	return makeChunk(rx3.ChunkLocation, func(w *rx3.Writer) {
		w.PutU32(0)
		putFloats(w, pos.X, pos.Y, pos.Z, rot.X, rot.Y, rot.Z)
	})
}

func stadiumScene() *rx3.Container {
	vf, vb, ib := triangleMesh()
	return container(
		makeNameTable(
			nameRecord{rx3.ChunkSimpleMesh, "grass" + rx3.MeshNameSuffix},
			nameRecord{rx3.ChunkTexture, "pitch_d"},
			nameRecord{rx3.ChunkTexture, "pitch_n"},
			nameRecord{rx3.ChunkLocation, "cam_main"},
		),
		makeMaterial("Grass",
			textureRole{RoleDiffuse, 0},
			textureRole{RoleNormalMap, 1},
			textureRole{"specularMap", 0},
			textureRole{"glow", 9},
		),
		vf, vb, ib, makeSimpleMesh(PrimTriangleList),
		vf, vb, makeIndexBuffer(2, 0, 1, 2, 0), makeSimpleMesh(PrimTriangleStrip),
		makeSceneLayer(1, "Stadium", 0),
		makeSceneLayer(LayerCollision, "Collision", 0),
		makeSceneLayer(1, "Broken", 5),
		makeSceneInstance(math.Translate(1, 2, 3),
			MeshInstance{Mesh: 0, Material: 0},
			MeshInstance{Mesh: 1, Material: 7},
			MeshInstance{Mesh: 9, Material: 0},
		),
		makeCollision("col_pitch", [9]float32{0, 0, 0, 1, 0, 0, 0, 0, 1}),
		makeLocation(math.Vec3{X: 1}, math.Vec3{Y: stdmath.Pi / 2}),
		makeLocation(math.Vec3{Z: -4}, math.Vec3{}),
	)
}

func TestDecode_Scene(t *testing.T) {
	m, err := Decode(stadiumScene(), "", DefaultOptions())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := []struct{ name, parent string }{
		{"Stadium", ""},
		{"Collision", ""},
		{"Broken", ""},
		{"grass", "Stadium"},
		{"object_5", "Stadium"},
		{"col_pitch", "Collision"},
		{LocationsRoot, ""},
		{"cam_main", LocationsRoot},
		{"location_2", LocationsRoot},
	}
	if len(m.Objects) != len(want) {
		for _, o := range m.Objects {
			t.Logf("object %q parent %q", o.Name, o.Parent)
		}
		t.Fatalf("got %d objects, want %d", len(m.Objects), len(want))
	}
	for i, w := range want {
		if o := m.Objects[i]; o.Name != w.name || o.Parent != w.parent {
			t.Errorf("object %d = %q/%q, want %q/%q", i, o.Name, o.Parent, w.name, w.parent)
		}
	}

	if got := m.Objects[0].Transform.Translation(); got != (math.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("layer translation = %v", got)
	}
	if !m.Objects[2].Transform.IsIdentity() {
		t.Error("unresolved layer has a transform")
	}

	grass := m.Objects[3]
	if grass.Mesh.Material != "Material1 [Grass]" || len(grass.Mesh.Triangles) != 1 {
		t.Errorf("grass mesh: material %q, %d triangles", grass.Mesh.Material, len(grass.Mesh.Triangles))
	}
	if strip := m.Objects[4]; strip.Mesh.Material != "" || len(strip.Mesh.Triangles) != 2 {
		t.Errorf("strip mesh: material %q, %d triangles", strip.Mesh.Material, len(strip.Mesh.Triangles))
	}

	col := m.Objects[5].Mesh
	if len(col.Vertices) != 3 || len(col.Triangles) != 1 || col.Triangles[0] != (model.Triangle{0, 1, 2}) {
		t.Errorf("collision mesh = %+v", col)
	}
	if col.Vertices[2].Position != (math.Vec3{Z: 1}) {
		t.Errorf("collision vertex = %v", col.Vertices[2].Position)
	}

	cam := m.Objects[7]
	if got := cam.Transform.Translation(); got != (math.Vec3{X: 1}) {
		t.Errorf("location translation = %v", got)
	}
	rot, ok := cam.Properties["rotation"].(model.Vec3)
	if !ok || stdmath.Abs(float64(rot.Y-90)) > 1e-3 {
		t.Errorf("location rotation = %v", cam.Properties["rotation"])
	}
	if p := cam.Transform.TransformPoint(math.Vec3{X: 1}).Sub(cam.Transform.Translation()); stdmath.Abs(float64(p.Z+1)) > 1e-5 {
		t.Errorf("location rotates +X to %v", p)
	}
}

func TestDecode_SceneMaterials(t *testing.T) {
	m, err := Decode(stadiumScene(), "", DefaultOptions())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(m.Materials) != 1 {
		t.Fatalf("got %d materials", len(m.Materials))
	}
	mat := m.Materials[0]
	if mat.Texture != "pitch_d" || mat.NormalMap != "pitch_n" {
		t.Errorf("material textures = %q %q", mat.Texture, mat.NormalMap)
	}
	if s, _ := mat.Properties.GetString("specularMap"); s != "pitch_d" {
		t.Errorf("specularMap = %q", s)
	}
	if mat.Properties.Has("glow") {
		t.Error("out of range texture role kept")
	}

	want := []model.Texture{
		{Name: "pitch_d", Filename: "pitch_d.png"},
		{Name: "pitch_n", Filename: "pitch_n.png"},
	}
	if len(m.Textures) != 2 || m.Textures[0].Filename != want[0].Filename || m.Textures[1].Name != want[1].Name {
		t.Errorf("textures = %+v", m.Textures)
	}
}

func TestDecode_SceneWithoutLayers(t *testing.T) {
	c := container(makeSceneInstance(math.Identity()), makeLocation(math.Vec3{}, math.Vec3{}))
	m, err := Decode(c, "", DefaultOptions())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !m.Empty() {
		t.Errorf("got %d objects", len(m.Objects))
	}
}

func TestDecode_SceneTruncated(t *testing.T) {
	c := stadiumScene()
	for _, ch := range c.FindAll(rx3.ChunkCollisionTriMesh) {
		ch.Data = ch.Data[:len(ch.Data)-8]
	}
	if _, err := Decode(c, "", DefaultOptions()); err == nil {
		t.Error("expected error for truncated collision mesh")
	}
}
