package rx3model

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/rx3kit/pkg/math"
	"github.com/Faultbox/rx3kit/pkg/model"
	"github.com/Faultbox/rx3kit/pkg/rx3"
)

// Texture roles with dedicated material fields.
const (
	RoleDiffuse   = "diffuseTexture"
	RoleNormalMap = "normalMap"
)

// LayerCollision is the scene layer type resolved through collision meshes.
const LayerCollision = 0

// LocationsRoot parents every location object.
const LocationsRoot = "Locations"

// ReadMaterial parses a material chunk. Texture indices are resolved
// against textures; roles pointing outside it are dropped.
func ReadMaterial(c *rx3.Chunk, index int, textures []string, log *zap.Logger) (model.Material, error) {
	r := c.Reader()
	r.Skip(4)
	count := r.U32()
	r.Skip(8)
	shader := r.CString()
	if err := r.Err(); err != nil {
		return model.Material{}, fmt.Errorf("reading material %d header: %w", index, err)
	}

	mat := model.Material{Name: fmt.Sprintf("Material%d [%s]", index+1, shader)}
	for t := uint32(0); t < count; t++ {
		role := r.CString()
		texID := r.U32()
		if err := r.Err(); err != nil {
			return model.Material{}, fmt.Errorf("reading material %d texture %d: %w", index, t, err)
		}
		if int(texID) >= len(textures) {
			log.Debug("material texture out of range",
				zap.String("material", mat.Name),
				zap.String("role", role),
				zap.Uint32("texture", texID))
			continue
		}
		name := textures[texID]
		switch role {
		case RoleDiffuse:
			mat.Texture = name
		case RoleNormalMap:
			mat.NormalMap = name
		default:
			mat.Properties.Set(role, model.String(name))
		}
	}
	return mat, nil
}

// SceneLayer is a top-level placed object.
type SceneLayer struct {
	Type     uint32
	Name     string
	Instance uint32
}

// ReadSceneLayer parses a scene layer chunk: 4 reserved bytes, u32 type, 8
// reserved bytes, name, u32 instance index.
func ReadSceneLayer(c *rx3.Chunk) (SceneLayer, error) {
	r := c.Reader()
	r.Skip(4)
	l := SceneLayer{Type: r.U32()}
	r.Skip(8)
	l.Name = r.CString()
	l.Instance = r.U32()
	if err := r.Err(); err != nil {
		return SceneLayer{}, fmt.Errorf("reading scene layer: %w", err)
	}
	return l, nil
}

// ReadCollisionMesh parses a collision triangle mesh into an unindexed
// triangle soup: every triangle gets three vertices of its own.
func ReadCollisionMesh(c *rx3.Chunk) (string, model.MeshData, error) {
	r := c.Reader()
	r.Skip(16)
	name := r.CString()
	r.Skip(4)
	n := r.U32()
	if err := r.Err(); err != nil {
		return "", model.MeshData{}, fmt.Errorf("reading collision header: %w", err)
	}
	if uint64(n)*36 > uint64(r.Len()) {
		return "", model.MeshData{}, fmt.Errorf("%w: %d collision triangles, %d bytes left",
			rx3.ErrUnexpectedEOF, n, r.Len())
	}

	mesh := model.MeshData{
		Vertices:  make([]model.Vertex, n*3),
		Triangles: make([]model.Triangle, n),
	}
	for t := uint32(0); t < n; t++ {
		for v := uint32(0); v < 3; v++ {
			mesh.Triangles[t][v] = t*3 + v
			mesh.Vertices[t*3+v].Position = math.V3(r.Vec3())
		}
	}
	return name, mesh, r.Err()
}

// MeshInstance references a mesh and a material by index.
type MeshInstance struct {
	Mesh     uint32
	Material uint32
}

// SceneInstance is a placed transform with its mesh list.
type SceneInstance struct {
	Transform math.Mat4
	Meshes    []MeshInstance
}

// ReadSceneInstance parses a scene instance chunk: 16 reserved bytes, the
// transform, 32 reserved bytes, u32 mesh count, 4 reserved bytes, then per
// mesh 32 reserved bytes followed by the mesh and material indices.
func ReadSceneInstance(c *rx3.Chunk) (SceneInstance, error) {
	r := c.Reader()
	r.Skip(16)
	inst := SceneInstance{Transform: math.Mat4(r.Mat4())}
	r.Skip(32)
	n := r.U32()
	r.Skip(4)
	if err := r.Err(); err != nil {
		return SceneInstance{}, fmt.Errorf("reading scene instance header: %w", err)
	}
	if uint64(n)*40 > uint64(r.Len()) {
		return SceneInstance{}, fmt.Errorf("%w: %d instanced meshes, %d bytes left",
			rx3.ErrUnexpectedEOF, n, r.Len())
	}

	inst.Meshes = make([]MeshInstance, n)
	for i := range inst.Meshes {
		r.Skip(32)
		inst.Meshes[i] = MeshInstance{Mesh: r.U32(), Material: r.U32()}
	}
	return inst, r.Err()
}

// Location is a named marker in the scene. Rotation is in radians.
type Location struct {
	Position math.Vec3
	Rotation math.Vec3
}

// ReadLocation parses a location chunk: 4 reserved bytes, position, rotation.
func ReadLocation(c *rx3.Chunk) (Location, error) {
	r := c.Reader()
	r.Skip(4)
	l := Location{Position: math.V3(r.Vec3()), Rotation: math.V3(r.Vec3())}
	if err := r.Err(); err != nil {
		return Location{}, fmt.Errorf("reading location: %w", err)
	}
	return l, nil
}

// Transform returns the location's local transform.
func (l Location) Transform() math.Mat4 {
	return math.TRS(l.Position, l.Rotation.Degrees())
}

// pendingMesh ties an object slot to the mesh it waits for.
type pendingMesh struct {
	object int
	job    MeshJob
}

// decodeScene assembles a scene graph container. Containers without scene
// layers yield an empty model.
func decodeScene(c *rx3.Container, path string, opts *Options) (*model.Model, error) {
	log := opts.logger()
	m := &model.Model{Name: c.Name}

	layers := c.FindAll(rx3.ChunkSceneLayer)
	if len(layers) == 0 {
		log.Debug("scene container has no layers", zap.String("container", c.Name))
		return m, nil
	}

	names, err := rx3.ContainerNames(c)
	if err != nil {
		return nil, err
	}

	for i, ch := range c.FindAll(rx3.ChunkMaterial) {
		mat, err := ReadMaterial(ch, i, names.Textures, log)
		if err != nil {
			return nil, err
		}
		m.Materials = append(m.Materials, mat)
	}
	for _, name := range names.Textures {
		m.Textures = append(m.Textures, model.Texture{Name: name, Filename: name + ".png"})
	}

	bufs := collectMeshBuffers(c)
	instances := c.FindAll(rx3.ChunkSceneInstance)
	collisions := c.FindAll(rx3.ChunkCollisionTriMesh)

	// Layer objects come first so that children can be appended after them.
	m.Objects = make([]model.Object, len(layers))
	parsed := make([]SceneLayer, len(layers))
	for i, ch := range layers {
		parsed[i], err = ReadSceneLayer(ch)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		m.Objects[i] = model.NewObject(parsed[i].Name, "")
	}

	var pending []pendingMesh
	for i, layer := range parsed {
		if layer.Type == LayerCollision {
			if int(layer.Instance) >= len(collisions) {
				log.Debug("collision mesh out of range", zap.String("layer", layer.Name), zap.Uint32("index", layer.Instance))
				continue
			}
			name, mesh, err := ReadCollisionMesh(collisions[layer.Instance])
			if err != nil {
				return nil, fmt.Errorf("layer %q: %w", layer.Name, err)
			}
			obj := model.NewObject(name, layer.Name)
			obj.Mesh = mesh
			m.Objects = append(m.Objects, obj)
			continue
		}

		if int(layer.Instance) >= len(instances) {
			log.Debug("scene instance out of range", zap.String("layer", layer.Name), zap.Uint32("index", layer.Instance))
			continue
		}
		inst, err := ReadSceneInstance(instances[layer.Instance])
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", layer.Name, err)
		}
		m.Objects[i].Transform = inst.Transform

		for _, mi := range inst.Meshes {
			idx := int(mi.Mesh)
			if !bufs.valid(idx) {
				log.Debug("instanced mesh out of range", zap.String("layer", layer.Name), zap.Int("mesh", idx))
				continue
			}
			name := fmt.Sprintf("object_%d", len(m.Objects)+1)
			if idx < len(names.Meshes) {
				name = names.Meshes[idx]
			}
			obj := model.NewObject(name, layer.Name)
			if int(mi.Material) < len(m.Materials) {
				obj.Mesh.Material = m.Materials[mi.Material].Name
			}
			pending = append(pending, pendingMesh{object: len(m.Objects), job: bufs.job(idx)})
			m.Objects = append(m.Objects, obj)
		}
	}

	jobs := make([]MeshJob, len(pending))
	for i, p := range pending {
		jobs[i] = p.job
	}
	meshes, err := AssembleMeshes(jobs, opts.MeshOptions(), opts.Workers)
	if err != nil {
		return nil, err
	}
	for i, p := range pending {
		material := m.Objects[p.object].Mesh.Material
		m.Objects[p.object].Mesh = meshes[i]
		m.Objects[p.object].Mesh.Material = material
	}

	if locations := c.FindAll(rx3.ChunkLocation); len(locations) > 0 {
		m.Objects = append(m.Objects, model.NewObject(LocationsRoot, ""))
		for i, ch := range locations {
			loc, err := ReadLocation(ch)
			if err != nil {
				return nil, fmt.Errorf("location %d: %w", i, err)
			}
			name := fmt.Sprintf("location_%d", i+1)
			if i < len(names.Locations) {
				name = names.Locations[i]
			}
			obj := model.NewObject(name, LocationsRoot)
			obj.Transform = loc.Transform()
			obj.Properties.Set("rotation", model.Vec3(loc.Rotation.Degrees()))
			m.Objects = append(m.Objects, obj)
		}
	}

	if !opts.NoCrowd {
		if crowdPath := FindCrowdFile(path); crowdPath != "" {
			objects, err := LoadCrowdFile(crowdPath)
			if err != nil {
				return nil, err
			}
			log.Debug("crowd placement", zap.String("path", crowdPath), zap.Int("objects", len(objects)))
			m.Objects = append(m.Objects, objects...)
		}
	}

	return m, nil
}
