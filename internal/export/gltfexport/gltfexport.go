// Package gltfexport writes decoded models as glTF 2.0 documents.
package gltfexport

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/rx3kit/pkg/math"
	"github.com/Faultbox/rx3kit/pkg/model"
)

// Output formats.
const (
	FormatGLB  = "glb"
	FormatGLTF = "gltf"
)

// FormatFromPath picks the output format from a file extension.
func FormatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".gltf") {
		return FormatGLTF
	}
	return FormatGLB
}

type builder struct {
	m   *model.Model
	doc *gltf.Document

	textures  map[string]uint32
	materials map[string]uint32
	boneNodes []uint32
	skin      *uint32
}

// Build converts a model into a glTF document.
//
// Objects and bones become nodes linked by parent name. Objects whose parent
// cannot be resolved are scene roots.
// Properties are stored as extras.
func Build(m *model.Model) (*gltf.Document, error) {
	b := &builder{
		m:         m,
		doc:       gltf.NewDocument(),
		textures:  make(map[string]uint32),
		materials: make(map[string]uint32),
	}
	b.doc.Asset.Generator = "rx3kit"
	b.doc.Scenes[0].Name = m.Name
	b.doc.Scenes[0].Extras = extras(m.Properties)

	for i := range m.Materials {
		b.addMaterial(&m.Materials[i])
	}
	b.addSkeleton()

	objectNodes := make([]uint32, len(m.Objects))
	for i := range m.Objects {
		idx, err := b.addObject(&m.Objects[i])
		if err != nil {
			return nil, err
		}
		objectNodes[i] = idx
	}

	names := make([]string, len(m.Objects))
	parents := make([]string, len(m.Objects))
	for i, o := range m.Objects {
		names[i], parents[i] = o.Name, o.Parent
	}
	b.link(objectNodes, ParentIndex(names, parents))

	return b.doc, nil
}

// ParentIndex resolves parent names to indices. The first node with a name
// wins. Missing parents and self references resolve to -1, and a cycle is
// broken at its first member.
func ParentIndex(names, parents []string) []int {
	index := make(map[string]int, len(names))
	for i, n := range names {
		if _, ok := index[n]; !ok {
			index[n] = i
		}
	}

	out := make([]int, len(names))
	for i, p := range parents {
		out[i] = -1
		if j, ok := index[p]; ok && p != "" && j != i {
			out[i] = j
		}
	}

	// break cycles: a chain longer than the node count never reaches a root
	for i := range out {
		j, steps := i, 0
		for j >= 0 && steps <= len(out) {
			j = out[j]
			steps++
		}
		if j >= 0 {
			out[i] = -1
		}
	}
	return out
}

func (b *builder) link(nodes []uint32, parents []int) {
	for i, p := range parents {
		if p < 0 {
			b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, nodes[i])
			continue
		}
		parent := b.doc.Nodes[nodes[p]]
		parent.Children = append(parent.Children, nodes[i])
	}
}

func (b *builder) textureIndex(name string) uint32 {
	if idx, ok := b.textures[name]; ok {
		return idx
	}

	uri := name + ".png"
	for _, t := range b.m.Textures {
		if t.Name == name && t.Filename != "" {
			uri = filepath.ToSlash(t.Filename)
			break
		}
	}

	b.doc.Images = append(b.doc.Images, &gltf.Image{Name: name, URI: uri})
	b.doc.Textures = append(b.doc.Textures, &gltf.Texture{
		Name:   name,
		Source: gltf.Index(uint32(len(b.doc.Images) - 1)),
	})
	idx := uint32(len(b.doc.Textures) - 1)
	b.textures[name] = idx
	return idx
}

func (b *builder) addMaterial(mat *model.Material) {
	if _, ok := b.materials[mat.Name]; ok {
		return
	}

	gm := &gltf.Material{
		Name:                 mat.Name,
		DoubleSided:          true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{},
		Extras:               extras(mat.Properties),
	}
	if mat.Color != (model.RGBA{}) {
		color := new([4]float32)
		for i, c := range mat.Color {
			color[i] = float32(c) / 255
		}
		gm.PBRMetallicRoughness.BaseColorFactor = color
	}
	if mat.Texture != "" {
		gm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: b.textureIndex(mat.Texture)}
	}
	if mat.NormalMap != "" {
		gm.NormalTexture = &gltf.NormalTexture{Index: gltf.Index(b.textureIndex(mat.NormalMap))}
	}

	b.doc.Materials = append(b.doc.Materials, gm)
	b.materials[mat.Name] = uint32(len(b.doc.Materials) - 1)
}

func (b *builder) addSkeleton() {
	bones := b.m.Skeleton.Bones
	if len(bones) == 0 {
		return
	}

	b.boneNodes = make([]uint32, len(bones))
	names := make([]string, len(bones))
	parents := make([]string, len(bones))
	for i, bone := range bones {
		node := &gltf.Node{Name: bone.Name, Extras: extras(bone.Properties)}
		setMatrix(node, bone.Transform)
		b.boneNodes[i] = uint32(len(b.doc.Nodes))
		b.doc.Nodes = append(b.doc.Nodes, node)
		names[i], parents[i] = bone.Name, bone.Parent
	}
	b.link(b.boneNodes, ParentIndex(names, parents))

	world := b.m.Skeleton.WorldTransforms()
	inverseBinds := make([][4][4]float32, len(bones))
	for i, w := range world {
		inverseBinds[i] = columns(w.Inverse())
	}
	ibm := modeler.WriteAccessor(b.doc, gltf.TargetNone, inverseBinds)

	b.doc.Skins = append(b.doc.Skins, &gltf.Skin{
		Name:                "skeleton",
		InverseBindMatrices: gltf.Index(ibm),
		Joints:              b.boneNodes,
	})
	b.skin = gltf.Index(uint32(len(b.doc.Skins) - 1))
}

func columns(m math.Mat4) [4][4]float32 {
	var c [4][4]float32
	for i := range c {
		copy(c[i][:], m[i*4:i*4+4])
	}
	return c
}

func setMatrix(node *gltf.Node, m math.Mat4) {
	if m.IsIdentity() {
		return
	}
	node.Matrix = [16]float32(m)
}

// extras keeps empty property bags out of the JSON.
func extras(p model.Properties) any {
	if len(p) == 0 {
		return nil
	}
	return p.Interface()
}

func (b *builder) addObject(o *model.Object) (uint32, error) {
	node := &gltf.Node{Name: o.Name, Extras: extras(o.Properties)}
	setMatrix(node, o.Transform)

	if len(o.Mesh.Triangles) > 0 {
		if err := o.Mesh.Validate(); err != nil {
			return 0, errors.Wrapf(err, "object %q", o.Name)
		}
		node.Mesh = gltf.Index(b.addMesh(o.Name, &o.Mesh))
		if o.Mesh.Format.NumBones() > 0 && b.skin != nil {
			node.Skin = b.skin
		}
	}

	b.doc.Nodes = append(b.doc.Nodes, node)
	return uint32(len(b.doc.Nodes) - 1), nil
}

func (b *builder) addMesh(name string, mesh *model.MeshData) uint32 {
	doc := b.doc
	n := len(mesh.Vertices)
	f := mesh.Format

	positions := make([][3]float32, n)
	for i, v := range mesh.Vertices {
		positions[i] = v.Position.Array()
	}
	attributes := map[string]uint32{
		gltf.POSITION: modeler.WritePosition(doc, positions),
	}

	if f.HasNormal() {
		normals := make([][3]float32, n)
		for i, v := range mesh.Vertices {
			normals[i] = v.Normal.Normalize().Array()
		}
		attributes[gltf.NORMAL] = modeler.WriteNormal(doc, normals)
	}
	if f.HasTangent() {
		tangents := make([][4]float32, n)
		for i, v := range mesh.Vertices {
			t := v.Tangent.Normalize()
			tangents[i] = [4]float32{t.X, t.Y, t.Z, 1}
		}
		attributes[gltf.TANGENT] = modeler.WriteTangent(doc, tangents)
	}

	for set := 0; set < f.NumUVs(); set++ {
		uvs := make([][2]float32, n)
		for i, v := range mesh.Vertices {
			uvs[i] = v.UV[set].Array()
		}
		attributes[fmt.Sprintf("TEXCOORD_%d", set)] = modeler.WriteTextureCoord(doc, uvs)
	}

	for set := 0; set < f.NumColors(); set++ {
		colors := make([][4]uint8, n)
		for i, v := range mesh.Vertices {
			colors[i] = v.Colors[set]
		}
		attributes[fmt.Sprintf("COLOR_%d", set)] = modeler.WriteColor(doc, colors)
	}

	for group := 0; group*4 < f.NumBones(); group++ {
		joints := make([][4]uint16, n)
		weights := make([][4]float32, n)
		for i, v := range mesh.Vertices {
			copy(joints[i][:], v.BoneIndices[group*4:])
			copy(weights[i][:], v.BoneWeights[group*4:])
		}
		attributes[fmt.Sprintf("JOINTS_%d", group)] = modeler.WriteJoints(doc, joints)
		attributes[fmt.Sprintf("WEIGHTS_%d", group)] = modeler.WriteWeights(doc, weights)
	}

	indices := make([]uint32, 0, len(mesh.Triangles)*3)
	for _, t := range mesh.Triangles {
		indices = append(indices, t[0], t[1], t[2])
	}

	prim := &gltf.Primitive{
		Attributes: attributes,
		Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
	}
	if idx, ok := b.materials[mesh.Material]; ok && mesh.Material != "" {
		prim.Material = gltf.Index(idx)
	}

	gm := &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}}
	if layers := colorLayers(mesh); layers != nil {
		gm.Extras = map[string]any{"colorLayers": layers}
	}
	doc.Meshes = append(doc.Meshes, gm)
	return uint32(len(doc.Meshes) - 1)
}

func colorLayers(mesh *model.MeshData) []string {
	var layers []string
	for set := 0; set < mesh.Format.NumColors(); set++ {
		if mesh.ColorLayerNames[set] != "" {
			layers = mesh.ColorLayerNames[:mesh.Format.NumColors()]
			break
		}
	}
	return layers
}

func embed(doc *gltf.Document) {
	for _, buf := range doc.Buffers {
		if buf.URI == "" {
			buf.EmbeddedResource()
		}
	}
}

// Write encodes m to w, as GLB when binary is set and as embedded JSON
// otherwise.
func Write(w io.Writer, m *model.Model, binary bool) error {
	doc, err := Build(m)
	if err != nil {
		return errors.Wrap(err, "building gltf")
	}
	if !binary {
		embed(doc)
	}

	enc := gltf.NewEncoder(w)
	enc.AsBinary = binary
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "encoding gltf")
	}
	return nil
}

// WriteFile writes m to path in the format implied by its extension.
func WriteFile(path string, m *model.Model) error {
	doc, err := Build(m)
	if err != nil {
		return errors.Wrapf(err, "building %s", path)
	}

	if FormatFromPath(path) == FormatGLB {
		err = gltf.SaveBinary(doc, path)
	} else {
		embed(doc)
		err = gltf.Save(doc, path)
	}
	return errors.Wrapf(err, "saving %s", path)
}
