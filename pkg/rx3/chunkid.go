package rx3

import "fmt"

// Hash computes the chunk type id for a type name.
func Hash(name string) uint32 {
	h := uint32(5321)
	for i := 0; i < len(name); i++ {
		h = uint32(name[i]) + h*33
	}
	return h
}

// Well-known chunk type ids.
var (
	ChunkTextureBatch         = Hash("texturebatch")
	ChunkTexture              = Hash("texture")
	ChunkVertexBuffer         = Hash("vb")
	ChunkIndexBufferBatch     = Hash("ibbatch")
	ChunkIndexBuffer          = Hash("ib")
	ChunkBoneRemap            = Hash("boneremap")
	ChunkAnimationSkin        = Hash("animationskin")
	ChunkEdgeMesh             = Hash("edgemesh")
	ChunkSimpleMesh           = Hash("simplemesh")
	ChunkVertexFormat         = Hash("vertexformat")
	ChunkNameTable            = Hash("nametable")
	ChunkLocation             = Hash("location")
	ChunkHotspot              = Hash("hotspot")
	ChunkMaterial             = Hash("material")
	ChunkCollision            = Hash("collision")
	ChunkCollisionTriMesh     = Hash("collisiontrimesh")
	ChunkSceneInstance        = Hash("sceneinstance")
	ChunkSceneLayer           = Hash("scenelayer")
	ChunkSceneAnimation       = Hash("sceneanimation")
	ChunkMorphIndexed         = Hash("morphindexed")
	ChunkSkeleton             = Hash("skeleton")
	ChunkClothDef             = Hash("clothdef")
	ChunkQuadIndexBufferBatch = Hash("quadibbatch")
	ChunkQuadIndexBuffer      = Hash("qib")
	ChunkBoneName             = Hash("bonename")
	ChunkAdjacency            = Hash("adjacency")
)

var chunkNames = map[uint32]string{}

func init() {
	for _, name := range []string{
		"texturebatch", "texture", "vb", "ibbatch", "ib", "boneremap",
		"animationskin", "edgemesh", "simplemesh", "vertexformat", "nametable",
		"location", "hotspot", "material", "collision", "collisiontrimesh",
		"sceneinstance", "scenelayer", "sceneanimation", "morphindexed",
		"skeleton", "clothdef", "quadibbatch", "qib", "bonename", "adjacency",
	} {
		chunkNames[Hash(name)] = name
	}
}

// ChunkName returns the type name for a well-known id, or the id in hex.
func ChunkName(id uint32) string {
	if name, ok := chunkNames[id]; ok {
		return name
	}
	return fmt.Sprintf("0x%08X", id)
}

// Known reports whether id is a well-known chunk type.
func Known(id uint32) bool {
	_, ok := chunkNames[id]
	return ok
}
