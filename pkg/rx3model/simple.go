package rx3model

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/rx3kit/pkg/model"
	"github.com/Faultbox/rx3kit/pkg/rx3"
)

// meshBuffers holds the per-mesh chunk arrays shared by both assembly paths.
type meshBuffers struct {
	formats    []*rx3.Chunk
	vertices   []*rx3.Chunk
	indices    []*rx3.Chunk
	primitives []*rx3.Chunk
}

func collectMeshBuffers(c *rx3.Container) meshBuffers {
	return meshBuffers{
		formats:    c.FindAll(rx3.ChunkVertexFormat),
		vertices:   c.FindAll(rx3.ChunkVertexBuffer),
		indices:    c.FindAll(rx3.ChunkIndexBuffer),
		primitives: c.FindAll(rx3.ChunkSimpleMesh),
	}
}

// valid reports whether mesh i has all three buffers.
func (b *meshBuffers) valid(i int) bool {
	return i >= 0 && i < len(b.indices) && i < len(b.vertices) && i < len(b.formats)
}

func (b *meshBuffers) job(i int) MeshJob {
	return MeshJob{
		Format:    b.formats[i],
		Vertices:  b.vertices[i],
		Indices:   b.indices[i],
		Primitive: primitiveAt(b.primitives, i),
	}
}

// externalSkeleton is the replacement skeleton chunk and bone names read
// from a separate container.
type externalSkeleton struct {
	skeleton *rx3.Chunk
	bones    []string
}

func loadExternalSkeleton(path string) (*externalSkeleton, error) {
	c, err := rx3.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading skeleton container: %w", err)
	}
	names, err := rx3.ContainerNames(c)
	if err != nil {
		return nil, fmt.Errorf("skeleton container names: %w", err)
	}
	return &externalSkeleton{skeleton: c.FindFirst(rx3.ChunkSkeleton), bones: names.Bones}, nil
}

// decodeSimple assembles a flat mesh list container. It needs the same
// non-zero number of index buffer, vertex buffer and vertex format chunks;
// anything else yields an empty model.
func decodeSimple(c *rx3.Container, opts *Options) (*model.Model, error) {
	log := opts.logger()
	m := &model.Model{Name: c.Name}

	bufs := collectMeshBuffers(c)
	n := len(bufs.indices)
	if n == 0 || n != len(bufs.vertices) || n != len(bufs.formats) {
		log.Debug("mesh buffer counts differ",
			zap.Int("ib", n),
			zap.Int("vb", len(bufs.vertices)),
			zap.Int("vertexformat", len(bufs.formats)))
		return m, nil
	}

	skin := c.FindFirst(rx3.ChunkAnimationSkin)
	skel := c.FindFirst(rx3.ChunkSkeleton)
	var boneNames []string
	if skin != nil && opts.SkeletonPath != "" {
		if _, err := os.Stat(opts.SkeletonPath); err == nil {
			ext, err := loadExternalSkeleton(opts.SkeletonPath)
			if err != nil {
				return nil, err
			}
			if ext.skeleton != nil {
				skel = ext.skeleton
			}
			boneNames = ext.bones
		} else {
			log.Debug("skeleton container not found", zap.String("path", opts.SkeletonPath))
		}
	}

	names, err := rx3.ContainerNames(c)
	if err != nil {
		return nil, err
	}

	mopts := opts.MeshOptions()
	if skin != nil && skel != nil {
		m.Skeleton, err = AssembleSkeleton(skin, skel, boneNames, mopts.Policy)
		if err != nil {
			return nil, fmt.Errorf("skeleton: %w", err)
		}
	}

	jobs := make([]MeshJob, n)
	for i := range jobs {
		jobs[i] = bufs.job(i)
	}
	meshes, err := AssembleMeshes(jobs, mopts, opts.Workers)
	if err != nil {
		return nil, err
	}

	m.Objects = make([]model.Object, n)
	for i := range m.Objects {
		name := fmt.Sprintf("object_%d", i)
		if i < len(names.Meshes) {
			name = names.Meshes[i]
		}
		m.Objects[i] = model.NewObject(name, "")
		m.Objects[i].Mesh = meshes[i]
	}
	return m, nil
}
