package rx3model

import (
	"go.uber.org/zap"

	"github.com/Faultbox/rx3kit/pkg/model"
	"github.com/Faultbox/rx3kit/pkg/rx3"
)

// Kind is the assembly path selected for a container.
type Kind int

// Container kinds.
const (
	KindEmpty Kind = iota
	KindScene
	KindSimple
)

func (k Kind) String() string {
	switch k {
	case KindScene:
		return "scene"
	case KindSimple:
		return "simple"
	}
	return "empty"
}

// Classify picks the assembly path from the chunk types present.
func Classify(c *rx3.Container) Kind {
	switch {
	case c.Contains(rx3.ChunkSceneInstance):
		return KindScene
	case c.Contains(rx3.ChunkSimpleMesh):
		return KindSimple
	}
	return KindEmpty
}

// Decode reconstructs a model from a loaded container. path is the
// container's file name and is only used to locate crowd placement data;
// it may be empty.
func Decode(c *rx3.Container, path string, opts Options) (*model.Model, error) {
	kind := Classify(c)
	opts.logger().Debug("decoding container",
		zap.String("container", c.Name),
		zap.Stringer("kind", kind),
		zap.Int("chunks", len(c.Chunks)))

	switch kind {
	case KindScene:
		return decodeScene(c, path, &opts)
	case KindSimple:
		return decodeSimple(c, &opts)
	}
	return &model.Model{Name: c.Name}, nil
}

// DecodeFile loads and decodes the container at path.
func DecodeFile(path string, opts Options) (*model.Model, error) {
	c, err := rx3.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(c, path, opts)
}
