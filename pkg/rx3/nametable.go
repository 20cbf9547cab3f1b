package rx3

import (
	"fmt"
	"strings"
)

// MeshNameSuffix is stripped from mesh names in the name table.
const MeshNameSuffix = ".FxRenderableSimple"

// NameEntry is one name table record.
type NameEntry struct {
	ID   uint32
	Name string
}

// ReadNameTable decodes a name table chunk.
//
// Layout: 4 reserved bytes, u32 count, 8 reserved bytes, then count records
// of {id u32, length u32, name}. The name is read as a NUL-terminated string
// at the record position and the cursor then advances by length bytes.
func ReadNameTable(c *Chunk) ([]NameEntry, error) {
	r := c.Reader()
	r.Skip(4)
	count := r.U32()
	r.Skip(8)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("reading name table header: %w", err)
	}

	entries := make([]NameEntry, 0, min(int(count), r.Len()/8))
	for i := uint32(0); i < count; i++ {
		id := r.U32()
		length := r.U32()
		name := r.PeekCString()
		r.Skip(int(length))
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("reading name %d: %w", i, err)
		}
		entries = append(entries, NameEntry{ID: id, Name: name})
	}
	return entries, nil
}

// Names holds the name lists of a container grouped by chunk type.
type Names struct {
	Meshes    []string
	Locations []string
	Textures  []string
	Bones     []string
}

// CollectNames groups name table entries by type. Mesh names lose
// MeshNameSuffix.
func CollectNames(entries []NameEntry) Names {
	var n Names
	for _, e := range entries {
		switch e.ID {
		case ChunkSimpleMesh:
			n.Meshes = append(n.Meshes, strings.TrimSuffix(e.Name, MeshNameSuffix))
		case ChunkLocation:
			n.Locations = append(n.Locations, e.Name)
		case ChunkTexture:
			n.Textures = append(n.Textures, e.Name)
		case ChunkBoneName:
			n.Bones = append(n.Bones, e.Name)
		}
	}
	return n
}

// ContainerNames reads the first name table of c. A container without a
// name table yields empty lists.
func ContainerNames(c *Container) (Names, error) {
	ch := c.FindFirst(ChunkNameTable)
	if ch == nil {
		return Names{}, nil
	}
	entries, err := ReadNameTable(ch)
	if err != nil {
		return Names{}, err
	}
	return CollectNames(entries), nil
}
