package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Faultbox/rx3kit/pkg/model"
	"github.com/Faultbox/rx3kit/pkg/rx3"
	"github.com/Faultbox/rx3kit/pkg/rx3model"
)

// writeChunks prints the chunk table. Ids without a known type are marked
// with an asterisk.
func writeChunks(w io.Writer, c *rx3.Container) {
	fmt.Fprintf(w, "%-5s %-10s %-24s %10s %10s\n", "#", "ID", "TYPE", "OFFSET", "SIZE")
	unknown := 0
	for i, e := range c.Table() {
		name := rx3.ChunkName(e.ID)
		if !rx3.Known(e.ID) {
			name += " *"
			unknown++
		}
		fmt.Fprintf(w, "%-5d %#08x %-24s %10d %10d\n", i, e.ID, name, e.Offset, e.Size)
	}
	if unknown > 0 {
		fmt.Fprintf(w, "\n* %d chunk(s) of unknown type\n", unknown)
	}
}

// writeTree prints the object hierarchy. Objects whose parent is missing
// start a new root.
func writeTree(w io.Writer, m *model.Model) {
	seen := make(map[*model.Object]bool, len(m.Objects))

	var walk func(o *model.Object, depth int)
	walk = func(o *model.Object, depth int) {
		if seen[o] {
			return
		}
		seen[o] = true

		fmt.Fprintf(w, "%s%s", strings.Repeat("  ", depth), o.Name)
		if o.HasMesh() {
			fmt.Fprintf(w, " (vertices %d, triangles %d", len(o.Mesh.Vertices), len(o.Mesh.Triangles))
			if mat := m.FindMaterial(o.Mesh.Material); mat != nil && mat.Texture != "" {
				fmt.Fprintf(w, ", texture %s", mat.Texture)
			}
			fmt.Fprint(w, ")")
		}
		fmt.Fprintln(w)

		for _, child := range m.Children(o.Name) {
			walk(child, depth+1)
		}
	}

	for i := range m.Objects {
		o := &m.Objects[i]
		if o.Parent == "" || o.Parent == o.Name || m.FindObject(o.Parent) == nil {
			walk(o, 0)
		}
	}
	// cycles never reach a root
	for i := range m.Objects {
		walk(&m.Objects[i], 0)
	}
}

// writeGames lists the game ids with a layout policy.
func writeGames(w io.Writer, policies rx3model.Policies) {
	fmt.Fprintf(w, "%-12s %-12s %-12s\n", "GAME", "BONES", "PARENTS")
	for _, game := range policies.Games() {
		p := policies.Lookup(game)
		fmt.Fprintf(w, "%-12s %-12s %-12s\n", game, width(p.WideBoneIndices), width(p.WideParentIndices))
	}
}

func width(wide bool) string {
	if wide {
		return "16-bit"
	}
	return "8-bit"
}
