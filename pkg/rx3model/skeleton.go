package rx3model

import (
	"fmt"

	"github.com/Faultbox/rx3kit/pkg/math"
	"github.com/Faultbox/rx3kit/pkg/model"
	"github.com/Faultbox/rx3kit/pkg/rx3"
)

// noParent marks a root bone in the narrow parent table layout.
const noParent = 255

// ReadInverseBinds parses an animation skin chunk: 4 reserved bytes, u32
// bone count, 8 reserved bytes, then one 16-float matrix per bone.
func ReadInverseBinds(skin *rx3.Chunk) ([]math.Mat4, error) {
	r := skin.Reader()
	r.Skip(4)
	n := r.U32()
	r.Skip(8)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("reading skin header: %w", err)
	}
	if uint64(n)*64 > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: %d inverse bind matrices, %d bytes left", rx3.ErrUnexpectedEOF, n, r.Len())
	}

	binds := make([]math.Mat4, n)
	for i := range binds {
		binds[i] = math.Mat4(r.Mat4())
	}
	return binds, r.Err()
}

// ReadParents parses n parent indices from a skeleton chunk after its
// 16-byte header. Roots are -1.
func ReadParents(skel *rx3.Chunk, n int, wide bool) ([]int, error) {
	r := skel.Reader()
	r.Skip(16)
	parents := make([]int, n)
	for i := range parents {
		if wide {
			parents[i] = int(r.I16())
			continue
		}
		p := int(r.U8())
		r.Skip(1)
		if p == noParent {
			p = -1
		}
		parents[i] = p
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("reading %d bone parents: %w", n, err)
	}
	return parents, nil
}

// AssembleSkeleton builds a skeleton from inverse bind matrices and the
// parent table.
//
// Bones are named from names, then "bone_<index>". A root keeps its world
// bind transform; a child with a parent p in range gets
// inverseBind[p] * world and the parent's name.
func AssembleSkeleton(skin, skel *rx3.Chunk, names []string, policy Policy) (model.Skeleton, error) {
	var s model.Skeleton

	binds, err := ReadInverseBinds(skin)
	if err != nil {
		return s, err
	}
	if len(binds) == 0 {
		return s, nil
	}
	parents, err := ReadParents(skel, len(binds), policy.WideParentIndices)
	if err != nil {
		return s, err
	}

	s.Bones = make([]model.Bone, len(binds))
	for i := range s.Bones {
		name := fmt.Sprintf("bone_%d", i)
		if i < len(names) {
			name = names[i]
		}
		s.Bones[i] = model.Bone{Name: name, Transform: binds[i].Inverse()}
	}
	for i, p := range parents {
		if p < 0 || p >= len(s.Bones) {
			continue
		}
		s.Bones[i].Parent = s.Bones[p].Name
		s.Bones[i].Transform = binds[p].Mul(s.Bones[i].Transform)
	}
	return s, nil
}
