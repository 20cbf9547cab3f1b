package model

import "github.com/Faultbox/rx3kit/pkg/math"

// Bone is a skeleton joint. Transform is relative to the parent bone, or the
// world bind transform for roots.
type Bone struct {
	Name       string
	Parent     string
	Transform  math.Mat4
	Properties Properties
}

// Skeleton is an ordered bone list.
type Skeleton struct {
	Bones      []Bone
	Properties Properties
}

// BoneIndex maps each bone name to the index of its first occurrence.
func (s *Skeleton) BoneIndex() map[string]int {
	index := make(map[string]int, len(s.Bones))
	for i, b := range s.Bones {
		if _, ok := index[b.Name]; !ok {
			index[b.Name] = i
		}
	}
	return index
}

// ParentIndex returns the index of each bone's parent, or -1 for roots and
// unresolved parents.
func (s *Skeleton) ParentIndex() []int {
	index := s.BoneIndex()
	parents := make([]int, len(s.Bones))
	for i, b := range s.Bones {
		parents[i] = -1
		if b.Parent == "" {
			continue
		}
		if p, ok := index[b.Parent]; ok && p != i {
			parents[i] = p
		}
	}
	return parents
}

// WorldTransforms composes parent chains into world bind transforms.
func (s *Skeleton) WorldTransforms() []math.Mat4 {
	parents := s.ParentIndex()
	world := make([]math.Mat4, len(s.Bones))
	done := make([]bool, len(s.Bones))

	var resolve func(i int, depth int) math.Mat4
	resolve = func(i int, depth int) math.Mat4 {
		if done[i] {
			return world[i]
		}
		w := s.Bones[i].Transform
		// depth guards against parent cycles in malformed data
		if p := parents[i]; p >= 0 && depth < len(s.Bones) {
			w = resolve(p, depth+1).Mul(w)
		}
		world[i] = w
		done[i] = true
		return w
	}
	for i := range s.Bones {
		resolve(i, 0)
	}
	return world
}

// Equal compares bone names, parents and property keys.
func (s *Skeleton) Equal(other *Skeleton) bool {
	if len(s.Bones) != len(other.Bones) {
		return false
	}
	for i := range s.Bones {
		a, b := &s.Bones[i], &other.Bones[i]
		if a.Name != b.Name || a.Parent != b.Parent || len(a.Properties) != len(b.Properties) {
			return false
		}
		for k := range a.Properties {
			if !b.Properties.Has(k) {
				return false
			}
		}
	}
	return true
}

// Clone returns a copy that shares no bone slice with s.
func (s *Skeleton) Clone() Skeleton {
	c := Skeleton{Properties: s.Properties}
	c.Bones = append([]Bone(nil), s.Bones...)
	return c
}
