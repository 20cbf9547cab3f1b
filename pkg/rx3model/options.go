// Package rx3model reconstructs models from RX3 containers.
//
// Decode picks the assembly path from the chunk types present: containers
// with scene instances go through the scene graph path, containers with
// simple meshes through the flat mesh list path, and anything else yields an
// empty model.
package rx3model

import "go.uber.org/zap"

// Options control decoding.
type Options struct {
	// Game selects the layout policy, e.g. "fifa16pc".
	Game string
	// Policies overrides the built-in policy table when non-nil.
	Policies Policies
	// SkeletonPath names an external container whose skeleton and bone
	// names replace the ones of a simple mesh container.
	SkeletonPath string
	// LegacyColorAlpha fills vertex color alpha from the blue lane.
	LegacyColorAlpha bool
	// NoCrowd disables the stadium seating lookup.
	NoCrowd bool
	// Workers decodes meshes in parallel when greater than 1.
	Workers int
	// Logger receives debug output about skipped data. Nil disables it.
	Logger *zap.Logger
}

// DefaultOptions returns options matching legacy exports.
func DefaultOptions() Options {
	return Options{LegacyColorAlpha: true, Workers: 1}
}

func (o *Options) policy() Policy {
	table := o.Policies
	if table == nil {
		table = DefaultPolicies()
	}
	return table.Lookup(o.Game)
}

func (o *Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// MeshOptions is the subset of options the mesh assembler needs.
type MeshOptions struct {
	Policy
	LegacyColorAlpha bool
}

// MeshOptions resolves the game policy for mesh assembly.
func (o *Options) MeshOptions() MeshOptions {
	return MeshOptions{Policy: o.policy(), LegacyColorAlpha: o.LegacyColorAlpha}
}
