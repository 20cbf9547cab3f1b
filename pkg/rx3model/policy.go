package rx3model

import (
	"sort"
	"strings"
)

// Policy holds the per-game binary layout switches.
type Policy struct {
	// WideBoneIndices reads 4u8 bone index attributes as 4u16.
	WideBoneIndices bool `yaml:"wide_bone_indices"`
	// WideParentIndices reads skeleton parents as int16 instead of a byte
	// plus one pad byte with 255 meaning no parent.
	WideParentIndices bool `yaml:"wide_parent_indices"`
}

// Policies maps lower-case game ids to their layout policy.
type Policies map[string]Policy

// DefaultPolicies returns the built-in table.
func DefaultPolicies() Policies {
	return Policies{
		"fifa15pc": {WideBoneIndices: true, WideParentIndices: true},
		"fifa16pc": {WideBoneIndices: true, WideParentIndices: true},
	}
}

// Lookup returns the policy for a game id. Unknown ids get the zero policy.
func (p Policies) Lookup(game string) Policy {
	return p[strings.ToLower(game)]
}

// With returns a copy of p with overrides applied. Override keys are
// lower-cased.
func (p Policies) With(overrides Policies) Policies {
	out := make(Policies, len(p)+len(overrides))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range overrides {
		out[strings.ToLower(k)] = v
	}
	return out
}

// Games returns the known game ids in sorted order.
func (p Policies) Games() []string {
	games := make([]string, 0, len(p))
	for k := range p {
		games = append(games, k)
	}
	sort.Strings(games)
	return games
}
