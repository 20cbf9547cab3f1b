package model

import (
	"fmt"
	"sort"

	"github.com/Faultbox/rx3kit/pkg/math"
)

// Kind enumerates the property value types.
type Kind uint8

// Property kinds.
const (
	KindInt Kind = iota + 1
	KindFloat
	KindDouble
	KindBool
	KindString
	KindVec2
	KindVec3
	KindVec4
	KindColor
	KindQuat
	KindMat4
)

var kindNames = map[Kind]string{
	KindInt: "int", KindFloat: "float", KindDouble: "double", KindBool: "bool",
	KindString: "string", KindVec2: "vec2", KindVec3: "vec3", KindVec4: "vec4",
	KindColor: "color", KindQuat: "quat", KindMat4: "mat4",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Value is a property value. The set of implementations is closed: Int,
// Float, Double, Bool, String, Vec2, Vec3, Vec4, Color, Quat and Mat4.
type Value interface {
	Kind() Kind
	// Interface returns the value as plain Go data for serialization.
	Interface() any
	value()
}

type (
	Int    int64
	Float  float32
	Double float64
	Bool   bool
	String string
	Vec2   math.Vec2
	Vec3   math.Vec3
	Vec4   math.Vec4
	Color  RGBA
	Quat   math.Quat
	Mat4   math.Mat4
)

func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (Double) Kind() Kind { return KindDouble }
func (Bool) Kind() Kind   { return KindBool }
func (String) Kind() Kind { return KindString }
func (Vec2) Kind() Kind   { return KindVec2 }
func (Vec3) Kind() Kind   { return KindVec3 }
func (Vec4) Kind() Kind   { return KindVec4 }
func (Color) Kind() Kind  { return KindColor }
func (Quat) Kind() Kind   { return KindQuat }
func (Mat4) Kind() Kind   { return KindMat4 }

func (v Int) Interface() any    { return int64(v) }
func (v Float) Interface() any  { return float32(v) }
func (v Double) Interface() any { return float64(v) }
func (v Bool) Interface() any   { return bool(v) }
func (v String) Interface() any { return string(v) }
func (v Vec2) Interface() any   { return math.Vec2(v).Array() }
func (v Vec3) Interface() any   { return math.Vec3(v).Array() }
func (v Vec4) Interface() any   { return [4]float32(v) }
func (v Color) Interface() any  { return [4]uint8(v) }
func (v Quat) Interface() any   { return math.Quat(v).Array() }
func (v Mat4) Interface() any   { return [16]float32(v) }

func (Int) value()    {}
func (Float) value()  {}
func (Double) value() {}
func (Bool) value()   {}
func (String) value() {}
func (Vec2) value()   {}
func (Vec3) value()   {}
func (Vec4) value()   {}
func (Color) value()  {}
func (Quat) value()   {}
func (Mat4) value()   {}

// Properties is an open property bag keyed by name.
type Properties map[string]Value

// Set stores v under key, allocating the map if needed.
func (p *Properties) Set(key string, v Value) {
	if *p == nil {
		*p = make(Properties)
	}
	(*p)[key] = v
}

// Has reports whether key is present.
func (p Properties) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// GetString returns the string stored under key.
func (p Properties) GetString(key string) (string, bool) {
	s, ok := p[key].(String)
	return string(s), ok
}

// Keys returns the property names in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Interface converts the bag to plain Go data, or nil when empty.
func (p Properties) Interface() map[string]any {
	if len(p) == 0 {
		return nil
	}
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v.Interface()
	}
	return out
}

// MergeMissing copies entries of other whose keys are absent from p.
func (p *Properties) MergeMissing(other Properties) {
	for k, v := range other {
		if !p.Has(k) {
			p.Set(k, v)
		}
	}
}
