package math

import "testing"

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("QuatIdentity() = %v, want (0, 0, 0, 1)", q)
	}
	if !q.ToMat4().IsIdentity() {
		t.Error("identity quaternion should give identity matrix")
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 0, Y: 0, Z: 0, W: 2}.Normalize()
	if q != QuatIdentity() {
		t.Errorf("Normalize() = %v", q)
	}
	if (Quat{}).Normalize() != QuatIdentity() {
		t.Error("zero quaternion should normalize to identity")
	}
}

func TestQuatFromEulerXYZ(t *testing.T) {
	for _, deg := range []Vec3{{0, 90, 0}, {30, 45, 60}, {-20, 10, 170}} {
		q := QuatFromEulerXYZ(deg)
		if !q.ToMat4().ApproxEqual(EulerXYZ(deg), 1e-5) {
			t.Errorf("QuatFromEulerXYZ(%v).ToMat4() = %v, want %v", deg, q.ToMat4(), EulerXYZ(deg))
		}
	}
}

func TestQuatMul(t *testing.T) {
	a := QuatFromEulerXYZ(Vec3{0, 0, 30})
	b := QuatFromEulerXYZ(Vec3{0, 0, 60})
	got := a.Mul(b).ToMat4()
	want := RotateZ(Radians(90))
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("a*b = %v, want %v", got, want)
	}
}
