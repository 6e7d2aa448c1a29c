package splat

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func randomQuat(rng *rand.Rand) mgl32.Quat {
	for {
		q := mgl32.Quat{
			W: float32(rng.NormFloat64()),
			V: mgl32.Vec3{float32(rng.NormFloat64()), float32(rng.NormFloat64()), float32(rng.NormFloat64())},
		}
		if n := q.Len(); n > 1e-3 {
			return q.Scale(1 / n)
		}
	}
}

func quatsEquivalent(a, b mgl32.Quat, tol float32) bool {
	a = a.Normalize()
	b = b.Normalize()
	d := a.Dot(b)
	return float32(math.Abs(float64(d))) > 1-tol
}

func TestRotationFromQuaternionIdentity(t *testing.T) {
	r := RotationFromQuaternion(mgl32.Quat{W: 1})
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			want := float32(0)
			if row == col {
				want = 1
			}
			if diff := math.Abs(float64(r.At(row, col) - want)); diff > 1e-5 {
				t.Fatalf("r[%d][%d] = %v, want %v", row, col, r.At(row, col), want)
			}
		}
	}
}

func TestRotationFromQuaternionDeterminant(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		q := randomQuat(rng)
		if det := RotationFromQuaternion(q).Det(); math.Abs(float64(det-1)) > 1e-4 {
			t.Fatalf("det(R(%v)) = %v", q, det)
		}
	}
}

func TestRotationFromQuaternionMatchesMathgl(t *testing.T) {
	q := mgl32.QuatRotate(0.7, mgl32.Vec3{1, 2, 3}.Normalize())
	want := q.Mat4().Mat3()
	got := RotationFromQuaternion(q)
	if !got.ApproxEqualThreshold(want, 1e-5) {
		t.Fatalf("rotation mismatch:\n%v\n%v", got, want)
	}
}

func TestRotationFromZeroQuaternion(t *testing.T) {
	if r := RotationFromQuaternion(mgl32.Quat{}); r != mgl32.Ident3() {
		t.Fatalf("unexpected rotation %v", r)
	}
}

func TestQuaternionFromRotationBranches(t *testing.T) {
	cases := []struct {
		name string
		q    mgl32.Quat
	}{
		{name: "trace", q: mgl32.QuatRotate(0.3, mgl32.Vec3{0, 0, 1})},
		{name: "x dominant", q: mgl32.Quat{W: 0, V: mgl32.Vec3{1, 0, 0}}},
		{name: "y dominant", q: mgl32.Quat{W: 0, V: mgl32.Vec3{0, 1, 0}}},
		{name: "z dominant", q: mgl32.Quat{W: 0, V: mgl32.Vec3{0, 0, 1}}},
		{name: "near pi", q: mgl32.QuatRotate(3.1, mgl32.Vec3{1, 1, 0}.Normalize())},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := QuaternionFromRotation(RotationFromQuaternion(tc.q))
			if !quatsEquivalent(got, tc.q, 1e-5) {
				t.Fatalf("got %v, want ±%v", got, tc.q)
			}
		})
	}
}

func TestQuaternionRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 500; i++ {
		q := randomQuat(rng)
		got := QuaternionFromRotation(RotationFromQuaternion(q))
		if !quatsEquivalent(got, q, 1e-4) {
			t.Fatalf("round trip %d: got %v, want ±%v", i, got, q)
		}
	}
}
