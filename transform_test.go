package splat

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func randomGaussians(rng *rand.Rand, n int) *Gaussians3D {
	g := NewGaussians3DWithCapacity(n)
	for i := 0; i < n; i++ {
		g.Append(
			mgl32.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, 1 + rng.Float32()*4},
			mgl32.Vec3{0.01 + rng.Float32(), 0.01 + rng.Float32(), 0.01 + rng.Float32()},
			randomQuat(rng),
			mgl32.Vec3{rng.Float32(), rng.Float32(), rng.Float32()},
			rng.Float32(),
		)
	}
	return g
}

func TestApplyAffineIdentity(t *testing.T) {
	g := randomGaussians(rand.New(rand.NewSource(5)), 64)
	out, err := ApplyAffine(g, IdentityAffine(), func(o *TransformOptions) { o.Workers = 1 })
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(g.Means, out.Means); diff != "" {
		t.Fatalf("means changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(g.Colors, out.Colors); diff != "" {
		t.Fatalf("colors changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(g.Opacities, out.Opacities); diff != "" {
		t.Fatalf("opacities changed (-want +got):\n%s", diff)
	}
	for i := 0; i < g.Len(); i++ {
		if d := maxAbsDiff(g.Covariance(i), out.Covariance(i)); d > 1e-4 {
			t.Fatalf("covariance %d differs by %v", i, d)
		}
	}
}

func TestApplyAffineTranslationAndScale(t *testing.T) {
	g := NewGaussians3DWithCapacity(1)
	g.Append(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1, 1, 1}, mgl32.QuatIdent(), mgl32.Vec3{0.5, 0.5, 0.5}, 0.5)

	m := AffineFromRows([12]float32{
		2, 0, 0, 10,
		0, 2, 0, 20,
		0, 0, 2, 30,
	})
	out, err := ApplyAffine(g, m)
	if err != nil {
		t.Fatal(err)
	}

	if want := (mgl32.Vec3{12, 24, 36}); out.Means[0] != want {
		t.Fatalf("mean %v, want %v", out.Means[0], want)
	}
	if diff := cmp.Diff(mgl32.Vec3{2, 2, 2}, out.Scales[0], cmpopts.EquateApprox(0, 1e-4)); diff != "" {
		t.Fatalf("scales (-want +got):\n%s", diff)
	}
	if g.Means[0] != (mgl32.Vec3{1, 2, 3}) {
		t.Fatal("input was modified")
	}
}

func TestAffineFromMat4(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(4, 5, 6))
	a := AffineFromMat4(m)
	l, off := splitAffine(a)
	if off != (mgl32.Vec3{1, 2, 3}) {
		t.Fatalf("translation %v", off)
	}
	if l != mgl32.Diag3(mgl32.Vec3{4, 5, 6}) {
		t.Fatalf("linear %v", l)
	}
	if AffineFromRows([12]float32{4, 0, 0, 1, 0, 5, 0, 2, 0, 0, 6, 3}) != a {
		t.Fatal("row-major construction differs")
	}
}

func TestApplyAffineParallelMatchesSerial(t *testing.T) {
	g := randomGaussians(rand.New(rand.NewSource(6)), 3*minChunk+17)
	m := AffineFromMat4(mgl32.HomogRotate3DY(0.3).Mul4(mgl32.Scale3D(1, 2, 0.5)))

	serial, err := ApplyAffine(g, m, func(o *TransformOptions) { o.Workers = 1 })
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := ApplyAffine(g, m, func(o *TransformOptions) { o.Workers = 4 })
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(serial, parallel); diff != "" {
		t.Fatalf("parallel result differs (-serial +parallel):\n%s", diff)
	}
}

func TestApplyAffineMismatchedArrays(t *testing.T) {
	g := &Gaussians3D{
		Means:       make([]mgl32.Vec3, 2),
		Scales:      make([]mgl32.Vec3, 1),
		Quaternions: make([]mgl32.Quat, 2),
		Colors:      make([]mgl32.Vec3, 2),
		Opacities:   make([]float32, 2),
	}
	if _, err := ApplyAffine(g, IdentityAffine()); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
	if _, err := Unproject(g, NewIntrinsics(2, 4, 2), DefaultExtrinsics(), 4, 2); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput from Unproject, got %v", err)
	}
}

func TestUnproject(t *testing.T) {
	g := NewGaussians3DWithCapacity(1)
	g.Append(mgl32.Vec3{0.5, 1, 3}, mgl32.Vec3{1, 1, 1}, mgl32.QuatIdent(), mgl32.Vec3{1, 0, 0}, 0.9)

	out, err := Unproject(g, NewIntrinsics(2, 4, 2), DefaultExtrinsics(), 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(mgl32.Vec3{0.5, 0.5, 3}, out.Means[0], cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Fatalf("mean (-want +got):\n%s", diff)
	}
	got := sortedScales(out.Scales[0])
	want := []float64{0.5, 1, 1}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-4)); diff != "" {
		t.Fatalf("scales (-want +got):\n%s", diff)
	}

	_, err = Unproject(g, NewIntrinsicsFromParams(0, 0, 0, 0), DefaultExtrinsics(), 4, 2)
	if !errors.Is(err, ErrSingularTransform) {
		t.Fatalf("expected ErrSingularTransform, got %v", err)
	}
}
