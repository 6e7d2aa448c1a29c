package splat

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TransformOptions controls affine application.
type TransformOptions struct {
	// Workers limits goroutines used for per-Gaussian work, defaults to GOMAXPROCS.
	// Values <= 1 run on the calling goroutine.
	Workers int
}

// IdentityAffine returns the identity 3x4 affine map.
func IdentityAffine() mgl32.Mat3x4 {
	return mgl32.Mat3x4{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		0, 0, 0,
	}
}

// AffineFromMat4 returns the upper 3x4 block of a homogeneous matrix.
func AffineFromMat4(m mgl32.Mat4) mgl32.Mat3x4 {
	var a mgl32.Mat3x4
	for c := 0; c < 4; c++ {
		for r := 0; r < 3; r++ {
			a[c*3+r] = m[c*4+r]
		}
	}
	return a
}

// AffineFromRows builds an affine map from 12 row-major values.
func AffineFromRows(v [12]float32) mgl32.Mat3x4 {
	var a mgl32.Mat3x4
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			a[c*3+r] = v[r*4+c]
		}
	}
	return a
}

func splitAffine(m mgl32.Mat3x4) (mgl32.Mat3, mgl32.Vec3) {
	var l mgl32.Mat3
	copy(l[:], m[:9])
	return l, mgl32.Vec3{m[9], m[10], m[11]}
}

// ApplyAffine returns a new scene with m applied.
//
// Means are mapped as L*x + t. Covariances are conjugated as L*S*L^T and factored again, since
// quaternion and scale do not transform linearly under a general affine map. Colors and opacities are copied.
// Mismatched array lengths return ErrMalformedInput.
func ApplyAffine(g *Gaussians3D, m mgl32.Mat3x4, opts ...func(o *TransformOptions)) (*Gaussians3D, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	opt := TransformOptions{Workers: defaultWorkers()}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}

	n := g.Len()
	out := &Gaussians3D{
		Means:       make([]mgl32.Vec3, n),
		Scales:      make([]mgl32.Vec3, n),
		Quaternions: make([]mgl32.Quat, n),
		Colors:      append([]mgl32.Vec3(nil), g.Colors...),
		Opacities:   append([]float32(nil), g.Opacities...),
	}

	linear, offset := splitAffine(m)
	linearT := linear.Transpose()

	err := parallelRange(n, opt.Workers, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			out.Means[i] = linear.Mul3x1(g.Means[i]).Add(offset)

			cov := ComposeCovariance(g.Quaternions[i], g.Scales[i])
			out.Quaternions[i], out.Scales[i] = DecomposeCovariance(linear.Mul3(cov).Mul3(linearT))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Unproject maps Gaussians from normalized device coordinates of a width x height image into world space.
func Unproject(g *Gaussians3D, intr CameraIntrinsics, ext CameraExtrinsics, width, height int, opts ...func(o *TransformOptions)) (*Gaussians3D, error) {
	u, err := UnprojectionMatrix(ext, intr, width, height)
	if err != nil {
		return nil, err
	}
	return ApplyAffine(g, AffineFromMat4(u), opts...)
}
