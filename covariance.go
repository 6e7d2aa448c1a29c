package splat

import (
	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/mat"
)

// ComposeCovariance returns R(q) * diag(s^2) * R(q)^T.
func ComposeCovariance(q mgl32.Quat, s mgl32.Vec3) mgl32.Mat3 {
	r := RotationFromQuaternion(q)
	d := mgl32.Diag3(mgl32.Vec3{s[0] * s[0], s[1] * s[1], s[2] * s[2]})
	return r.Mul3(d).Mul3(r.Transpose())
}

// DecomposeCovariance factors a covariance matrix into a rotation quaternion and per-axis scales.
//
// The input is symmetrized before SVD. Scale ordering follows the singular values and is not tied to
// the original axes, quaternion sign is not canonicalized. Degenerate inputs never fail: a matrix the
// SVD cannot factor maps to the identity rotation with zero scales.
func DecomposeCovariance(cov mgl32.Mat3) (mgl32.Quat, mgl32.Vec3) {
	sym := mat.NewDense(3, 3, nil)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			sym.Set(r, c, 0.5*(float64(cov.At(r, c))+float64(cov.At(c, r))))
		}
	}

	var svd mat.SVD
	if !svd.Factorize(sym, mat.SVDFull) {
		return mgl32.QuatIdent(), mgl32.Vec3{}
	}

	var u mat.Dense
	svd.UTo(&u)
	values := svd.Values(nil)

	// SVD may return a reflection, flip the third axis to get a proper rotation.
	flip := 1.0
	if mat.Det(&u) < 0 {
		flip = -1
	}

	var rot mgl32.Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			v := u.At(r, c)
			if c == 2 {
				v *= flip
			}
			rot[c*3+r] = float32(v)
		}
	}

	scales := mgl32.Vec3{
		sqrtf(float32(max(values[0], 0))),
		sqrtf(float32(max(values[1], 0))),
		sqrtf(float32(max(values[2], 0))),
	}

	return QuaternionFromRotation(rot), scales
}
