package splat

import "github.com/go-gl/mathgl/mgl32"

// RotationFromQuaternion returns the rotation matrix of q (w, x, y, z), normalizing q first.
// A zero quaternion yields the identity.
func RotationFromQuaternion(q mgl32.Quat) mgl32.Mat3 {
	n := q.Len()
	if n == 0 {
		return mgl32.Ident3()
	}
	w, x, y, z := q.W/n, q.V[0]/n, q.V[1]/n, q.V[2]/n

	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	// Column-major.
	return mgl32.Mat3{
		1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy),
		2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx),
		2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy),
	}
}

// QuaternionFromRotation converts a proper rotation matrix to a quaternion (w, x, y, z).
//
// The branch is picked by the trace and the dominant diagonal entry so that s is never close to zero.
func QuaternionFromRotation(m mgl32.Mat3) mgl32.Quat {
	m00, m11, m22 := m.At(0, 0), m.At(1, 1), m.At(2, 2)
	trace := m00 + m11 + m22

	var w, x, y, z float32

	switch {
	case trace > 0:
		s := sqrtf(trace+1) * 2
		w = 0.25 * s
		x = (m.At(2, 1) - m.At(1, 2)) / s
		y = (m.At(0, 2) - m.At(2, 0)) / s
		z = (m.At(1, 0) - m.At(0, 1)) / s
	case m00 > m11 && m00 > m22:
		s := sqrtf(1+m00-m11-m22) * 2
		w = (m.At(2, 1) - m.At(1, 2)) / s
		x = 0.25 * s
		y = (m.At(0, 1) + m.At(1, 0)) / s
		z = (m.At(0, 2) + m.At(2, 0)) / s
	case m11 > m22:
		s := sqrtf(1+m11-m00-m22) * 2
		w = (m.At(0, 2) - m.At(2, 0)) / s
		x = (m.At(0, 1) + m.At(1, 0)) / s
		y = 0.25 * s
		z = (m.At(1, 2) + m.At(2, 1)) / s
	default:
		s := sqrtf(1+m22-m00-m11) * 2
		w = (m.At(1, 0) - m.At(0, 1)) / s
		x = (m.At(0, 2) + m.At(2, 0)) / s
		y = (m.At(1, 2) + m.At(2, 1)) / s
		z = 0.25 * s
	}

	return mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
}
