package splat

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraIntrinsics embeds focal lengths and principal point in a homogeneous 4x4 matrix:
//
//	fx  0 cx 0
//	 0 fy cy 0
//	 0  0  1 0
//	 0  0  0 1
type CameraIntrinsics struct {
	Matrix mgl32.Mat4
}

// DefaultIntrinsics returns identity intrinsics.
func DefaultIntrinsics() CameraIntrinsics {
	return CameraIntrinsics{Matrix: mgl32.Ident4()}
}

// NewIntrinsics builds intrinsics with a square focal length and the principal point at the image center.
func NewIntrinsics(focalPx float32, width, height int) CameraIntrinsics {
	return NewIntrinsicsFromParams(focalPx, focalPx, float32(width)/2, float32(height)/2)
}

// NewIntrinsicsFromParams builds intrinsics from explicit parameters.
func NewIntrinsicsFromParams(fx, fy, cx, cy float32) CameraIntrinsics {
	m := mgl32.Ident4()
	m[0] = fx
	m[5] = fy
	m[8] = cx
	m[9] = cy
	return CameraIntrinsics{Matrix: m}
}

// Fx is the horizontal focal length in pixels.
func (c CameraIntrinsics) Fx() float32 { return c.Matrix.At(0, 0) }

// Fy is the vertical focal length in pixels.
func (c CameraIntrinsics) Fy() float32 { return c.Matrix.At(1, 1) }

// Cx is the horizontal principal point in pixels.
func (c CameraIntrinsics) Cx() float32 { return c.Matrix.At(0, 2) }

// Cy is the vertical principal point in pixels.
func (c CameraIntrinsics) Cy() float32 { return c.Matrix.At(1, 2) }

// Scaled rescales intrinsics from one image resolution to another.
func (c CameraIntrinsics) Scaled(toWidth, toHeight, fromWidth, fromHeight int) CameraIntrinsics {
	sx := float32(toWidth) / float32(fromWidth)
	sy := float32(toHeight) / float32(fromHeight)
	return NewIntrinsicsFromParams(c.Fx()*sx, c.Fy()*sy, c.Cx()*sx, c.Cy()*sy)
}

// Mat3RowMajor returns the 3x3 camera matrix in row-major order.
func (c CameraIntrinsics) Mat3RowMajor() [9]float32 {
	return [9]float32{
		c.Fx(), 0, c.Cx(),
		0, c.Fy(), c.Cy(),
		0, 0, 1,
	}
}

// CameraExtrinsics is a world-to-camera rigid transform.
type CameraExtrinsics struct {
	Matrix mgl32.Mat4
}

// DefaultExtrinsics returns the identity, world and camera frames coincide.
func DefaultExtrinsics() CameraExtrinsics {
	return CameraExtrinsics{Matrix: mgl32.Ident4()}
}

// NewExtrinsics builds extrinsics from rotation and translation.
func NewExtrinsics(rotation mgl32.Mat3, translation mgl32.Vec3) CameraExtrinsics {
	m := rotation.Mat4()
	m[12] = translation[0]
	m[13] = translation[1]
	m[14] = translation[2]
	return CameraExtrinsics{Matrix: m}
}

// Rotation returns the upper-left 3x3 block.
func (e CameraExtrinsics) Rotation() mgl32.Mat3 {
	return e.Matrix.Mat3()
}

// Translation returns the translation column.
func (e CameraExtrinsics) Translation() mgl32.Vec3 {
	return mgl32.Vec3{e.Matrix[12], e.Matrix[13], e.Matrix[14]}
}

// CameraPosition returns the camera center in world space, -R^T t.
func (e CameraExtrinsics) CameraPosition() mgl32.Vec3 {
	return e.Rotation().Transpose().Mul3x1(e.Translation()).Mul(-1)
}

// RowMajor returns the 4x4 matrix in row-major order.
func (e CameraExtrinsics) RowMajor() [16]float32 {
	return rowMajor4(e.Matrix)
}

// NDCMatrix maps pixel coordinates to normalized device coordinates in [-1, 1].
func NDCMatrix(width, height int) mgl32.Mat4 {
	m := mgl32.Ident4()
	m[0] = 2 / float32(width)
	m[5] = 2 / float32(height)
	m[8] = -1
	m[9] = -1
	return m
}

// UnprojectionMatrix returns (NDC * K * E)^-1, the map from normalized device coordinates
// to world space.
func UnprojectionMatrix(ext CameraExtrinsics, intr CameraIntrinsics, width, height int) (mgl32.Mat4, error) {
	if width <= 0 || height <= 0 {
		return mgl32.Mat4{}, fmt.Errorf("%w: image size %dx%d", ErrSingularTransform, width, height)
	}
	proj := NDCMatrix(width, height).Mul4(intr.Matrix).Mul4(ext.Matrix)
	det := proj.Det()
	if det == 0 || math.IsNaN(float64(det)) || math.IsInf(float64(det), 0) {
		return mgl32.Mat4{}, fmt.Errorf("%w: projection determinant %v", ErrSingularTransform, det)
	}
	return proj.Inv(), nil
}

func rowMajor4(m mgl32.Mat4) [16]float32 {
	var out [16]float32
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r*4+c] = m.At(r, c)
		}
	}
	return out
}
