package splat

import "github.com/go-gl/mathgl/mgl32"

// ColorSpace identifies the color convention of spherical harmonics coefficients in a scene file.
type ColorSpace uint8

const (
	// ColorSpaceLinear stores linear RGB, color_space byte 0.
	ColorSpaceLinear ColorSpace = iota
	// ColorSpaceSRGB stores sRGB encoded colors, color_space byte 1.
	ColorSpaceSRGB
)

// Gaussians3D stores N anisotropic Gaussians as parallel arrays.
// All arrays have equal length; an empty collection is valid.
type Gaussians3D struct {
	// Means are Gaussian centroids.
	Means []mgl32.Vec3
	// Scales are non-negative semi-axis lengths (singular values).
	Scales []mgl32.Vec3
	// Quaternions are unit rotations, sign is not canonicalized.
	Quaternions []mgl32.Quat
	// Colors are linear RGB, not clamped.
	Colors []mgl32.Vec3
	// Opacities are expected in (0, 1).
	Opacities []float32
}

// SceneMetadata describes the camera and frame stored alongside the Gaussians.
type SceneMetadata struct {
	Intrinsics  CameraIntrinsics
	Extrinsics  CameraExtrinsics
	ImageWidth  int
	ImageHeight int
}

// WriteOptions controls PLY encoding.
type WriteOptions struct {
	// ColorSpace selects the convention of stored color coefficients.
	// ColorSpaceSRGB converts linear colors to sRGB before encoding.
	ColorSpace ColorSpace
}

// Scene is a decoded PLY file.
type Scene struct {
	Gaussians  *Gaussians3D
	Metadata   SceneMetadata
	ColorSpace ColorSpace
	// Disparity holds the 10th and 90th percentile of 1/z.
	Disparity [2]float32
	Version   [3]uint8
	// FrameCount is the first value of the frame element.
	FrameCount int32
}
