package splat

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// NewGaussians3D builds a scene from parallel arrays, rejecting mismatched lengths.
func NewGaussians3D(means, scales []mgl32.Vec3, quats []mgl32.Quat, colors []mgl32.Vec3, opacities []float32) (*Gaussians3D, error) {
	g := &Gaussians3D{
		Means:       means,
		Scales:      scales,
		Quaternions: quats,
		Colors:      colors,
		Opacities:   opacities,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// NewGaussians3DWithCapacity returns an empty scene with preallocated arrays.
func NewGaussians3DWithCapacity(n int) *Gaussians3D {
	return &Gaussians3D{
		Means:       make([]mgl32.Vec3, 0, n),
		Scales:      make([]mgl32.Vec3, 0, n),
		Quaternions: make([]mgl32.Quat, 0, n),
		Colors:      make([]mgl32.Vec3, 0, n),
		Opacities:   make([]float32, 0, n),
	}
}

func newGaussians3DSized(n int) *Gaussians3D {
	return &Gaussians3D{
		Means:       make([]mgl32.Vec3, n),
		Scales:      make([]mgl32.Vec3, n),
		Quaternions: make([]mgl32.Quat, n),
		Colors:      make([]mgl32.Vec3, n),
		Opacities:   make([]float32, n),
	}
}

// Validate checks that all arrays have equal length.
func (g *Gaussians3D) Validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil gaussians", ErrMalformedInput)
	}
	n := len(g.Means)
	if len(g.Scales) != n || len(g.Quaternions) != n || len(g.Colors) != n || len(g.Opacities) != n {
		return fmt.Errorf("%w: array lengths differ: means %d, scales %d, quaternions %d, colors %d, opacities %d",
			ErrMalformedInput, n, len(g.Scales), len(g.Quaternions), len(g.Colors), len(g.Opacities))
	}
	return nil
}

// Len returns the number of Gaussians.
func (g *Gaussians3D) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Means)
}

// IsEmpty reports whether the scene has no Gaussians.
func (g *Gaussians3D) IsEmpty() bool {
	return g.Len() == 0
}

// Append adds a single Gaussian.
func (g *Gaussians3D) Append(mean, scale mgl32.Vec3, q mgl32.Quat, color mgl32.Vec3, opacity float32) {
	g.Means = append(g.Means, mean)
	g.Scales = append(g.Scales, scale)
	g.Quaternions = append(g.Quaternions, q)
	g.Colors = append(g.Colors, color)
	g.Opacities = append(g.Opacities, opacity)
}

// Clone returns a deep copy.
func (g *Gaussians3D) Clone() *Gaussians3D {
	return &Gaussians3D{
		Means:       append([]mgl32.Vec3(nil), g.Means...),
		Scales:      append([]mgl32.Vec3(nil), g.Scales...),
		Quaternions: append([]mgl32.Quat(nil), g.Quaternions...),
		Colors:      append([]mgl32.Vec3(nil), g.Colors...),
		Opacities:   append([]float32(nil), g.Opacities...),
	}
}

// Covariance returns the covariance matrix of the i-th Gaussian.
func (g *Gaussians3D) Covariance(i int) mgl32.Mat3 {
	return ComposeCovariance(g.Quaternions[i], g.Scales[i])
}
