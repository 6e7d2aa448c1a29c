package splat

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

func logf(v float32) float32  { return float32(math.Log(float64(v))) }
func expf(v float32) float32  { return float32(math.Exp(float64(v))) }
func sqrtf(v float32) float32 { return float32(math.Sqrt(float64(v))) }

// LinearToSRGB applies the sRGB transfer function to a linear value.
func LinearToSRGB(v float32) float32 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*float32(math.Pow(float64(v), 1.0/2.4)) - 0.055
}

// SRGBToLinear is the inverse of LinearToSRGB.
func SRGBToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow(float64((v+0.055)/1.055), 2.4))
}

// LinearToSRGBVec converts each channel of a linear RGB color.
func LinearToSRGBVec(c mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{LinearToSRGB(c[0]), LinearToSRGB(c[1]), LinearToSRGB(c[2])}
}

// SRGBToLinearVec converts each channel of an sRGB color to linear.
func SRGBToLinearVec(c mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{SRGBToLinear(c[0]), SRGBToLinear(c[1]), SRGBToLinear(c[2])}
}

func clampf(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
