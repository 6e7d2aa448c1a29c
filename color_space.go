package splat

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceLinear:
		return "linear"
	case ColorSpaceSRGB:
		return "srgb"
	default:
		return fmt.Sprintf("colorspace(%d)", uint8(c))
	}
}

// ParseColorSpace parses "linear" or "srgb".
func ParseColorSpace(s string) (ColorSpace, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "linear-rgb", "linearrgb":
		return ColorSpaceLinear, nil
	case "srgb", "":
		return ColorSpaceSRGB, nil
	default:
		return 0, fmt.Errorf("unknown color space %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c ColorSpace) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// RGBToSphericalHarmonics encodes a flat color as degree-0 spherical harmonics coefficients.
func RGBToSphericalHarmonics(rgb mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		(rgb[0] - 0.5) / shC0,
		(rgb[1] - 0.5) / shC0,
		(rgb[2] - 0.5) / shC0,
	}
}

// SphericalHarmonicsToRGB decodes degree-0 coefficients back to a color.
func SphericalHarmonicsToRGB(sh mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		sh[0]*shC0 + 0.5,
		sh[1]*shC0 + 0.5,
		sh[2]*shC0 + 0.5,
	}
}

// encodeColor converts a linear color to the stored SH coefficients for the color space.
func encodeColor(linear mgl32.Vec3, cs ColorSpace) mgl32.Vec3 {
	if cs == ColorSpaceSRGB {
		linear = LinearToSRGBVec(linear)
	}
	return RGBToSphericalHarmonics(linear)
}

func decodeColor(sh mgl32.Vec3, cs ColorSpace) mgl32.Vec3 {
	c := SphericalHarmonicsToRGB(sh)
	if cs == ColorSpaceSRGB {
		c = SRGBToLinearVec(c)
	}
	return c
}
