package splat

import "math"

// InternalResolution is the square working resolution of the prediction model.
const InternalResolution = 1536

const (
	defaultFocalLengthMultiplier = 1.2
	filmWidthMM                  = 36.0
	filmHeightMM                 = 24.0
	sensorWidthMM                = 24.0
)

const (
	minOpacity = 1e-6
	maxOpacity = 1 - 1e-6
	minScale   = 1e-8

	disparityLowPercentile  = 0.1
	disparityHighPercentile = 0.9
)

// shC0 is the degree-0 spherical harmonics basis constant.
var shC0 = float32(math.Sqrt(1.0 / (4.0 * math.Pi)))

var plyVersion = [3]uint8{1, 5, 0}

const (
	tensorMeans       = "mean_vectors"
	tensorScales      = "singular_values"
	tensorQuaternions = "quaternions"
	tensorColors      = "colors"
	tensorOpacities   = "opacities"
)
