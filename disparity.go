package splat

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// DisparityPercentiles returns the 10th and 90th percentile of 1/z over the means.
// It returns zeros for an empty slice.
func DisparityPercentiles(means []mgl32.Vec3) (p10, p90 float32) {
	n := len(means)
	if n == 0 {
		return 0, 0
	}
	d := make([]float32, n)
	for i, m := range means {
		d[i] = 1 / m[2]
	}
	slices.Sort(d)

	lo := max(0, int(float32(n)*disparityLowPercentile))
	hi := min(n-1, int(float32(n)*disparityHighPercentile))
	return d[lo], d[hi]
}
