package splat

import (
	"math"
	"testing"
)

func TestSigmoidInverse(t *testing.T) {
	for _, x := range []float32{0.1, 0.3, 0.5, 0.7, 0.9} {
		if got := Sigmoid(InverseSigmoid(x)); math.Abs(float64(got-x)) > 1e-5 {
			t.Fatalf("sigmoid(inverseSigmoid(%v)) = %v", x, got)
		}
	}
}

func TestInverseSigmoidClampedBounds(t *testing.T) {
	lo := InverseSigmoid(clampf(0, minOpacity, maxOpacity))
	hi := InverseSigmoid(clampf(1, minOpacity, maxOpacity))
	for _, v := range []float32{lo, hi} {
		if math.IsInf(float64(v), 0) || math.IsNaN(float64(v)) {
			t.Fatalf("clamped logit is not finite: %v", v)
		}
	}
	if lo >= 0 || hi <= 0 {
		t.Fatalf("unexpected logits %v %v", lo, hi)
	}
}
