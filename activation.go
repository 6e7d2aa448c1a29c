package splat

// Sigmoid is the logistic function.
func Sigmoid(x float32) float32 {
	return 1.0 / (1.0 + expf(-x))
}

// InverseSigmoid returns the logit of x. Inputs at 0 or 1 produce infinities,
// callers clamp before encoding.
func InverseSigmoid(x float32) float32 {
	return logf(x / (1.0 - x))
}
