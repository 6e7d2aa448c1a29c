package splat

import "errors"

var (
	// ErrInvalidScene is returned when writing a scene without Gaussians.
	ErrInvalidScene = errors.New("invalid scene")
	// ErrSingularTransform is returned when the unprojection matrix is not invertible.
	ErrSingularTransform = errors.New("singular transform")
	// ErrMalformedInput is returned for inconsistent arrays, tensors or files.
	ErrMalformedInput = errors.New("malformed input")
)
