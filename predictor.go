package splat

import (
	"context"
	"fmt"
)

// ModelInput is the prepared model input.
type ModelInput struct {
	// Pixels are planar RGB (3 x Height x Width).
	Pixels          []float32
	Width           int
	Height          int
	DisparityFactor float32
}

// Predictor runs Gaussian prediction for a prepared image.
type Predictor interface {
	Predict(ctx context.Context, in *ModelInput) (*PredictionTensors, error)
}

// TensorFilePredictor serves precomputed model outputs stored in a safetensors file.
type TensorFilePredictor struct {
	Path string
}

// Predict loads the tensors from disk, the input is only checked for shape.
func (p TensorFilePredictor) Predict(ctx context.Context, in *ModelInput) (*PredictionTensors, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in == nil || len(in.Pixels) != 3*in.Width*in.Height {
		return nil, fmt.Errorf("%w: model input does not match its size", ErrMalformedInput)
	}
	tensors, err := LoadSafetensors(p.Path)
	if err != nil {
		return nil, err
	}
	return PredictionFromTensors(tensors)
}
