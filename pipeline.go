package splat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// GeneratorOptions controls splat generation.
type GeneratorOptions struct {
	// Extractor converts model outputs, defaults to NewExtractor(Workers).
	Extractor Extractor
	// ColorSpace of the written file, defaults to ColorSpaceSRGB.
	ColorSpace ColorSpace
	// Workers limits goroutines for per-Gaussian work, 0 means GOMAXPROCS.
	Workers int
	Logger  *zap.SugaredLogger
}

// Generator turns images into Gaussian splat scenes.
type Generator struct {
	predictor Predictor
	opt       GeneratorOptions
}

// NewGenerator creates a generator using predictor for inference.
func NewGenerator(predictor Predictor, opts ...func(o *GeneratorOptions)) (*Generator, error) {
	if predictor == nil {
		return nil, errors.New("predictor is nil")
	}

	opt := GeneratorOptions{ColorSpace: ColorSpaceSRGB}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}
	if opt.Workers <= 0 {
		opt.Workers = defaultWorkers()
	}
	if opt.Extractor == nil {
		opt.Extractor = NewExtractor(opt.Workers)
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop().Sugar()
	}

	return &Generator{predictor: predictor, opt: opt}, nil
}

// Predict runs the model on img and returns Gaussians in camera space.
func (g *Generator) Predict(ctx context.Context, img *LoadedImage) (*Gaussians3D, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrMalformedInput)
	}

	prepared := img.Resize(InternalResolution, InternalResolution).FlipVertical().FlipHorizontal()
	in := &ModelInput{
		Pixels:          prepared.CHW(),
		Width:           prepared.Width,
		Height:          prepared.Height,
		DisparityFactor: img.FocalLengthPx / float32(img.Width),
	}

	start := time.Now()
	tensors, err := g.predictor.Predict(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	g.opt.Logger.Debugw("prediction done", "elapsed", time.Since(start), "disparity_factor", in.DisparityFactor)

	ndc, err := g.opt.Extractor.Extract(tensors)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	scaleX := float32(InternalResolution) / float32(img.Width)
	scaleY := float32(InternalResolution) / float32(img.Height)
	intr := NewIntrinsicsFromParams(
		img.FocalLengthPx*scaleX,
		img.FocalLengthPx*scaleY,
		InternalResolution/2,
		InternalResolution/2,
	)

	start = time.Now()
	out, err := Unproject(ndc, intr, DefaultExtrinsics(), InternalResolution, InternalResolution, func(o *TransformOptions) {
		o.Workers = g.opt.Workers
	})
	if err != nil {
		return nil, fmt.Errorf("unproject: %w", err)
	}
	g.opt.Logger.Debugw("unprojected gaussians", "count", out.Len(), "elapsed", time.Since(start))

	return out, nil
}

// Generate loads an image, predicts Gaussians and saves them to outPath.
func (g *Generator) Generate(ctx context.Context, imagePath, outPath string) error {
	img, err := LoadImage(imagePath)
	if err != nil {
		return err
	}
	g.opt.Logger.Infow("image loaded", "path", imagePath, "width", img.Width, "height", img.Height,
		"focal_px", img.FocalLengthPx)

	gaussians, err := g.Predict(ctx, img)
	if err != nil {
		return err
	}

	meta := NewSceneMetadata(img.FocalLengthPx, img.Width, img.Height)
	if err := SavePLY(outPath, gaussians, meta, func(o *WriteOptions) {
		o.ColorSpace = g.opt.ColorSpace
	}); err != nil {
		return err
	}
	g.opt.Logger.Infow("scene saved", "path", outPath, "gaussians", gaussians.Len())
	return nil
}
