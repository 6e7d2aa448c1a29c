package splat

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type fakePredictor struct {
	tensors map[string]*Tensor
	input   *ModelInput
	err     error
}

func (f *fakePredictor) Predict(_ context.Context, in *ModelInput) (*PredictionTensors, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return PredictionFromTensors(f.tensors)
}

func ndcGaussians() *Gaussians3D {
	g := NewGaussians3DWithCapacity(2)
	g.Append(mgl32.Vec3{1.2, 1.6, 2}, mgl32.Vec3{0.1, 0.1, 0.1}, mgl32.QuatIdent(), mgl32.Vec3{0.5, 0.5, 0.5}, 0.9)
	g.Append(mgl32.Vec3{0, 0, 4}, mgl32.Vec3{0.2, 0.2, 0.2}, mgl32.QuatIdent(), mgl32.Vec3{0.1, 0.2, 0.3}, 0.4)
	return g
}

func TestGeneratorPredict(t *testing.T) {
	fp := &fakePredictor{tensors: predictionTensorsF32(ndcGaussians())}
	gen, err := NewGenerator(fp, func(o *GeneratorOptions) { o.Workers = 1 })
	if err != nil {
		t.Fatal(err)
	}

	img := &LoadedImage{Pixels: make([]float32, 8*6*3), Width: 8, Height: 6, FocalLengthPx: 9.6}
	out, err := gen.Predict(context.Background(), img)
	if err != nil {
		t.Fatal(err)
	}

	if fp.input.Width != InternalResolution || fp.input.Height != InternalResolution {
		t.Fatalf("model input %dx%d", fp.input.Width, fp.input.Height)
	}
	if len(fp.input.Pixels) != 3*InternalResolution*InternalResolution {
		t.Fatalf("model input has %d values", len(fp.input.Pixels))
	}
	if math.Abs(float64(fp.input.DisparityFactor-1.2)) > 1e-6 {
		t.Fatalf("disparity factor %v", fp.input.DisparityFactor)
	}

	// fx = 9.6 * 1536 / 8, fy = 9.6 * 1536 / 6, principal point at the center.
	if diff := cmp.Diff(mgl32.Vec3{0.5, 0.5, 2}, out.Means[0], cmpopts.EquateApprox(1e-5, 1e-6)); diff != "" {
		t.Fatalf("mean (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(mgl32.Vec3{0, 0, 4}, out.Means[1], cmpopts.EquateApprox(1e-5, 1e-6)); diff != "" {
		t.Fatalf("mean (-want +got):\n%s", diff)
	}
	if out.Opacities[1] != 0.4 {
		t.Fatalf("opacity %v", out.Opacities[1])
	}
}

func TestGeneratorPredictErrors(t *testing.T) {
	if _, err := NewGenerator(nil); err == nil {
		t.Fatal("expected error for nil predictor")
	}

	boom := errors.New("boom")
	gen, err := NewGenerator(&fakePredictor{err: boom})
	if err != nil {
		t.Fatal(err)
	}
	img := &LoadedImage{Pixels: make([]float32, 3), Width: 1, Height: 1, FocalLengthPx: 1.2}
	if _, err := gen.Predict(context.Background(), img); !errors.Is(err, boom) {
		t.Fatalf("expected predictor error, got %v", err)
	}
	if _, err := gen.Predict(context.Background(), &LoadedImage{}); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}

	img.FocalLengthPx = 0
	gen, err = NewGenerator(&fakePredictor{tensors: predictionTensorsF32(ndcGaussians())})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := gen.Predict(context.Background(), img); !errors.Is(err, ErrSingularTransform) {
		t.Fatalf("expected ErrSingularTransform, got %v", err)
	}
}

func TestGeneratorGenerate(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "photo.png")
	tensorsPath := filepath.Join(dir, "photo.safetensors")
	outPath := filepath.Join(dir, "photo.ply")

	if err := os.WriteFile(imagePath, testPNG(t, 8, 6), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tensorsPath, encodeSafetensors(t, predictionTensorsF32(ndcGaussians())), 0o600); err != nil {
		t.Fatal(err)
	}

	gen, err := NewGenerator(TensorFilePredictor{Path: tensorsPath}, func(o *GeneratorOptions) {
		o.ColorSpace = ColorSpaceLinear
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := gen.Generate(context.Background(), imagePath, outPath); err != nil {
		t.Fatal(err)
	}

	s, err := LoadPLY(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if s.Gaussians.Len() != 2 || s.ColorSpace != ColorSpaceLinear {
		t.Fatalf("unexpected scene: %d gaussians, color space %v", s.Gaussians.Len(), s.ColorSpace)
	}
	if s.Metadata.ImageWidth != 8 || s.Metadata.ImageHeight != 6 {
		t.Fatalf("image size %dx%d", s.Metadata.ImageWidth, s.Metadata.ImageHeight)
	}
	if fx := s.Metadata.Intrinsics.Fx(); math.Abs(float64(fx-9.6)) > 1e-5 {
		t.Fatalf("fx %v", fx)
	}
	if math.Abs(float64(s.Gaussians.Means[0][0]-0.5)) > 1e-5 {
		t.Fatalf("mean %v", s.Gaussians.Means[0])
	}
}

func TestTensorFilePredictorChecksInput(t *testing.T) {
	p := TensorFilePredictor{Path: "unused"}
	_, err := p.Predict(context.Background(), &ModelInput{Pixels: make([]float32, 5), Width: 2, Height: 2})
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Predict(ctx, &ModelInput{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
