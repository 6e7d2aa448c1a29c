package splat

import (
	"fmt"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
)

// PredictionTensors are raw model outputs in prediction space, one row per Gaussian.
type PredictionTensors struct {
	Means       *Tensor // [1, N, 3]
	Scales      *Tensor // [1, N, 3]
	Quaternions *Tensor // [1, N, 4], w x y z
	Colors      *Tensor // [1, N, 3]
	Opacities   *Tensor // [1, N]
}

// PredictionFromTensors picks model outputs by name.
func PredictionFromTensors(tensors map[string]*Tensor) (*PredictionTensors, error) {
	p := &PredictionTensors{}
	for name, dst := range map[string]**Tensor{
		tensorMeans:       &p.Means,
		tensorScales:      &p.Scales,
		tensorQuaternions: &p.Quaternions,
		tensorColors:      &p.Colors,
		tensorOpacities:   &p.Opacities,
	} {
		t, ok := tensors[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing output tensor %s", ErrMalformedInput, name)
		}
		*dst = t
	}
	return p, nil
}

// Extractor converts raw prediction tensors into Gaussians.
type Extractor interface {
	Extract(p *PredictionTensors) (*Gaussians3D, error)
}

// NewExtractor picks the parallel extractor when more than one worker is available.
// Zero workers means one per CPU.
func NewExtractor(workers int) Extractor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > 1 {
		return NewParallelExtractor(workers)
	}
	return NewSerialExtractor()
}

// NewSerialExtractor returns an extractor running on the calling goroutine.
func NewSerialExtractor() Extractor {
	return serialExtractor{}
}

// NewParallelExtractor returns an extractor splitting rows across workers goroutines.
func NewParallelExtractor(workers int) Extractor {
	return parallelExtractor{workers: workers}
}

type serialExtractor struct{}

func (serialExtractor) Extract(p *PredictionTensors) (*Gaussians3D, error) {
	v, err := newPredictionView(p)
	if err != nil {
		return nil, err
	}
	g := newGaussians3DSized(v.n)
	v.extract(g, 0, v.n)
	return g, nil
}

type parallelExtractor struct {
	workers int
}

func (e parallelExtractor) Extract(p *PredictionTensors) (*Gaussians3D, error) {
	v, err := newPredictionView(p)
	if err != nil {
		return nil, err
	}
	g := newGaussians3DSized(v.n)
	err = parallelRange(v.n, e.workers, func(lo, hi int) error {
		v.extract(g, lo, hi)
		return nil
	})
	return g, err
}

type rowView struct {
	t                     *Tensor
	rowStride, chanStride int
}

func (r rowView) at(i, c int) float32 {
	return r.t.At(i*r.rowStride + c*r.chanStride)
}

type predictionView struct {
	n                                  int
	means, scales, quats, colors, opac rowView
}

func newPredictionView(p *PredictionTensors) (*predictionView, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil prediction", ErrMalformedInput)
	}

	v := &predictionView{n: -1}
	for _, item := range []struct {
		name     string
		t        *Tensor
		channels int
		dst      *rowView
	}{
		{tensorMeans, p.Means, 3, &v.means},
		{tensorScales, p.Scales, 3, &v.scales},
		{tensorQuaternions, p.Quaternions, 4, &v.quats},
		{tensorColors, p.Colors, 3, &v.colors},
		{tensorOpacities, p.Opacities, 1, &v.opac},
	} {
		if item.t == nil {
			return nil, fmt.Errorf("%w: missing %s", ErrMalformedInput, item.name)
		}
		if err := item.t.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", item.name, err)
		}
		n, rs, cs, err := item.t.rows(item.channels)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", item.name, err)
		}
		if v.n >= 0 && n != v.n {
			return nil, fmt.Errorf("%w: %s has %d rows, expected %d", ErrMalformedInput, item.name, n, v.n)
		}
		v.n = n
		*item.dst = rowView{t: item.t, rowStride: rs, chanStride: cs}
	}
	return v, nil
}

func (v *predictionView) extract(g *Gaussians3D, lo, hi int) {
	for i := lo; i < hi; i++ {
		g.Means[i] = mgl32.Vec3{v.means.at(i, 0), v.means.at(i, 1), v.means.at(i, 2)}
		g.Scales[i] = mgl32.Vec3{v.scales.at(i, 0), v.scales.at(i, 1), v.scales.at(i, 2)}
		g.Quaternions[i] = mgl32.Quat{
			W: v.quats.at(i, 0),
			V: mgl32.Vec3{v.quats.at(i, 1), v.quats.at(i, 2), v.quats.at(i, 3)},
		}
		g.Colors[i] = mgl32.Vec3{v.colors.at(i, 0), v.colors.at(i, 1), v.colors.at(i, 2)}
		g.Opacities[i] = v.opac.at(i, 0)
	}
}
