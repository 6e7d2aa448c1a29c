package splat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

var vertexProperties = []string{
	"x", "y", "z",
	"f_dc_0", "f_dc_1", "f_dc_2",
	"opacity",
	"scale_0", "scale_1", "scale_2",
	"rot_0", "rot_1", "rot_2", "rot_3",
}

// NewSceneMetadata describes an image of the given size with a pinhole camera at the origin.
func NewSceneMetadata(focalPx float32, width, height int) SceneMetadata {
	return SceneMetadata{
		Intrinsics:  NewIntrinsics(focalPx, width, height),
		Extrinsics:  DefaultExtrinsics(),
		ImageWidth:  width,
		ImageHeight: height,
	}
}

func plyHeader(n int) string {
	var b bytes.Buffer
	b.WriteString("ply\n")
	b.WriteString("format binary_little_endian 1.0\n")
	b.WriteString("element vertex " + strconv.Itoa(n) + "\n")
	for _, p := range vertexProperties {
		b.WriteString("property float " + p + "\n")
	}
	b.WriteString("element extrinsic 16\nproperty float extrinsic\n")
	b.WriteString("element intrinsic 9\nproperty float intrinsic\n")
	b.WriteString("element image_size 2\nproperty uint image_size\n")
	b.WriteString("element frame 2\nproperty int frame\n")
	b.WriteString("element disparity 2\nproperty float disparity\n")
	b.WriteString("element color_space 1\nproperty uchar color_space\n")
	b.WriteString("element version 3\nproperty uchar version\n")
	b.WriteString("end_header\n")
	return b.String()
}

type plyBuffer struct {
	b []byte
}

func (p *plyBuffer) putFloat(v float32) {
	p.b = binary.LittleEndian.AppendUint32(p.b, math.Float32bits(v))
}

func (p *plyBuffer) putUint32(v uint32) {
	p.b = binary.LittleEndian.AppendUint32(p.b, v)
}

func (p *plyBuffer) putInt32(v int32) {
	p.b = binary.LittleEndian.AppendUint32(p.b, uint32(v))
}

func (p *plyBuffer) putByte(v uint8) {
	p.b = append(p.b, v)
}

// EncodePLY serializes a scene to the binary PLY layout.
func EncodePLY(g *Gaussians3D, meta SceneMetadata, opts ...func(o *WriteOptions)) ([]byte, error) {
	if g.IsEmpty() {
		return nil, fmt.Errorf("%w: no gaussians to save", ErrInvalidScene)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if meta.ImageWidth <= 0 || meta.ImageHeight <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrInvalidScene, meta.ImageWidth, meta.ImageHeight)
	}

	opt := WriteOptions{ColorSpace: ColorSpaceSRGB}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}

	n := g.Len()
	header := plyHeader(n)
	out := plyBuffer{b: make([]byte, 0, len(header)+n*len(vertexProperties)*4+128)}
	out.b = append(out.b, header...)

	for i := 0; i < n; i++ {
		mean := g.Means[i]
		s := g.Scales[i]
		q := g.Quaternions[i]
		sh := encodeColor(g.Colors[i], opt.ColorSpace)
		opacity := InverseSigmoid(clampf(g.Opacities[i], minOpacity, maxOpacity))

		out.putFloat(mean[0])
		out.putFloat(mean[1])
		out.putFloat(mean[2])
		out.putFloat(sh[0])
		out.putFloat(sh[1])
		out.putFloat(sh[2])
		out.putFloat(opacity)
		out.putFloat(logf(max(s[0], minScale)))
		out.putFloat(logf(max(s[1], minScale)))
		out.putFloat(logf(max(s[2], minScale)))
		out.putFloat(q.W)
		out.putFloat(q.V[0])
		out.putFloat(q.V[1])
		out.putFloat(q.V[2])
	}

	for _, v := range meta.Extrinsics.RowMajor() {
		out.putFloat(v)
	}
	for _, v := range meta.Intrinsics.Mat3RowMajor() {
		out.putFloat(v)
	}

	out.putUint32(uint32(meta.ImageWidth))
	out.putUint32(uint32(meta.ImageHeight))

	out.putInt32(1)
	out.putInt32(int32(n))

	p10, p90 := DisparityPercentiles(g.Means)
	out.putFloat(p10)
	out.putFloat(p90)

	out.putByte(uint8(opt.ColorSpace))

	for _, v := range plyVersion {
		out.putByte(v)
	}

	return out.b, nil
}

// WritePLY encodes a scene and writes it to w in a single call.
func WritePLY(w io.Writer, g *Gaussians3D, meta SceneMetadata, opts ...func(o *WriteOptions)) error {
	data, err := EncodePLY(g, meta, opts...)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// SavePLY writes a scene to a file at path.
func SavePLY(path string, g *Gaussians3D, meta SceneMetadata, opts ...func(o *WriteOptions)) (err error) {
	data, err := EncodePLY(g, meta, opts...)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
