package splat

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder.
	_ "image/png"  // Register PNG decoder.
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp" // Register BMP decoder.
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // Register TIFF decoder.
	_ "golang.org/x/image/webp" // Register WebP decoder.
)

// LoadedImage is an RGB image with channels normalized to [0, 1] and an estimated focal length.
type LoadedImage struct {
	// Pixels are interleaved RGB, row-major.
	Pixels        []float32
	Width         int
	Height        int
	FocalLengthPx float32
}

// LoadImage reads and decodes an image file.
func LoadImage(path string) (*LoadedImage, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	img, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// DecodeImage decodes JPEG, PNG, TIFF, WebP or BMP data.
//
// The focal length comes from EXIF when available, otherwise it defaults to 1.2 * width.
func DecodeImage(data []byte) (*LoadedImage, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, errors.New("invalid image dimensions")
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	out := &LoadedImage{
		Pixels: make([]float32, w*h*3),
		Width:  w,
		Height: h,
	}
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride:]
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			out.Pixels[i] = float32(row[x*4]) / 255.0
			out.Pixels[i+1] = float32(row[x*4+1]) / 255.0
			out.Pixels[i+2] = float32(row[x*4+2]) / 255.0
		}
	}

	if f, ok := FocalLengthFromEXIF(bytes.NewReader(data), w, h); ok {
		out.FocalLengthPx = f
	} else {
		out.FocalLengthPx = float32(w) * defaultFocalLengthMultiplier
	}
	return out, nil
}

// Resize returns a bilinearly resampled copy, the focal length is scaled with the width.
func (m *LoadedImage) Resize(width, height int) *LoadedImage {
	src := image.NewRGBA64(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			i := (y*m.Width + x) * 3
			o := src.PixOffset(x, y)
			putU16(src.Pix[o:], toU16(m.Pixels[i]))
			putU16(src.Pix[o+2:], toU16(m.Pixels[i+1]))
			putU16(src.Pix[o+4:], toU16(m.Pixels[i+2]))
			putU16(src.Pix[o+6:], 0xFFFF)
		}
	}

	dst := resize.Resize(uint(width), uint(height), src, resize.Bilinear)

	out := &LoadedImage{
		Pixels:        make([]float32, width*height*3),
		Width:         width,
		Height:        height,
		FocalLengthPx: m.FocalLengthPx * float32(width) / float32(m.Width),
	}
	db := dst.Bounds()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := dst.At(db.Min.X+x, db.Min.Y+y).RGBA()
			i := (y*width + x) * 3
			out.Pixels[i] = float32(r) / 65535.0
			out.Pixels[i+1] = float32(g) / 65535.0
			out.Pixels[i+2] = float32(b) / 65535.0
		}
	}
	return out
}

// FlipVertical returns a copy mirrored top to bottom.
func (m *LoadedImage) FlipVertical() *LoadedImage {
	out := &LoadedImage{Pixels: make([]float32, len(m.Pixels)), Width: m.Width, Height: m.Height, FocalLengthPx: m.FocalLengthPx}
	rowSize := m.Width * 3
	for y := 0; y < m.Height; y++ {
		copy(out.Pixels[(m.Height-1-y)*rowSize:(m.Height-y)*rowSize], m.Pixels[y*rowSize:(y+1)*rowSize])
	}
	return out
}

// FlipHorizontal returns a copy mirrored left to right.
func (m *LoadedImage) FlipHorizontal() *LoadedImage {
	out := &LoadedImage{Pixels: make([]float32, len(m.Pixels)), Width: m.Width, Height: m.Height, FocalLengthPx: m.FocalLengthPx}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			src := (y*m.Width + x) * 3
			dst := (y*m.Width + (m.Width - 1 - x)) * 3
			copy(out.Pixels[dst:dst+3], m.Pixels[src:src+3])
		}
	}
	return out
}

// CHW returns pixels in planar channel-first layout.
func (m *LoadedImage) CHW() []float32 {
	hw := m.Width * m.Height
	out := make([]float32, 3*hw)
	for i := 0; i < hw; i++ {
		out[i] = m.Pixels[i*3]
		out[hw+i] = m.Pixels[i*3+1]
		out[2*hw+i] = m.Pixels[i*3+2]
	}
	return out
}

func toU16(v float32) uint16 {
	return uint16(clampf(v, 0, 1)*65535.0 + 0.5)
}

func putU16(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}
