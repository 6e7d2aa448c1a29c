package splat

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DType is a tensor element type.
type DType string

const (
	DTypeF16 DType = "F16"
	DTypeF32 DType = "F32"
)

func (d DType) size() int {
	switch d {
	case DTypeF16:
		return 2
	case DTypeF32:
		return 4
	default:
		return 0
	}
}

// Tensor is a dense little endian array with element strides.
type Tensor struct {
	DType   DType
	Shape   []int
	Strides []int // in elements
	Data    []byte
}

// NewTensorF32 builds a contiguous float32 tensor.
func NewTensorF32(shape []int, values []float32) *Tensor {
	data := make([]byte, 0, len(values)*4)
	for _, v := range values {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
	}
	return &Tensor{DType: DTypeF32, Shape: shape, Strides: contiguousStrides(shape), Data: data}
}

// NewTensorF16 builds a contiguous half precision tensor from raw half float bits.
func NewTensorF16(shape []int, bits []uint16) *Tensor {
	data := make([]byte, 0, len(bits)*2)
	for _, v := range bits {
		data = binary.LittleEndian.AppendUint16(data, v)
	}
	return &Tensor{DType: DTypeF16, Shape: shape, Strides: contiguousStrides(shape), Data: data}
}

func contiguousStrides(shape []int) []int {
	strides := make([]int, len(shape))
	s := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = s
		s *= shape[i]
	}
	return strides
}

// Len returns the number of elements.
func (t *Tensor) Len() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// Validate checks dtype, strides and that the data covers every addressed element.
func (t *Tensor) Validate() error {
	size := t.DType.size()
	if size == 0 {
		return fmt.Errorf("%w: unsupported dtype %q", ErrMalformedInput, t.DType)
	}
	if len(t.Strides) != len(t.Shape) {
		return fmt.Errorf("%w: %d strides for %d dims", ErrMalformedInput, len(t.Strides), len(t.Shape))
	}
	last := 0
	for i, d := range t.Shape {
		if d < 0 || t.Strides[i] < 0 {
			return fmt.Errorf("%w: negative shape or stride", ErrMalformedInput)
		}
		if d == 0 {
			return nil
		}
		last += (d - 1) * t.Strides[i]
	}
	if (last+1)*size > len(t.Data) {
		return fmt.Errorf("%w: tensor data has %d bytes, need %d", ErrMalformedInput, len(t.Data), (last+1)*size)
	}
	return nil
}

// At returns the element at a flat element offset.
func (t *Tensor) At(offset int) float32 {
	switch t.DType {
	case DTypeF16:
		return halfToFloat32(binary.LittleEndian.Uint16(t.Data[offset*2:]))
	default:
		return math.Float32frombits(binary.LittleEndian.Uint32(t.Data[offset*4:]))
	}
}

// rows interprets the tensor as n rows of channels values, allowing leading unit dimensions.
// A single channel may also be implied by a trailing row dimension, as in [1, N].
func (t *Tensor) rows(channels int) (n, rowStride, chanStride int, err error) {
	shape, strides := t.Shape, t.Strides
	var lead []int
	switch {
	case channels == 1 && len(shape) >= 1 && (len(shape) == 1 || shape[len(shape)-1] != 1):
		n, rowStride = shape[len(shape)-1], strides[len(shape)-1]
		lead = shape[:len(shape)-1]
	case len(shape) >= 2 && shape[len(shape)-1] == channels:
		n, rowStride = shape[len(shape)-2], strides[len(shape)-2]
		chanStride = strides[len(shape)-1]
		lead = shape[:len(shape)-2]
	default:
		return 0, 0, 0, fmt.Errorf("%w: shape %v does not hold %d channels", ErrMalformedInput, shape, channels)
	}
	for _, d := range lead {
		if d != 1 {
			return 0, 0, 0, fmt.Errorf("%w: batched shape %v", ErrMalformedInput, shape)
		}
	}
	return n, rowStride, chanStride, nil
}

func halfToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := int32(h>>10) & 0x1F
	mant := int32(h & 0x03FF)

	if exp == 0 {
		if mant == 0 {
			return math.Float32frombits(sign << 31)
		}
		for mant&0x0400 == 0 {
			mant <<= 1
			exp--
		}
		exp++
		mant &= 0x03FF
	} else if exp == 31 {
		if mant == 0 {
			return math.Float32frombits((sign << 31) | 0x7F800000)
		}
		return math.Float32frombits((sign << 31) | 0x7F800000 | (uint32(mant) << 13))
	}

	exp = exp + (127 - 15)
	mant <<= 13
	bits := (sign << 31) | (uint32(exp) << 23) | uint32(mant)
	return math.Float32frombits(bits)
}
