package splat

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const maxSafetensorsHeader = 64 << 20

type safetensorsEntry struct {
	DType       string `json:"dtype"`
	Shape       []int  `json:"shape"`
	DataOffsets [2]int `json:"data_offsets"`
}

// ReadSafetensors parses a safetensors stream: a little endian u64 header size, a JSON header and
// a flat data section.
func ReadSafetensors(r io.Reader) (map[string]*Tensor, error) {
	var sizeBuf [8]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return nil, fmt.Errorf("read header size: %w", err)
	}
	size := binary.LittleEndian.Uint64(sizeBuf[:])
	if size == 0 || size > maxSafetensorsHeader {
		return nil, fmt.Errorf("%w: safetensors header size %d", ErrMalformedInput, size)
	}

	header := make([]byte, size)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(header, &raw); err != nil {
		return nil, fmt.Errorf("%w: safetensors header: %v", ErrMalformedInput, err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}

	out := make(map[string]*Tensor, len(raw))
	for name, msg := range raw {
		if name == "__metadata__" {
			continue
		}
		var e safetensorsEntry
		if err := json.Unmarshal(msg, &e); err != nil {
			return nil, fmt.Errorf("%w: tensor %s: %v", ErrMalformedInput, name, err)
		}
		begin, end := e.DataOffsets[0], e.DataOffsets[1]
		if begin < 0 || end < begin || end > len(data) {
			return nil, fmt.Errorf("%w: tensor %s offsets %v out of range", ErrMalformedInput, name, e.DataOffsets)
		}
		t := &Tensor{
			DType:   DType(e.DType),
			Shape:   e.Shape,
			Strides: contiguousStrides(e.Shape),
			Data:    data[begin:end],
		}
		if t.DType.size() == 0 {
			return nil, fmt.Errorf("%w: tensor %s has unsupported dtype %s", ErrMalformedInput, name, e.DType)
		}
		if t.Len()*t.DType.size() != end-begin {
			return nil, fmt.Errorf("%w: tensor %s size mismatch", ErrMalformedInput, name)
		}
		out[name] = t
	}
	return out, nil
}

// LoadSafetensors reads a safetensors file.
func LoadSafetensors(path string) (map[string]*Tensor, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tensors, err := ReadSafetensors(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tensors, nil
}
