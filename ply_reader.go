package splat

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

var endHeader = []byte("end_header\n")

// plyTrailerBytes is the size of the elements following the vertices.
const plyTrailerBytes = (16+9+2+2+2)*4 + 1 + 3

type plyElement struct {
	name  string
	count int
	props []plyProperty
}

type plyProperty struct {
	typ  string
	name string
}

// expected element layout after the vertex element, name -> (count, property type)
var trailerSchema = []struct {
	name  string
	count int
	typ   string
}{
	{"extrinsic", 16, "float"},
	{"intrinsic", 9, "float"},
	{"image_size", 2, "uint"},
	{"frame", 2, "int"},
	{"disparity", 2, "float"},
	{"color_space", 1, "uchar"},
	{"version", 3, "uchar"},
}

// IsPLY reports whether r starts with a binary little endian PLY header.
func IsPLY(r io.Reader) (bool, error) {
	br := bufio.NewReader(r)
	magic, err := br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	if strings.TrimSpace(magic) != "ply" {
		return false, nil
	}
	format, err := br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return strings.TrimSpace(format) == "format binary_little_endian 1.0", nil
}

// LoadPLY reads and decodes a scene file.
func LoadPLY(path string) (*Scene, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	s, err := DecodePLY(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return s, nil
}

// DecodePLY parses a scene written by EncodePLY and reverses the stored encodings.
func DecodePLY(r io.Reader) (*Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	end := bytes.Index(data, endHeader)
	if end < 0 {
		return nil, fmt.Errorf("%w: missing end_header", ErrMalformedInput)
	}
	elements, err := parsePLYHeader(string(data[:end]))
	if err != nil {
		return nil, err
	}
	if err := checkPLYSchema(elements); err != nil {
		return nil, err
	}

	payload := data[end+len(endHeader):]
	br := bytes.NewReader(payload)
	n := elements[0].count

	vertexSize := len(vertexProperties) * 4
	if len(payload) < plyTrailerBytes || n > (len(payload)-plyTrailerBytes)/vertexSize {
		return nil, fmt.Errorf("%w: payload truncated for %d vertices", ErrMalformedInput, n)
	}

	var s Scene

	// Color space sits after the vertices, read it first to decode colors.
	csOffset := n*vertexSize + (16+9+2+2+2)*4
	s.ColorSpace = ColorSpace(payload[csOffset])

	g := newGaussians3DSized(n)
	var v [14]float32
	for i := 0; i < n; i++ {
		for j := range v {
			if v[j], err = readF32(br); err != nil {
				return nil, err
			}
		}
		g.Means[i] = mgl32.Vec3{v[0], v[1], v[2]}
		g.Colors[i] = decodeColor(mgl32.Vec3{v[3], v[4], v[5]}, s.ColorSpace)
		g.Opacities[i] = Sigmoid(v[6])
		g.Scales[i] = mgl32.Vec3{expf(v[7]), expf(v[8]), expf(v[9])}
		g.Quaternions[i] = mgl32.Quat{W: v[10], V: mgl32.Vec3{v[11], v[12], v[13]}}
	}
	s.Gaussians = g

	var ext [16]float32
	for i := range ext {
		if ext[i], err = readF32(br); err != nil {
			return nil, err
		}
	}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			s.Metadata.Extrinsics.Matrix[c*4+r] = ext[r*4+c]
		}
	}

	var intr [9]float32
	for i := range intr {
		if intr[i], err = readF32(br); err != nil {
			return nil, err
		}
	}
	s.Metadata.Intrinsics = NewIntrinsicsFromParams(intr[0], intr[4], intr[2], intr[5])

	w, err := readU32(br)
	if err != nil {
		return nil, err
	}
	h, err := readU32(br)
	if err != nil {
		return nil, err
	}
	s.Metadata.ImageWidth, s.Metadata.ImageHeight = int(w), int(h)

	if s.FrameCount, err = readI32(br); err != nil {
		return nil, err
	}
	count, err := readI32(br)
	if err != nil {
		return nil, err
	}
	if int(count) != n {
		return nil, fmt.Errorf("%w: frame gaussian count %d, vertex count %d", ErrMalformedInput, count, n)
	}

	for i := range s.Disparity {
		if s.Disparity[i], err = readF32(br); err != nil {
			return nil, err
		}
	}

	if _, err := br.ReadByte(); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(br, s.Version[:]); err != nil {
		return nil, err
	}

	return &s, nil
}

func parsePLYHeader(header string) ([]plyElement, error) {
	lines := strings.Split(strings.TrimRight(header, "\n"), "\n")
	if len(lines) < 2 || lines[0] != "ply" {
		return nil, fmt.Errorf("%w: not a PLY file", ErrMalformedInput)
	}
	if lines[1] != "format binary_little_endian 1.0" {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrMalformedInput, lines[1])
	}

	var elements []plyElement
	for _, line := range lines[2:] {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "comment", "obj_info":
			continue
		case "element":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: bad element line %q", ErrMalformedInput, line)
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: bad element count %q", ErrMalformedInput, line)
			}
			elements = append(elements, plyElement{name: fields[1], count: count})
		case "property":
			if len(fields) != 3 || len(elements) == 0 {
				return nil, fmt.Errorf("%w: bad property line %q", ErrMalformedInput, line)
			}
			last := &elements[len(elements)-1]
			last.props = append(last.props, plyProperty{typ: fields[1], name: fields[2]})
		default:
			return nil, fmt.Errorf("%w: unexpected header line %q", ErrMalformedInput, line)
		}
	}
	return elements, nil
}

func checkPLYSchema(elements []plyElement) error {
	if len(elements) != 1+len(trailerSchema) {
		return fmt.Errorf("%w: expected %d elements, got %d", ErrMalformedInput, 1+len(trailerSchema), len(elements))
	}
	vertex := elements[0]
	if vertex.name != "vertex" || len(vertex.props) != len(vertexProperties) {
		return fmt.Errorf("%w: unexpected vertex element", ErrMalformedInput)
	}
	for i, p := range vertex.props {
		if p.typ != "float" || p.name != vertexProperties[i] {
			return fmt.Errorf("%w: unexpected vertex property %s %s", ErrMalformedInput, p.typ, p.name)
		}
	}
	for i, want := range trailerSchema {
		e := elements[i+1]
		if e.name != want.name || e.count != want.count || len(e.props) != 1 || e.props[0].typ != want.typ {
			return fmt.Errorf("%w: unexpected element %q", ErrMalformedInput, e.name)
		}
	}
	return nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readI32(r *bytes.Reader) (int32, error) {
	v, err := readU32(r)
	return int32(v), err
}

func readF32(r *bytes.Reader) (float32, error) {
	v, err := readU32(r)
	return math.Float32frombits(v), err
}
