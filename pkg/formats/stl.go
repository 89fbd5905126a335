package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Faultbox/prepcheck/pkg/geom"
	"github.com/Faultbox/prepcheck/pkg/mesh"
)

// STL format errors.
var (
	ErrTruncatedSTL = errors.New("truncated STL data")
	ErrInvalidSTL   = errors.New("invalid STL data")
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50 // normal + 3 vertices (12 float32) + attribute uint16
	stlMaxTriangles = 50_000_000
)

// STL is a parsed stereolithography file.
type STL struct {
	Name      string
	Binary    bool
	Triangles []mesh.Triangle
}

// ParseSTL parses binary or ASCII STL data. Binary files whose header
// happens to start with "solid" are recognised by their exact size.
func ParseSTL(data []byte) (*STL, error) {
	if isBinarySTL(data) {
		return parseBinarySTL(data)
	}
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return parseASCIISTL(data)
	}
	if len(data) < stlHeaderSize+4 {
		return nil, ErrTruncatedSTL
	}
	return parseBinarySTL(data)
}

func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	return uint64(len(data)) == stlHeaderSize+4+uint64(count)*stlTriangleSize
}

func parseBinarySTL(data []byte) (*STL, error) {
	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	if count > stlMaxTriangles {
		return nil, fmt.Errorf("%w: %d triangles", ErrInvalidSTL, count)
	}
	need := stlHeaderSize + 4 + int(count)*stlTriangleSize
	if len(data) < need {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedSTL, need, len(data))
	}

	stl := &STL{
		Name:      strings.TrimRight(string(data[:stlHeaderSize]), "\x00 "),
		Binary:    true,
		Triangles: make([]mesh.Triangle, count),
	}

	off := stlHeaderSize + 4
	for i := range stl.Triangles {
		// Skip the stored normal; normals are recomputed from the winding.
		p := off + 12
		for c := 0; c < 3; c++ {
			stl.Triangles[i][c] = geom.Vec3{
				X: float64(readFloat32(data[p:])),
				Y: float64(readFloat32(data[p+4:])),
				Z: float64(readFloat32(data[p+8:])),
			}
			p += 12
		}
		off += stlTriangleSize
	}
	return stl, nil
}

func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func parseASCIISTL(data []byte) (*STL, error) {
	stl := &STL{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		tri     mesh.Triangle
		corners int
		inLoop  bool
		line    int
	)
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			stl.Name = strings.Join(fields[1:], " ")
		case "outer":
			inLoop, corners = true, 0
		case "vertex":
			if !inLoop || corners >= 3 {
				return nil, fmt.Errorf("%w: line %d: unexpected vertex", ErrInvalidSTL, line)
			}
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSTL, line, err)
			}
			tri[corners] = v
			corners++
		case "endloop":
			if corners != 3 {
				return nil, fmt.Errorf("%w: line %d: facet has %d vertices", ErrInvalidSTL, line, corners)
			}
			stl.Triangles = append(stl.Triangles, tri)
			inLoop = false
		case "facet", "endfacet", "endsolid":
		default:
			return nil, fmt.Errorf("%w: line %d: unknown keyword %q", ErrInvalidSTL, line, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSTL, err)
	}
	if inLoop {
		return nil, fmt.Errorf("%w: unterminated facet", ErrTruncatedSTL)
	}
	return stl, nil
}

func parseVec3(fields []string) (geom.Vec3, error) {
	if len(fields) < 3 {
		return geom.Vec3{}, fmt.Errorf("expected 3 coordinates, got %d", len(fields))
	}
	var xyz [3]float64
	for i := range xyz {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return geom.Vec3{}, err
		}
		xyz[i] = f
	}
	return geom.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// WriteBinarySTL encodes triangles as a binary STL file.
func WriteBinarySTL(w io.Writer, name string, tris []mesh.Triangle) error {
	var header [stlHeaderSize]byte
	copy(header[:], name)

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(tris))); err != nil {
		return err
	}

	var rec [stlTriangleSize]byte
	for _, t := range tris {
		n := t.Normal()
		putVec3(rec[0:], n)
		putVec3(rec[12:], t[0])
		putVec3(rec[24:], t[1])
		putVec3(rec[36:], t[2])
		if _, err := bw.Write(rec[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func putVec3(b []byte, v geom.Vec3) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(float32(v.Z)))
}
