package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/prepcheck/pkg/geom"
	"github.com/Faultbox/prepcheck/pkg/mesh"
)

// ErrInvalidOBJ is returned for malformed Wavefront OBJ data.
var ErrInvalidOBJ = errors.New("invalid OBJ data")

// OBJ is a parsed Wavefront OBJ file. Only geometry is kept; texture
// coordinates, normals and materials are ignored.
type OBJ struct {
	Name      string
	Positions []geom.Vec3
	Polygons  [][]int // zero-based position indices
}

// Triangles fan-triangulates every polygon.
func (o *OBJ) Triangles() []mesh.Triangle {
	var tris []mesh.Triangle
	for _, poly := range o.Polygons {
		for i := 1; i+1 < len(poly); i++ {
			tris = append(tris, mesh.Triangle{
				o.Positions[poly[0]],
				o.Positions[poly[i]],
				o.Positions[poly[i+1]],
			})
		}
	}
	return tris
}

// ParseOBJ parses Wavefront OBJ text. Negative (relative) face indices are
// resolved against the vertices read so far.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
			}
			obj.Positions = append(obj.Positions, v)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs at least 3 vertices", ErrInvalidOBJ, line)
			}
			poly := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				idx, err := resolveOBJIndex(ref, len(obj.Positions))
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
				}
				poly = append(poly, idx)
			}
			obj.Polygons = append(obj.Polygons, poly)
		case "o":
			if len(fields) > 1 && obj.Name == "" {
				obj.Name = fields[1]
			}
		default:
			// vt, vn, g, s, usemtl, mtllib: not needed for analysis
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOBJ, err)
	}
	return obj, nil
}

// resolveOBJIndex converts a "v", "v/vt", "v//vn" or "v/vt/vn" reference
// into a zero-based position index.
func resolveOBJIndex(ref string, count int) (int, error) {
	pos, _, _ := strings.Cut(ref, "/")
	n, err := strconv.Atoi(pos)
	if err != nil {
		return 0, fmt.Errorf("bad vertex reference %q", ref)
	}

	idx := n - 1
	if n < 0 {
		idx = count + n
	}
	if n == 0 || idx < 0 || idx >= count {
		return 0, fmt.Errorf("vertex reference %d out of range (have %d)", n, count)
	}
	return idx, nil
}
