// Package formats provides parsers for 3D scan mesh files.
package formats

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/prepcheck/pkg/mesh"
)

// ErrUnsupportedFormat is returned when no parser handles a file extension.
var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// Format identifies a mesh file format.
type Format string

const (
	FormatSTL Format = "stl"
	FormatOBJ Format = "obj"
)

// DetectFormat picks a format from the file name extension.
func DetectFormat(name string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".stl":
		return FormatSTL, nil
	case ".obj":
		return FormatOBJ, nil
	case "":
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, name)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// Load parses raw file contents into a mesh, choosing the parser from the
// extension of name.
func Load(name string, data []byte) (*mesh.Mesh, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	var tris []mesh.Triangle
	switch format {
	case FormatSTL:
		stl, err := ParseSTL(data)
		if err != nil {
			return nil, err
		}
		tris = stl.Triangles
	case FormatOBJ:
		obj, err := ParseOBJ(data)
		if err != nil {
			return nil, err
		}
		tris = obj.Triangles()
	}
	return mesh.FromTriangles(tris), nil
}

// LoadFile reads and parses a mesh file from disk.
func LoadFile(path string) (*mesh.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh file: %w", err)
	}
	return Load(path, data)
}
