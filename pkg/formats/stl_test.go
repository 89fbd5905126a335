package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Faultbox/prepcheck/pkg/geom"
	"github.com/Faultbox/prepcheck/pkg/mesh"
)

// createTestSTL creates a binary STL file for a unit cube.
func createTestSTL(t *testing.T, header string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	tris := mesh.Box(geom.Vec3{}, geom.Vec3{X: 1, Y: 1, Z: 1})
	if err := WriteBinarySTL(buf, header, tris); err != nil {
		t.Fatalf("WriteBinarySTL failed: %v", err)
	}
	return buf.Bytes()
}

const asciiTriangle = `solid probe
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 1 0 0
      vertex 1 1 0.5
      vertex 0 1 0
    endloop
  endfacet
endsolid probe
`

func TestParseSTL_Binary(t *testing.T) {
	data := createTestSTL(t, "cube")

	if len(data) != 84+12*50 {
		t.Fatalf("expected %d bytes, got %d", 84+12*50, len(data))
	}

	stl, err := ParseSTL(data)
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}
	if !stl.Binary {
		t.Error("expected binary STL")
	}
	if stl.Name != "cube" {
		t.Errorf("expected name 'cube', got %q", stl.Name)
	}
	if len(stl.Triangles) != 12 {
		t.Errorf("expected 12 triangles, got %d", len(stl.Triangles))
	}
}

func TestParseSTL_BinaryHeaderStartingWithSolid(t *testing.T) {
	data := createTestSTL(t, "solid but actually binary")

	stl, err := ParseSTL(data)
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}
	if !stl.Binary || len(stl.Triangles) != 12 {
		t.Errorf("expected 12 binary triangles, got binary=%v n=%d", stl.Binary, len(stl.Triangles))
	}
}

func TestParseSTL_ASCII(t *testing.T) {
	stl, err := ParseSTL([]byte(asciiTriangle))
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}
	if stl.Binary {
		t.Error("expected ASCII STL")
	}
	if stl.Name != "probe" {
		t.Errorf("expected name 'probe', got %q", stl.Name)
	}
	if len(stl.Triangles) != 2 {
		t.Fatalf("expected 2 triangles, got %d", len(stl.Triangles))
	}
	if stl.Triangles[1][1] != (geom.Vec3{X: 1, Y: 1, Z: 0.5}) {
		t.Errorf("unexpected vertex %v", stl.Triangles[1][1])
	}
}

func TestParseSTL_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncatedSTL},
		{"short header", make([]byte, 40), ErrTruncatedSTL},
		{"bad vertex", []byte("solid x\nfacet normal 0 0 1\nouter loop\nvertex a b c\n"), ErrInvalidSTL},
		{"two vertices", []byte("solid x\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\n"), ErrInvalidSTL},
		{"unterminated", []byte("solid x\nouter loop\nvertex 0 0 0\n"), ErrTruncatedSTL},
		{"unknown keyword", []byte("solid x\nbanana\n"), ErrInvalidSTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSTL(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseSTL_TruncatedBinary(t *testing.T) {
	data := createTestSTL(t, "cube")
	// Claim one more triangle than is present.
	binary.LittleEndian.PutUint32(data[80:], 13)

	_, err := ParseSTL(data)
	if !errors.Is(err, ErrTruncatedSTL) {
		t.Errorf("expected ErrTruncatedSTL, got %v", err)
	}
}

func TestWriteBinarySTL_RoundTrip(t *testing.T) {
	tris := mesh.Stump(4, 2, 6, 16)
	buf := new(bytes.Buffer)
	if err := WriteBinarySTL(buf, "stump", tris); err != nil {
		t.Fatalf("WriteBinarySTL failed: %v", err)
	}

	stl, err := ParseSTL(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}
	if len(stl.Triangles) != len(tris) {
		t.Fatalf("expected %d triangles, got %d", len(tris), len(stl.Triangles))
	}

	stored := binary.LittleEndian.Uint32(buf.Bytes()[80:])
	if int(stored) != len(tris) {
		t.Errorf("header count %d, want %d", stored, len(tris))
	}
}
