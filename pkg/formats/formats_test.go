package formats

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"prep.stl", FormatSTL, false},
		{"PREP.STL", FormatSTL, false},
		{"scan.obj", FormatOBJ, false},
		{"scan.ply", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestLoad_STL(t *testing.T) {
	m, err := Load("cube.stl", createTestSTL(t, "cube"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.FaceCount() != 12 {
		t.Errorf("expected 12 faces, got %d", m.FaceCount())
	}
	if m.EdgeCount() != 18 {
		t.Errorf("expected 18 unique edges, got %d", m.EdgeCount())
	}
	if m.Bounds.Height() != 1 {
		t.Errorf("expected height 1, got %f", m.Bounds.Height())
	}
}

func TestLoad_OBJ(t *testing.T) {
	m, err := Load("pyramid.obj", []byte(objQuadPyramid))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.FaceCount() != 6 {
		t.Errorf("expected 6 faces, got %d", m.FaceCount())
	}
	// 4 base edges, 4 slant edges, 1 base diagonal.
	if m.EdgeCount() != 9 {
		t.Errorf("expected 9 unique edges, got %d", m.EdgeCount())
	}
}

func TestLoad_Unsupported(t *testing.T) {
	_, err := Load("scan.ply", []byte("ply"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.stl")
	if err := os.WriteFile(path, createTestSTL(t, "cube"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if m.FaceCount() != 12 {
		t.Errorf("expected 12 faces, got %d", m.FaceCount())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.stl")); err == nil {
		t.Error("expected error for missing file")
	}
}
