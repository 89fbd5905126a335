// Package mesh holds the triangulated surface consumed by the analysis
// engine: per-face unit normals, the bounding box and unique edge lengths.
package mesh

import (
	"math"

	"github.com/Faultbox/prepcheck/pkg/geom"
)

// Triangle is a face given by its three corner positions.
type Triangle [3]geom.Vec3

// Normal returns the unit normal of the triangle using right-hand winding.
// Degenerate triangles yield the zero vector.
func (t Triangle) Normal() geom.Vec3 {
	return t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Normalize()
}

// Area returns the surface area of the triangle.
func (t Triangle) Area() float64 {
	return t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Length() / 2
}

// Face indexes three vertices of a Mesh.
type Face [3]int

// Mesh is an immutable triangulated surface.
//
// Normals, Bounds and EdgeLengths are what the metrics read. Vertices and
// Faces are kept when the mesh was built from geometry and may be nil when
// a caller supplies the summary statistics directly.
type Mesh struct {
	Vertices    []geom.Vec3
	Faces       []Face
	Normals     []geom.Vec3
	Bounds      geom.AABB
	EdgeLengths []float64
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Normals)
}

// EdgeCount returns the number of unique edges.
func (m *Mesh) EdgeCount() int {
	return len(m.EdgeLengths)
}

// SurfaceArea returns the total area of all faces, or 0 if the mesh
// carries no vertex data.
func (m *Mesh) SurfaceArea() float64 {
	var total float64
	for _, f := range m.Faces {
		total += Triangle{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}.Area()
	}
	return total
}

// Validate checks the mesh invariants. It returns *InvalidMeshError for
// empty input and *MalformedMeshError for inconsistent or non-finite data.
func (m *Mesh) Validate() error {
	if m == nil || len(m.Normals) == 0 {
		return invalid("mesh has no faces")
	}
	if len(m.EdgeLengths) == 0 {
		return invalid("mesh has no edges")
	}

	if m.Faces != nil && len(m.Faces) != len(m.Normals) {
		return malformed("face and normal counts differ", -1)
	}
	for i, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(m.Vertices) {
				return malformed("face references missing vertex", i)
			}
		}
	}
	for i, v := range m.Vertices {
		if !v.IsFinite() {
			return malformed("non-finite vertex coordinate", i)
		}
	}
	for i, n := range m.Normals {
		if !n.IsFinite() {
			return malformed("non-finite face normal", i)
		}
	}

	if !m.Bounds.Min.IsFinite() || !m.Bounds.Max.IsFinite() {
		return malformed("non-finite bounding box", -1)
	}
	if m.Bounds.IsEmpty() {
		return malformed("bounding box min exceeds max", -1)
	}

	for i, l := range m.EdgeLengths {
		if math.IsNaN(l) || math.IsInf(l, 0) {
			return malformed("non-finite edge length", i)
		}
		if l < 0 {
			return malformed("negative edge length", i)
		}
	}
	return nil
}

// Transform returns a copy of the mesh with every vertex moved by mat.
// Normals, bounds and edge lengths are recomputed from the new positions.
// A mesh without vertex data is returned unchanged.
func (m *Mesh) Transform(mat geom.Mat4) *Mesh {
	if len(m.Vertices) == 0 {
		return m
	}
	verts := make([]geom.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		verts[i] = mat.TransformPoint(v)
	}
	faces := make([]Face, len(m.Faces))
	copy(faces, m.Faces)
	return FromIndexed(verts, faces)
}
