package mesh

import "github.com/Faultbox/prepcheck/pkg/geom"

type edgeKey struct {
	a, b int
}

func makeEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// FromTriangles builds a mesh from a triangle soup. Corners with identical
// coordinates are welded into one vertex so that an edge shared by two
// triangles is counted once.
func FromTriangles(tris []Triangle) *Mesh {
	index := make(map[geom.Vec3]int, len(tris))
	verts := make([]geom.Vec3, 0, len(tris))
	faces := make([]Face, len(tris))

	for i, t := range tris {
		for c, p := range t {
			idx, ok := index[p]
			if !ok {
				idx = len(verts)
				index[p] = idx
				verts = append(verts, p)
			}
			faces[i][c] = idx
		}
	}
	return FromIndexed(verts, faces)
}

// FromIndexed builds a mesh from shared vertices and triangle indices.
// Faces referencing missing vertices are kept as-is so Validate can
// report them; they contribute no normal direction or edges.
func FromIndexed(verts []geom.Vec3, faces []Face) *Mesh {
	m := &Mesh{
		Vertices: verts,
		Faces:    faces,
		Normals:  make([]geom.Vec3, len(faces)),
		Bounds:   geom.EmptyAABB(),
	}

	for _, v := range verts {
		m.Bounds.Extend(v)
	}

	seen := make(map[edgeKey]struct{}, len(faces)*3/2)
	for i, f := range faces {
		if !inRange(f, len(verts)) {
			continue
		}
		m.Normals[i] = Triangle{verts[f[0]], verts[f[1]], verts[f[2]]}.Normal()

		for c := 0; c < 3; c++ {
			a, b := f[c], f[(c+1)%3]
			k := makeEdgeKey(a, b)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			m.EdgeLengths = append(m.EdgeLengths, verts[a].Distance(verts[b]))
		}
	}
	return m
}

func inRange(f Face, n int) bool {
	for _, idx := range f {
		if idx < 0 || idx >= n {
			return false
		}
	}
	return true
}
