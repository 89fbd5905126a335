package mesh

import (
	"math"

	"github.com/Faultbox/prepcheck/pkg/geom"
)

// Box returns the 12 outward-facing triangles of an axis-aligned box.
func Box(min, max geom.Vec3) []Triangle {
	c := [8]geom.Vec3{
		{X: min.X, Y: min.Y, Z: min.Z},
		{X: max.X, Y: min.Y, Z: min.Z},
		{X: max.X, Y: max.Y, Z: min.Z},
		{X: min.X, Y: max.Y, Z: min.Z},
		{X: min.X, Y: min.Y, Z: max.Z},
		{X: max.X, Y: min.Y, Z: max.Z},
		{X: max.X, Y: max.Y, Z: max.Z},
		{X: min.X, Y: max.Y, Z: max.Z},
	}
	quads := [6][4]int{
		{0, 3, 2, 1}, // bottom
		{4, 5, 6, 7}, // top
		{0, 1, 5, 4}, // front
		{1, 2, 6, 5}, // right
		{2, 3, 7, 6}, // back
		{3, 0, 4, 7}, // left
	}

	tris := make([]Triangle, 0, 12)
	for _, q := range quads {
		tris = append(tris,
			Triangle{c[q[0]], c[q[1]], c[q[2]]},
			Triangle{c[q[0]], c[q[2]], c[q[3]]},
		)
	}
	return tris
}

// Stump returns an open-bottomed truncated cone resembling a prepared
// tooth: segments side walls leaning inward by taper degrees from the
// vertical, closed by a flat occlusal cap at the given height.
func Stump(radius, height, taper float64, segments int) []Triangle {
	if segments < 3 {
		segments = 3
	}
	top := radius - height*math.Tan(geom.Radians(taper))
	if top < 0 {
		top = 0
	}

	ring := func(r, z float64, i int) geom.Vec3 {
		a := 2 * math.Pi * float64(i%segments) / float64(segments)
		return geom.Vec3{X: r * math.Cos(a), Y: r * math.Sin(a), Z: z}
	}
	center := geom.Vec3{Z: height}

	tris := make([]Triangle, 0, segments*3)
	for i := 0; i < segments; i++ {
		b0, b1 := ring(radius, 0, i), ring(radius, 0, i+1)
		t0, t1 := ring(top, height, i), ring(top, height, i+1)
		tris = append(tris,
			Triangle{b0, b1, t1},
			Triangle{b0, t1, t0},
			Triangle{center, t0, t1},
		)
	}
	return tris
}
