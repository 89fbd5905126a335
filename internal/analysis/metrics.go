package analysis

import (
	"math"

	"github.com/Faultbox/prepcheck/pkg/geom"
	"github.com/Faultbox/prepcheck/pkg/mesh"
)

// undercutDot is the cosine below which a face leans back under the
// insertion axis (about 95.7 degrees from vertical).
const undercutDot = -0.1

// minorUndercutRatio is the share of undercut faces still graded minor.
const minorUndercutRatio = 0.05

// Convergence grades the mean angle between face normals and +Z.
func Convergence(normals []geom.Vec3) (ConvergenceResult, error) {
	if len(normals) == 0 {
		return ConvergenceResult{}, &mesh.InvalidMeshError{Reason: "convergence needs at least one face"}
	}

	var sum float64
	for _, n := range normals {
		sum += n.AngleTo(geom.Up)
	}
	avg := sum / float64(len(normals))

	res := ConvergenceResult{Value: roundTo(avg, 1)}
	switch {
	case avg >= 4 && avg <= 8:
		res.Grade = Grade{95, StatusSuccess, "Ideal taper angle"}
	case avg >= 2 && avg <= 12:
		res.Grade = Grade{75, StatusWarning, "Acceptable taper"}
	default:
		res.Grade = Grade{50, StatusError, "Taper needs adjustment"}
	}
	return res, nil
}

// OcclusalReduction grades the height of the bounding box. Degenerate
// boxes with zero or negative height fall into the insufficient bucket.
func OcclusalReduction(bounds geom.AABB) OcclusalResult {
	height := bounds.Height()

	res := OcclusalResult{Value: roundTo(height, 2)}
	switch {
	case height >= 1.5:
		res.Grade = Grade{95, StatusSuccess, "Adequate reduction"}
	case height >= 1.0:
		res.Grade = Grade{70, StatusWarning, "Minimal reduction"}
	default:
		res.Grade = Grade{40, StatusError, "Insufficient reduction"}
	}
	return res
}

// FinishLine grades margin clarity from the spread of unique edge lengths.
// Uniform tessellation reads as a crisp margin; a high coefficient of
// variation reads as noise.
func FinishLine(edges []float64) (FinishLineResult, error) {
	if len(edges) == 0 {
		return FinishLineResult{}, &mesh.InvalidMeshError{Reason: "finish line needs at least one edge"}
	}

	mean, std := meanStd(edges)
	var smoothness float64
	if mean > 0 {
		smoothness = 1 - std/mean
	}
	clarity := int(geom.Clamp(math.Round(smoothness*100), 0, 100))

	res := FinishLineResult{Clarity: clarity}
	switch {
	case clarity >= 80:
		res.Grade = Grade{95, StatusSuccess, "Clear margin"}
	case clarity >= 60:
		res.Grade = Grade{70, StatusWarning, "Margin needs refinement"}
	default:
		res.Grade = Grade{40, StatusError, "Unclear margin"}
	}
	return res, nil
}

// Undercuts counts faces whose normal points back under the insertion axis.
func Undercuts(normals []geom.Vec3) (UndercutResult, error) {
	if len(normals) == 0 {
		return UndercutResult{}, &mesh.InvalidMeshError{Reason: "undercut detection needs at least one face"}
	}

	count := 0
	for _, n := range normals {
		if n.Dot(geom.Up) < undercutDot {
			count++
		}
	}
	ratio := float64(count) / float64(len(normals))

	switch {
	case count == 0:
		return UndercutResult{Grade: Grade{100, StatusSuccess, "No undercuts"}}, nil
	case ratio < minorUndercutRatio:
		return UndercutResult{Detected: true, Depth: 0.2, Grade: Grade{70, StatusWarning, "Minor undercuts"}}, nil
	default:
		return UndercutResult{Detected: true, Depth: 0.5, Grade: Grade{40, StatusError, "Significant undercuts"}}, nil
	}
}

// meanStd returns the mean and population standard deviation.
func meanStd(xs []float64) (mean, std float64) {
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(xs)))
}

func roundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
