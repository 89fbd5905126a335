// Package analysis scores a dental preparation mesh on four geometric
// metrics and combines them into a single report.
package analysis

// Status classifies a metric outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Metric names used as report keys.
const (
	MetricConvergence       = "convergence"
	MetricOcclusalReduction = "occlusalReduction"
	MetricFinishLine        = "finishLine"
	MetricUndercuts         = "undercuts"
)

// Grade is the scored outcome shared by every metric.
type Grade struct {
	Score   int    `json:"score"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// ConvergenceResult reports the mean wall angle against the insertion axis.
type ConvergenceResult struct {
	Value float64 `json:"value"` // degrees, one decimal
	Grade
}

// OcclusalResult reports the vertical extent of the preparation.
type OcclusalResult struct {
	Value float64 `json:"value"` // length units, two decimals
	Grade
}

// FinishLineResult reports margin clarity as a percentage.
type FinishLineResult struct {
	Clarity int `json:"clarity"`
	Grade
}

// UndercutResult reports whether undercut faces were found.
// Depth is a fixed per-bucket estimate, not a measured distance.
type UndercutResult struct {
	Detected bool    `json:"detected"`
	Depth    float64 `json:"depth"`
	Grade
}

// Report is the complete analysis of one mesh.
type Report struct {
	Score             int               `json:"score"`
	Convergence       ConvergenceResult `json:"convergence"`
	OcclusalReduction OcclusalResult    `json:"occlusalReduction"`
	FinishLine        FinishLineResult  `json:"finishLine"`
	Undercuts         UndercutResult    `json:"undercuts"`
}

// NamedGrade pairs a metric name with its grade.
type NamedGrade struct {
	Name string
	Grade
}

// Grades returns the four metric grades in report order.
func (r *Report) Grades() []NamedGrade {
	return []NamedGrade{
		{MetricConvergence, r.Convergence.Grade},
		{MetricOcclusalReduction, r.OcclusalReduction.Grade},
		{MetricFinishLine, r.FinishLine.Grade},
		{MetricUndercuts, r.Undercuts.Grade},
	}
}

// Aggregate returns the truncated mean of the four metric scores.
func Aggregate(c ConvergenceResult, o OcclusalResult, f FinishLineResult, u UndercutResult) int {
	return (c.Score + o.Score + f.Score + u.Score) / 4
}

func newReport(c ConvergenceResult, o OcclusalResult, f FinishLineResult, u UndercutResult) *Report {
	return &Report{
		Score:             Aggregate(c, o, f, u),
		Convergence:       c,
		OcclusalReduction: o,
		FinishLine:        f,
		Undercuts:         u,
	}
}
