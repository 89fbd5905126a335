package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/prepcheck/pkg/mesh"
)

// ErrInternal wraps unexpected faults raised while computing metrics, so
// callers can tell them apart from rejected input.
var ErrInternal = errors.New("internal analysis error")

// Options tunes how the engine runs.
type Options struct {
	// Parallel computes the four metrics on separate goroutines.
	Parallel bool
}

// Engine computes reports. It holds no per-mesh state and is safe for
// concurrent use.
type Engine struct {
	opts Options
	log  *zap.Logger
}

// New creates an engine. A nil logger disables logging.
func New(opts Options, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{opts: opts, log: log}
}

// Analyze validates m and computes its report. Invalid input yields a
// *mesh.InvalidMeshError or *mesh.MalformedMeshError and no report.
func (e *Engine) Analyze(ctx context.Context, m *mesh.Mesh) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		e.log.Debug("mesh rejected", zap.Error(err))
		return nil, err
	}

	start := time.Now()
	var (
		conv ConvergenceResult
		occ  OcclusalResult
		fin  FinishLineResult
		und  UndercutResult
	)

	tasks := []func() error{
		func() (err error) { conv, err = Convergence(m.Normals); return },
		func() error { occ = OcclusalReduction(m.Bounds); return nil },
		func() (err error) { fin, err = FinishLine(m.EdgeLengths); return },
		func() (err error) { und, err = Undercuts(m.Normals); return },
	}

	if err := e.run(tasks); err != nil {
		return nil, err
	}

	report := newReport(conv, occ, fin, und)
	e.log.Debug("mesh analyzed",
		zap.Int("faces", m.FaceCount()),
		zap.Int("edges", m.EdgeCount()),
		zap.Int("score", report.Score),
		zap.Bool("parallel", e.opts.Parallel),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

func (e *Engine) run(tasks []func() error) error {
	if !e.opts.Parallel {
		for _, task := range tasks {
			if err := guard(task); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	for _, task := range tasks {
		g.Go(func() error { return guard(task) })
	}
	return g.Wait()
}

// guard turns a panic inside a metric into ErrInternal.
func guard(task func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()
	return task()
}

// IsInputError reports whether err was caused by the mesh itself rather
// than by an internal fault.
func IsInputError(err error) bool {
	var invErr *mesh.InvalidMeshError
	var malErr *mesh.MalformedMeshError
	return errors.As(err, &invErr) || errors.As(err, &malErr)
}

// Analyze runs a sequential engine without logging.
func Analyze(m *mesh.Mesh) (*Report, error) {
	return New(Options{}, nil).Analyze(context.Background(), m)
}
