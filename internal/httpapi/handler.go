// Package httpapi exposes the analysis engine over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Faultbox/prepcheck/internal/analysis"
	"github.com/Faultbox/prepcheck/pkg/formats"
)

// Options configures the handler.
type Options struct {
	MaxBodyBytes  int64
	AllowedOrigin string
}

// Handler serves /analyze and /health.
type Handler struct {
	engine *analysis.Engine
	log    *zap.Logger
	opts   Options
}

// New creates a handler around engine.
func New(engine *analysis.Engine, log *zap.Logger, opts Options) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 64 << 20
	}
	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = "*"
	}
	return &Handler{engine: engine, log: log, opts: opts}
}

// Routes returns the full middleware-wrapped router.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", h.handleAnalyze)
	mux.HandleFunc("GET /health", h.handleHealth)

	return h.withRequestID(h.withLogging(h.withCORS(mux)))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	log := loggerFrom(r.Context(), h.log)

	req, data, err := decodeRequest(w, r, h.opts.MaxBodyBytes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	log = log.With(
		zap.String("file_name", req.FileName),
		zap.String("restoration_type", req.RestorationType),
		zap.Int("file_bytes", len(data)),
	)

	m, err := formats.Load(req.FileName, data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	report, err := h.engine.Analyze(r.Context(), m)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	log.Info("analysis complete",
		zap.Int("faces", m.FaceCount()),
		zap.Int("score", report.Score),
	)
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	log := loggerFrom(r.Context(), h.log)

	detail := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("analysis failed", zap.Error(err))
		detail = "internal error"
	} else {
		log.Warn("request rejected", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, errorBody{Detail: detail})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
