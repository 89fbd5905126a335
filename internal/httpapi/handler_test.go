package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/prepcheck/internal/analysis"
	"github.com/Faultbox/prepcheck/pkg/formats"
	"github.com/Faultbox/prepcheck/pkg/mesh"
)

func newTestHandler(opts Options) http.Handler {
	return New(analysis.New(analysis.Options{Parallel: true}, nil), nil, opts).Routes()
}

func stumpSTL(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, formats.WriteBinarySTL(&buf, "stump", mesh.Stump(4, 2, 6, 32)))
	return buf.Bytes()
}

func analyzeBody(t *testing.T, name string, data []byte, restoration string) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(AnalysisRequest{
		FileData:        base64.StdEncoding.EncodeToString(data),
		FileName:        name,
		RestorationType: restoration,
	})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func do(h http.Handler, method, path string, body *bytes.Reader) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestHealth(t *testing.T) {
	rec := do(newTestHandler(Options{}), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err, "response should carry a generated request ID")
}

func TestAnalyze_STL(t *testing.T) {
	data := stumpSTL(t)
	rec := do(newTestHandler(Options{}), http.MethodPost, "/analyze", analyzeBody(t, "prep.stl", data, ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got analysis.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	m, err := formats.Load("prep.stl", data)
	require.NoError(t, err)
	want, err := analysis.Analyze(m)
	require.NoError(t, err)

	assert.Equal(t, *want, got)
	assert.Equal(t, analysis.StatusSuccess, got.OcclusalReduction.Status)
	assert.False(t, got.Undercuts.Detected)
}

func TestAnalyze_OBJ(t *testing.T) {
	obj := "v 0 0 0\nv 2 0 0\nv 0 2 0\nv 0 0 2\nf 1 3 2\nf 1 2 4\nf 2 3 4\nf 3 1 4\n"
	rec := do(newTestHandler(Options{}), http.MethodPost, "/analyze", analyzeBody(t, "tetra.OBJ", []byte(obj), "inlay"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got analysis.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2.0, got.OcclusalReduction.Value)
	// The base triangle faces straight down: 1 of 4 faces.
	assert.True(t, got.Undercuts.Detected)
	assert.Equal(t, 40, got.Undercuts.Score)
}

func TestAnalyze_RestorationTypeDoesNotAffectScore(t *testing.T) {
	h := newTestHandler(Options{})
	data := stumpSTL(t)

	crown := do(h, http.MethodPost, "/analyze", analyzeBody(t, "prep.stl", data, "crown"))
	veneer := do(h, http.MethodPost, "/analyze", analyzeBody(t, "prep.stl", data, "veneer"))

	require.Equal(t, http.StatusOK, crown.Code)
	require.Equal(t, http.StatusOK, veneer.Code)
	assert.Equal(t, crown.Body.String(), veneer.Body.String())
}

func TestAnalyze_Errors(t *testing.T) {
	stl := stumpSTL(t)

	tests := []struct {
		name   string
		body   string
		status int
		detail string
	}{
		{
			name:   "empty body",
			body:   "",
			status: http.StatusBadRequest,
			detail: "request body is empty",
		},
		{
			name:   "invalid json",
			body:   "{not json",
			status: http.StatusBadRequest,
			detail: "invalid JSON body",
		},
		{
			name:   "missing file data",
			body:   `{"file_name":"prep.stl"}`,
			status: http.StatusBadRequest,
			detail: "file_data is required",
		},
		{
			name:   "missing file name",
			body:   fmt.Sprintf(`{"file_data":%q}`, base64.StdEncoding.EncodeToString(stl)),
			status: http.StatusBadRequest,
			detail: "file_name is required",
		},
		{
			name:   "bad base64",
			body:   `{"file_data":"***","file_name":"prep.stl"}`,
			status: http.StatusBadRequest,
			detail: "not valid base64",
		},
		{
			name:   "unsupported extension",
			body:   fmt.Sprintf(`{"file_data":%q,"file_name":"prep.ply"}`, base64.StdEncoding.EncodeToString(stl)),
			status: http.StatusUnsupportedMediaType,
			detail: "unsupported mesh format",
		},
		{
			name:   "corrupt stl",
			body:   fmt.Sprintf(`{"file_data":%q,"file_name":"prep.stl"}`, base64.StdEncoding.EncodeToString([]byte("solid x\nbanana\n"))),
			status: http.StatusUnprocessableEntity,
			detail: "invalid STL data",
		},
		{
			name:   "empty mesh",
			body:   fmt.Sprintf(`{"file_data":%q,"file_name":"prep.stl"}`, base64.StdEncoding.EncodeToString([]byte("solid x\nendsolid x\n"))),
			status: http.StatusUnprocessableEntity,
			detail: "invalid mesh",
		},
	}

	h := newTestHandler(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/analyze", bytes.NewReader([]byte(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, detail(t, rec), tt.detail)
		})
	}
}

func TestAnalyze_BodyTooLarge(t *testing.T) {
	h := newTestHandler(Options{MaxBodyBytes: 128})
	rec := do(h, http.MethodPost, "/analyze", analyzeBody(t, "prep.stl", stumpSTL(t), ""))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, detail(t, rec), "exceeds 128 bytes")
}

func TestAnalyze_WrongMethod(t *testing.T) {
	rec := do(newTestHandler(Options{}), http.MethodGet, "/analyze", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORS(t *testing.T) {
	h := newTestHandler(Options{AllowedOrigin: "https://lab.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "https://lab.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://lab.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Equal(t, "content-type", rec.Header().Get("Access-Control-Allow-Headers"))

	rec = do(newTestHandler(Options{}), http.MethodGet, "/health", nil)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	newTestHandler(Options{}).ServeHTTP(rec, req)

	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	newTestHandler(Options{}).ServeHTTP(rec, req)

	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"api error", newError(http.StatusTeapot, "tea"), http.StatusTeapot},
		{"unsupported", fmt.Errorf("wrap: %w", formats.ErrUnsupportedFormat), http.StatusUnsupportedMediaType},
		{"truncated stl", formats.ErrTruncatedSTL, http.StatusUnprocessableEntity},
		{"bad obj", formats.ErrInvalidOBJ, http.StatusUnprocessableEntity},
		{"invalid mesh", &mesh.InvalidMeshError{Reason: "empty"}, http.StatusUnprocessableEntity},
		{"malformed mesh", &mesh.MalformedMeshError{Reason: "nan", Index: 1}, http.StatusUnprocessableEntity},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable},
		{"internal", fmt.Errorf("%w: boom", analysis.ErrInternal), http.StatusInternalServerError},
		{"unknown", errors.New("?"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	h := New(analysis.New(analysis.Options{}, nil), nil, Options{})
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(""))
	rec := httptest.NewRecorder()

	h.writeError(rec, req, fmt.Errorf("%w: secret stack", analysis.ErrInternal))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", detail(t, rec))
}
