package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultRestorationType is used when a request leaves the field empty.
const DefaultRestorationType = "crown"

// AnalysisRequest is the body of POST /analyze.
type AnalysisRequest struct {
	FileData        string `json:"file_data"` // base64 encoded mesh file
	FileName        string `json:"file_name"` // extension selects the parser
	RestorationType string `json:"restoration_type"`
}

// decodeRequest reads and checks an analysis request. Bodies larger than
// limit bytes fail with http.StatusRequestEntityTooLarge.
func decodeRequest(w http.ResponseWriter, r *http.Request, limit int64) (*AnalysisRequest, []byte, error) {
	body := http.MaxBytesReader(w, r.Body, limit)
	defer body.Close()

	var req AnalysisRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, newError(http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		}
		if errors.Is(err, io.EOF) {
			return nil, nil, newError(http.StatusBadRequest, "request body is empty")
		}
		return nil, nil, newError(http.StatusBadRequest, "invalid JSON body: "+err.Error())
	}

	req.FileName = strings.TrimSpace(req.FileName)
	req.RestorationType = strings.TrimSpace(req.RestorationType)
	if req.RestorationType == "" {
		req.RestorationType = DefaultRestorationType
	}

	if req.FileData == "" {
		return nil, nil, newError(http.StatusBadRequest, "file_data is required")
	}
	if req.FileName == "" {
		return nil, nil, newError(http.StatusBadRequest, "file_name is required")
	}

	data, err := base64.StdEncoding.DecodeString(req.FileData)
	if err != nil {
		return nil, nil, newError(http.StatusBadRequest, "file_data is not valid base64: "+err.Error())
	}
	return &req, data, nil
}
