package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/Faultbox/prepcheck/internal/analysis"
	"github.com/Faultbox/prepcheck/pkg/formats"
)

// apiError is an error with a fixed HTTP status.
type apiError struct {
	status int
	msg    string
}

func (e *apiError) Error() string {
	return e.msg
}

func newError(status int, msg string) error {
	return &apiError{status: status, msg: msg}
}

// statusFor maps an error to the HTTP status reported to the client.
func statusFor(err error) int {
	var apiErr *apiError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.status
	case errors.Is(err, formats.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, formats.ErrInvalidSTL),
		errors.Is(err, formats.ErrTruncatedSTL),
		errors.Is(err, formats.ErrInvalidOBJ),
		analysis.IsInputError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Detail string `json:"detail"`
}
