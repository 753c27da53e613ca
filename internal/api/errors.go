package api

import "errors"

// Error definitions for backend API operations.
var (
	// ErrServer is the base error for non-2xx API responses. Wrapped values
	// carry the server-supplied message when one was returned.
	ErrServer = errors.New("api request failed")

	// ErrReportUnavailable is returned when the analytics download endpoint
	// answers with a JSON body instead of a binary file. The server reports
	// download failures this way without a distinguishing HTTP status.
	ErrReportUnavailable = errors.New("analytics report unavailable")

	// ErrEmptyResponse indicates the server returned no usable body.
	ErrEmptyResponse = errors.New("empty response")
)

// StatusError carries the HTTP status and the server-supplied error message
// of a failed API call. The message is surfaced to the user verbatim.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Unwrap makes StatusError match ErrServer via errors.Is.
func (e *StatusError) Unwrap() error {
	return ErrServer
}
