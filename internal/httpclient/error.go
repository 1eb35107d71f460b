package httpclient

import (
	"fmt"

	ierr "github.com/kontorapp/kontor/internal/errors"
)

// Error represents a non-2xx HTTP response
type Error struct {
	StatusCode int
	Response   []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("http client error: status %d", e.StatusCode)
}

// NewError creates an HTTP client error marked as ErrHTTPClient
func NewError(statusCode int, response []byte) error {
	return ierr.WithError(&Error{StatusCode: statusCode, Response: response}).
		WithHintf("remote endpoint responded with status %d", statusCode).
		Mark(ierr.ErrHTTPClient)
}

// IsHTTPError checks if an error carries a non-2xx response
func IsHTTPError(err error) (*Error, bool) {
	var httpErr *Error
	if ierr.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
