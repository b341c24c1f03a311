// Package apierror provides an error type that carries the HTTP status of a
// failed upstream request, so that callers can distinguish transport-level
// failures from unexpected responses.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is the type of error returned for an upstream response with an
// unexpected status. It retains the HTTP status code so that callers can
// interpret the failure.
type Error struct {
	err    error
	status int
}

func New(err error, status int) *Error {
	return &Error{
		err:    err,
		status: status,
	}
}

// FromResponse builds an error from an upstream status code and response
// body. The body, if any, becomes the error message.
func FromResponse(status int, body []byte) error {
	var err error
	text := strings.TrimSpace(string(body))
	if text != "" {
		err = errors.New(text)
	}
	if status == 0 {
		return err
	}
	return New(err, status)
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	if e.status == 0 {
		return ""
	}
	// If there is only status, then return status text
	if text := http.StatusText(e.status); text != "" {
		return fmt.Sprintf("%d %s", e.status, text)
	}
	return fmt.Sprintf("%d", e.status)
}

func (e *Error) Status() int {
	return e.status
}

func (e *Error) Unwrap() error {
	return e.err
}
