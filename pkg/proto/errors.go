package proto

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
)

var (
	// ErrNotFound is returned when a revision, commit, tag, or branch does
	// not exist.
	ErrNotFound = errors.New("not found")
	// ErrBadRequest is returned for malformed input such as an unparsable
	// revision, an invalid reference name, or a name collision.
	ErrBadRequest = errors.New("bad request")
	// ErrInternal is returned when the repository engine fails unexpectedly.
	ErrInternal = errors.New("internal server error")
	// ErrUnavailable is returned when a request was rejected before it
	// reached the repository, e.g. because the mailbox is full.
	ErrUnavailable = errors.New("service unavailable")
)

// NotFoundf returns an error wrapping ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// BadRequestf returns an error wrapping ErrBadRequest.
func BadRequestf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// Internal wraps an engine error as ErrInternal. File system paths carried
// by the error are dropped so they never reach a caller.
func Internal(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInternal) {
		return err
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		err = fmt.Errorf("%s: %w", pathErr.Op, pathErr.Err)
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		err = fmt.Errorf("%s: %w", linkErr.Op, linkErr.Err)
	}
	return fmt.Errorf("%w: %s: %s", ErrInternal, op, err.Error())
}

// StatusCode returns the HTTP status code that corresponds to err.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
