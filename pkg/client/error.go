package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/debugflow/revd/pkg/proto"
)

// Error is an error returned by the server.
type Error struct {
	Status     int           `json:"status"`
	Reason     string        `json:"reason"`
	Message    string        `json:"message"`
	Details    string        `json:"details,omitempty"`
	RequestID  string        `json:"-"`
	RetryAfter time.Duration `json:"-"`
}

// Error implements error.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%d %s", e.Status, e.Reason)
}

// Unwrap returns the sentinel error matching the status code.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return proto.ErrNotFound
	case http.StatusBadRequest:
		return proto.ErrBadRequest
	case http.StatusServiceUnavailable:
		return proto.ErrUnavailable
	default:
		return proto.ErrInternal
	}
}

func decodeError(res *http.Response) error {
	e := &Error{
		Status:    res.StatusCode,
		Reason:    http.StatusText(res.StatusCode),
		RequestID: res.Header.Get(RequestIDHeader),
	}
	if s := res.Header.Get("Retry-After"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			e.RetryAfter = time.Duration(n) * time.Second
		}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err == nil && len(body) > 0 {
		// A body that is not an error response keeps the status defaults.
		_ = json.Unmarshal(body, e)
	}
	e.Status = res.StatusCode
	return e
}
