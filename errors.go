package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// maxErrBodySize caps how much of a failed response's body is read into a
// [StatusError], protecting against malicious or broken servers.
const maxErrBodySize = 4 << 10 // 4KB

var (
	// ErrUnexpectedStatus is the sentinel wrapped by every [StatusError],
	// allowing callers to check for any non-2xx outcome with [errors.Is].
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrAborted marks a call whose context was cancelled or timed out
	// before a response was fully received.
	ErrAborted = errors.New("request aborted")

	// ErrNetwork marks a call that failed below the HTTP layer, before any
	// response arrived.
	ErrNetwork = errors.New("network failure")

	// ErrAuthFailure is joined with [ErrUnexpectedStatus] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
)

// StatusError is returned when a response carries a status code outside the
// 2xx range. Body holds up to maxErrBodySize bytes of the response body when
// the transport captured it; the event transport leaves it empty.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %s, url: %s, body: %s", e.Err, e.Status, e.URL, e.Body)
}

// Unwrap exposes the underlying sentinel for use with [errors.Is].
func (e *StatusError) Unwrap() error {
	return e.Err
}

func newStatusError(statusCode int, status, url, body string) *StatusError {
	err := ErrUnexpectedStatus
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		err = errors.Join(ErrUnexpectedStatus, ErrAuthFailure)
	}

	return &StatusError{
		StatusCode: statusCode,
		Status:     status,
		URL:        url,
		Body:       body,
		Err:        err,
	}
}

// classifyErr maps a transport failure to one of the package's error kinds.
// StatusErrors and already-classified errors pass through untouched, context
// cancellation becomes ErrAborted, everything else is wrapped as ErrNetwork.
func classifyErr(url string, err error) error {
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		return err
	case errors.Is(err, ErrAborted), errors.Is(err, ErrNetwork):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %w", ErrAborted, url, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrNetwork, url, err)
	}
}
