package runner

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds surfaced by a run. Callers match them with errors.Is; the
// scheduler records the message on the run row and never retries within a
// run.
var (
	ErrRemote            = errors.New("remote error")
	ErrRemoteTimeout     = errors.New("remote timeout")
	ErrRemoteRateLimited = errors.New("remote rate limited")
	ErrRemoteUnavailable = errors.New("remote unavailable")
	ErrLocalTimeout      = errors.New("local timeout")
	ErrPollTimeout       = errors.New("poll budget exhausted")
)

// errBodyLimit caps how much of a remote error body ends up in messages.
const errBodyLimit = 200

// RemoteError describes a non-2xx response from the scraping service.
type RemoteError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote returned %s", e.Status)
	}
	return fmt.Sprintf("remote returned %s: %s", e.Status, e.Body)
}

// Unwrap maps the status code onto the sentinel kinds: 408 is a remote
// timeout, 429 rate limiting, 5xx unavailability, anything else a plain
// remote error.
func (e *RemoteError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusRequestTimeout:
		return ErrRemoteTimeout
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRemoteRateLimited
	case e.StatusCode >= http.StatusInternalServerError:
		return ErrRemoteUnavailable
	default:
		return ErrRemote
	}
}

func newRemoteError(statusCode int, status string, body []byte) *RemoteError {
	excerpt := strings.TrimSpace(string(body))
	if len(excerpt) > errBodyLimit {
		excerpt = excerpt[:errBodyLimit] + "..."
	}
	return &RemoteError{StatusCode: statusCode, Status: status, Body: excerpt}
}
