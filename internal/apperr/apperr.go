// Package apperr defines the error taxonomy shared across the ingestion,
// task, and report subsystems. Errors are sentinel values wrapped with
// context via fmt.Errorf("...: %w", ...), not exception classes, so callers
// use errors.Is/errors.As the way the rest of the codebase does.
package apperr

import (
	"errors"
	"strconv"
)

var (
	// Validation indicates malformed input (bad URL, bad interval, unknown
	// schedule_type). Surfaced as 4xx at the HTTP boundary.
	Validation = errors.New("validation error")

	// NotFound indicates a missing entity. Surfaced as 404.
	NotFound = errors.New("not found")

	// Conflict indicates a duplicate (e.g. url_hash already exists).
	// Surfaced as 409.
	Conflict = errors.New("conflict")

	// UpstreamHTTP indicates the remote site returned a >=400 status.
	// Wrap with Status to distinguish retry policy.
	UpstreamHTTP = errors.New("upstream http error")

	// UpstreamTimeout indicates a network-level timeout talking to an
	// external collaborator. Retryable.
	UpstreamTimeout = errors.New("upstream timeout")

	// UpstreamConnect indicates a network-level connection failure.
	// Retryable.
	UpstreamConnect = errors.New("upstream connect error")

	// Parse indicates the fetched content's structure was unexpected.
	// Non-retryable at this layer.
	Parse = errors.New("parse error")

	// BackendUnavailable indicates the LLM, search, or database backend is
	// unreachable. Retryable at the task level.
	BackendUnavailable = errors.New("backend unavailable")

	// Cancelled indicates a task observed cooperative cancellation.
	Cancelled = errors.New("cancelled")

	// Internal indicates a programmer error, logged with detail and
	// surfaced generically.
	Internal = errors.New("internal error")
)

// HTTPStatusError wraps UpstreamHTTP with the remote status code so callers
// can distinguish 403/404/5xx retry policy per spec §4.2.
type HTTPStatusError struct {
	Status int
	URL    string
}

func (e *HTTPStatusError) Error() string {
	return "upstream http error: status " + strconv.Itoa(e.Status) + " for " + e.URL
}

func (e *HTTPStatusError) Unwrap() error { return UpstreamHTTP }
