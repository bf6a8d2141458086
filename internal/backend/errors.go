package backend

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors forming the backend failure taxonomy. Adapters tag every
// failure with one of these so the pipeline can classify without inspecting
// provider-specific error types.
var (
	// ErrUnavailable: missing or unusable credentials/engine; skip the
	// backend, nothing to retry.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrTimeout: the per-backend deadline elapsed; the chain advances to
	// the next backend rather than re-invoking this one.
	ErrTimeout = errors.New("backend timeout")
	// ErrRateLimited: quota exhausted for this invocation.
	ErrRateLimited = errors.New("backend rate limited")
	// ErrAuth: credentials rejected; terminal for the backend this session.
	ErrAuth = errors.New("backend auth error")
	// ErrMalformedResponse: the backend answered but the response could not
	// be interpreted; treated as zero detections.
	ErrMalformedResponse = errors.New("backend malformed response")
)

// Wrap tags err with a sentinel marker and backend context.
func Wrap(marker error, name string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", marker, name)
	}
	return fmt.Errorf("%w: %s: %w", marker, name, err)
}

// Kind maps an adapter error to its taxonomy name for diagnostics. Context
// deadline errors count as timeouts even when an adapter forgot to tag them.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	default:
		return "failed"
	}
}
