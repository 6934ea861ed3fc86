package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientParameters signals a search that does not meet the minimum field policy.
	ErrInsufficientParameters = errors.New("insufficient search parameters")
	// ErrInvalidParameter signals a malformed request parameter.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrAuditFailed signals that the search could not be logged, so it was not executed.
	ErrAuditFailed = errors.New("search audit failed")
	// ErrUpstream signals a failure of the remote search API.
	ErrUpstream = errors.New("upstream search api error")
	// ErrRateLimited signals that the client-side upstream rate limit was hit.
	ErrRateLimited = errors.New("rate limited")
)

// UpstreamError wraps ErrUpstream with the HTTP status the remote API returned.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: status %d", ErrUpstream.Error(), e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrUpstream.Error(), e.Status, e.Detail)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// NewUpstreamError creates an upstream error for the given status.
func NewUpstreamError(status int, detail string) error {
	return &UpstreamError{Status: status, Detail: detail}
}
