package provider

import (
	"fmt"

	"github.com/rohmanhakim/coverart-fetcher/pkg/failure"
)

type DiscoveryErrorCause string

const (
	ErrCausePageFetchFailed  = "failed to fetch provider page"
	ErrCausePageParseFailed  = "failed to parse provider page"
	ErrCauseUnsupportedURL   = "no provider supports url"
	ErrCauseMalformedPayload = "provider page payload malformed"
)

// DiscoveryError is a failed candidate lookup. Unlike per-image fetch
// failures, discovery failures abort the whole run for that page, so they
// carry the provider name for diagnostics.
type DiscoveryError struct {
	Message   string
	Provider  string
	Retryable bool
	Cause     DiscoveryErrorCause
	Err       error
}

func (e *DiscoveryError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("discovery error: %s", e.Cause)
	}
	return fmt.Sprintf("discovery error (%s): %s", e.Provider, e.Cause)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

func (e *DiscoveryError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *DiscoveryError) IsRetryable() bool {
	return e.Retryable
}
