package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/coverart-fetcher/internal/metadata"
	"github.com/rohmanhakim/coverart-fetcher/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseNetworkFailure     = "network issues"
	ErrCauseUnsupportedContent = "payload has no known image signature"
	ErrCauseEnqueueFailed      = "failed to enqueue image"
	ErrCausePostprocessFailed  = "postprocessor failed"
)

// FetchError is a per-candidate failure. ContentType carries the
// server-declared type for diagnostics when the payload was rejected;
// the accept decision itself never trusts it.
type FetchError struct {
	Message     string
	Retryable   bool
	Cause       FetchErrorCause
	ContentType string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher error: %s", e.Cause)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// IsRetryable returns whether this error is retryable
func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNetworkFailure:
		return metadata.CauseNetworkFailure
	case ErrCauseUnsupportedContent:
		return metadata.CauseContentInvalid
	case ErrCauseEnqueueFailed:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
