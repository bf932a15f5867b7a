package transport

import (
	"fmt"

	"github.com/rohmanhakim/coverart-fetcher/pkg/failure"
)

type TransportErrorCause string

const (
	ErrCauseTimeout               = "timeout"
	ErrCauseNetworkFailure        = "network issues"
	ErrCauseReadResponseBodyError = "failed to read response body"
	ErrCauseResponseTooLarge      = "response exceeded size limit"
	ErrCauseRequestForbidden      = "forbidden"
	ErrCauseRequestTooMany        = "too many requests"
	ErrCauseRequest4xx            = "4xx"
	ErrCauseRequest5xx            = "5xx"
	ErrCauseRedirectLimitExceeded = "reached redirect limit"
)

// TransportError distinguishes transfer failures (network issues, body
// read errors) from HTTP-status failures; both carry the status code when
// one was received.
type TransportError struct {
	Message    string
	Retryable  bool
	Cause      TransportErrorCause
	StatusCode int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s", e.Cause)
}

func (e *TransportError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// IsRetryable returns whether this error is retryable
func (e *TransportError) IsRetryable() bool {
	return e.Retryable
}
