package queue

import (
	"fmt"

	"github.com/rohmanhakim/coverart-fetcher/internal/metadata"
	"github.com/rohmanhakim/coverart-fetcher/pkg/failure"
)

type QueueErrorCause string

const (
	ErrCauseDiskFull              = "disk is full"
	ErrCauseWriteFailure          = "write failed"
	ErrCauseHashComputationFailed = "hash computation failed"
	ErrCauseEncodeFailure         = "failed to encode provenance"
)

type QueueError struct {
	Message   string
	Retryable bool
	Cause     QueueErrorCause
	Path      string
}

func (e *QueueError) Error() string {
	return fmt.Sprintf("queue error: %s", e.Cause)
}

func (e *QueueError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapQueueErrorToMetadataCause maps queue-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapQueueErrorToMetadataCause(err *QueueError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseDiskFull:
		return metadata.CauseStorageFailure
	case ErrCauseWriteFailure:
		return metadata.CauseStorageFailure
	case ErrCauseEncodeFailure:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
