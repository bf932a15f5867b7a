package metadata

import "time"

/*
Metadata Collected
- Fetch timestamps, status codes, durations
- Discovery outcomes per provider page
- Enqueued artifacts
- Classified error causes

Determinism guarantees:
- Metadata does not affect control flow
- Errors recorded here never reorder or abort fetches
- Output is stable given identical inputs

Metadata is write-only. No component may read metadata to influence fetch
decisions.
*/

/*
ErrorCause is a closed, canonical classification used exclusively for
observability (logging, metrics, reporting).

Rules:
- ErrorCause MUST NOT influence control flow.
- ErrorCause MUST NOT be used for retry, continuation, or abort decisions.
- Pipeline packages MAY map their local errors to ErrorCause,
  but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be
used.
*/
type ErrorCause int

const (
	// CauseUnknown - safe fallback for unclassified failures
	CauseUnknown ErrorCause = iota
	// CauseNetworkFailure - transport or remote availability failure
	CauseNetworkFailure
	// CausePolicyDisallow - access denial (403, rate limiting)
	CausePolicyDisallow
	// CauseContentInvalid - fetched content could not be processed
	// (unrecognized image signature, unparseable provider page)
	CauseContentInvalid
	// CauseStorageFailure - failure while persisting queued artifacts
	CauseStorageFailure
	// CauseRetryFailure - a bounded retry loop exhausted its attempts
	CauseRetryFailure
	// CauseInvariantViolation - internal consistency check failed
	CauseInvariantViolation
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseRetryFailure:
		return "retry_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	}
	return "unknown"
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL         AttributeKey = "url"
	AttrHost        AttributeKey = "host"
	AttrProvider    AttributeKey = "provider"
	AttrIndex       AttributeKey = "index"
	AttrContentType AttributeKey = "content_type"
	AttrHTTPStatus  AttributeKey = "http_status"
	AttrWritePath   AttributeKey = "write_path"
	AttrMessage     AttributeKey = "message"
	AttrField       AttributeKey = "field"
)

/*
runStats
  - Represents a terminal, derived summary of a completed run
  - Contains only aggregate counts and durations
  - Is computed by the caller after all requests finish
  - Is recorded exactly once
  - Must not influence fetch decisions
*/
type runStats struct {
	totalRequests int
	totalImages   int
	totalErrors   int
	durationMs    int64
}

// MetadataSink captures structured pipeline events.
// It must not:
// - perform I/O decisions
// - affect control flow
type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		wasRedirected bool,
	)

	RecordDiscovery(
		pageUrl string,
		providerName string,
		imageCount int,
		duration time.Duration,
	)

	RecordEnqueue(
		fileName string,
		mimeType string,
		sizeByte int,
	)
}

// RunFinalizer records the one-shot terminal summary of a run.
//
// Contract:
//   - MUST be called exactly once per run.
//   - MUST be called only after every request has terminated.
//   - Recorded stats MUST NOT influence control flow.
type RunFinalizer interface {
	RecordFinalRunStats(
		totalRequests int,
		totalImages int,
		totalErrors int,
		duration time.Duration,
	)
}

// NoopSink implements MetadataSink and RunFinalizer but does nothing.
// Callers (or tests) decide whether to inject Recorder or NoopSink;
// the purpose is to keep metadata orthogonal to pipeline behavior.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	wasRedirected bool,
) {
}

func (n *NoopSink) RecordDiscovery(
	pageUrl string,
	providerName string,
	imageCount int,
	duration time.Duration,
) {
}

func (n *NoopSink) RecordEnqueue(fileName string, mimeType string, sizeByte int) {}

func (n *NoopSink) RecordFinalRunStats(
	totalRequests int,
	totalImages int,
	totalErrors int,
	duration time.Duration,
) {
}
