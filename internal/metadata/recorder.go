package metadata

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

/*
Recorder is the zerolog-backed MetadataSink.

Every event carries the run id so overlapping runs writing to the same
stream remain distinguishable. Events are recorded synchronously in the
order they are received from a single goroutine; no global ordering
across concurrent candidate fetches is guaranteed or needed. Ordering is
provided for debuggability, not causality.
*/
type Recorder struct {
	runID  string
	logger zerolog.Logger
}

// NewRecorder creates a Recorder writing structured events to w.
// A fresh run id is generated per recorder.
func NewRecorder(w io.Writer, level zerolog.Level) Recorder {
	runID := uuid.NewString()
	logger := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("run_id", runID).
		Logger()
	return Recorder{
		runID:  runID,
		logger: logger,
	}
}

func (r *Recorder) RunID() string {
	return r.runID
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	evt := r.logger.Warn().
		Time("observed_at", observedAt).
		Str("package", packageName).
		Str("action", action).
		Str("cause", cause.String()).
		Str("details", details)
	for _, attr := range attrs {
		evt = evt.Str(string(attr.Key), attr.Value)
	}
	evt.Msg("pipeline error")
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	wasRedirected bool,
) {
	r.logger.Debug().
		Str("url", fetchUrl).
		Int("status", httpStatus).
		Dur("duration", duration).
		Str("content_type", contentType).
		Bool("redirected", wasRedirected).
		Msg("fetch")
}

func (r *Recorder) RecordDiscovery(
	pageUrl string,
	providerName string,
	imageCount int,
	duration time.Duration,
) {
	r.logger.Debug().
		Str("page", pageUrl).
		Str("provider", providerName).
		Int("images", imageCount).
		Dur("duration", duration).
		Msg("discovery")
}

func (r *Recorder) RecordEnqueue(fileName string, mimeType string, sizeByte int) {
	r.logger.Info().
		Str("file", fileName).
		Str("mime", mimeType).
		Int("size", sizeByte).
		Msg("enqueued")
}

func (r *Recorder) RecordFinalRunStats(
	totalRequests int,
	totalImages int,
	totalErrors int,
	duration time.Duration,
) {
	stats := runStats{
		totalRequests: totalRequests,
		totalImages:   totalImages,
		totalErrors:   totalErrors,
		durationMs:    duration.Milliseconds(),
	}
	r.logger.Info().
		Int("requests", stats.totalRequests).
		Int("images", stats.totalImages).
		Int("errors", stats.totalErrors).
		Int64("duration_ms", stats.durationMs).
		Msg("run finished")
}
