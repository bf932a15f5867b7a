package metadata_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rohmanhakim/coverart-fetcher/internal/metadata"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var events []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var evt map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &evt), "line: %s", line)
		events = append(events, evt)
	}
	return events
}

func TestRecorderEmitsStructuredEvents(t *testing.T) {
	var buf bytes.Buffer
	rec := metadata.NewRecorder(&buf, zerolog.DebugLevel)

	rec.RecordFetch("https://example.com/a.jpg", 200, 10*time.Millisecond, "image/jpeg", true)
	rec.RecordDiscovery("https://example.com/album", "bandcamp", 2, 5*time.Millisecond)
	rec.RecordEnqueue("cover.0.jpg", "image/jpeg", 1024)
	rec.RecordFinalRunStats(1, 2, 0, time.Second)

	events := decodeLines(t, &buf)
	require.Len(t, events, 4)

	assert.Equal(t, "fetch", events[0]["message"])
	assert.Equal(t, "https://example.com/a.jpg", events[0]["url"])
	assert.Equal(t, true, events[0]["redirected"])

	assert.Equal(t, "discovery", events[1]["message"])
	assert.Equal(t, "bandcamp", events[1]["provider"])

	assert.Equal(t, "enqueued", events[2]["message"])

	assert.Equal(t, "run finished", events[3]["message"])
	assert.Equal(t, float64(2), events[3]["images"])

	// every event carries the run id
	for _, evt := range events {
		assert.Equal(t, rec.RunID(), evt["run_id"])
	}
}

func TestRecorderErrorCarriesCauseAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	rec := metadata.NewRecorder(&buf, zerolog.DebugLevel)

	rec.RecordError(
		time.Now(),
		"fetcher",
		"ImageFetcher.FetchImages",
		metadata.CauseContentInvalid,
		"no known image signature",
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, "https://example.com/nope"),
			metadata.NewAttr(metadata.AttrContentType, "text/html"),
		},
	)

	events := decodeLines(t, &buf)
	require.Len(t, events, 1)
	assert.Equal(t, "content_invalid", events[0]["cause"])
	assert.Equal(t, "https://example.com/nope", events[0]["url"])
	assert.Equal(t, "text/html", events[0]["content_type"])
}

func TestRecorderRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	rec := metadata.NewRecorder(&buf, zerolog.InfoLevel)

	// Debug-level events are suppressed at info level
	rec.RecordFetch("https://example.com/a.jpg", 200, time.Millisecond, "image/jpeg", false)
	assert.Empty(t, buf.String())

	rec.RecordEnqueue("cover.0.jpg", "image/jpeg", 10)
	assert.NotEmpty(t, buf.String())
}

func TestErrorCauseStrings(t *testing.T) {
	assert.Equal(t, "unknown", metadata.CauseUnknown.String())
	assert.Equal(t, "network_failure", metadata.CauseNetworkFailure.String())
	assert.Equal(t, "retry_failure", metadata.CauseRetryFailure.String())
}
