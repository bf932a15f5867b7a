package maximise_test

import (
	"net/url"
	"testing"

	"github.com/rohmanhakim/coverart-fetcher/internal/maximise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid url %q: %v", raw, err)
	}
	return *u
}

func TestFromSliceYieldsInOrderThenExhausts(t *testing.T) {
	c1 := maximise.NewCandidate(mustURL(t, "https://example.com/1.jpg"), "", nil)
	c2 := maximise.NewCandidate(mustURL(t, "https://example.com/2.jpg"), "", nil)

	it := maximise.FromSlice([]maximise.Candidate{c1, c2})

	got, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, c1.URL(), got.URL())

	got, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, c2.URL(), got.URL())

	_, ok = it.Next()
	assert.False(t, ok)

	// non-restartable: exhaustion is permanent
	_, ok = it.Next()
	assert.False(t, ok)
}

func TestEmptyIsImmediatelyExhausted(t *testing.T) {
	it := maximise.Empty()
	_, ok := it.Next()
	assert.False(t, ok)
}

func TestFromFuncLatchesAfterFirstEnd(t *testing.T) {
	calls := 0
	it := maximise.FromFunc(func() (maximise.Candidate, bool) {
		calls++
		if calls == 1 {
			return maximise.NewCandidate(mustURL(t, "https://example.com/a.jpg"), "", nil), true
		}
		return maximise.Candidate{}, false
	})

	_, ok := it.Next()
	require.True(t, ok)
	_, ok = it.Next()
	require.False(t, ok)

	// The pull function must not be consulted again once exhausted.
	_, ok = it.Next()
	assert.False(t, ok)
	assert.Equal(t, 2, calls)
}

func TestCandidateHeadersAreCopied(t *testing.T) {
	c := maximise.NewCandidate(
		mustURL(t, "https://example.com/a.jpg"),
		"cover",
		map[string]string{"Referer": "https://example.com/"},
	)

	h := c.Headers()
	h["Referer"] = "mutated"

	assert.Equal(t, "https://example.com/", c.Headers()["Referer"])
	assert.Nil(t, maximise.NewCandidate(mustURL(t, "https://example.com/b.jpg"), "", nil).Headers())
}

func TestNoMaximisation(t *testing.T) {
	src := maximise.NoMaximisation()
	it := src.Maximise(mustURL(t, "https://example.com/a.jpg"))
	_, ok := it.Next()
	assert.False(t, ok)
}
