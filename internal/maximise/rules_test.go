package maximise_test

import (
	"testing"

	"github.com/rohmanhakim/coverart-fetcher/internal/maximise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(it maximise.Iterator) []string {
	var urls []string
	for {
		c, ok := it.Next()
		if !ok {
			return urls
		}
		u := c.URL()
		urls = append(urls, u.String())
	}
}

func TestBandcampRule(t *testing.T) {
	rules := maximise.DefaultRules()

	it := rules.Maximise(mustURL(t, "https://f4.bcbits.com/img/a1234567890_16.jpg"))
	assert.Equal(t, []string{
		"https://f4.bcbits.com/img/a1234567890_0.jpg",
		"https://f4.bcbits.com/img/a1234567890_10.jpg",
	}, drain(it))
}

func TestBandcampRuleDoesNotRepeatCurrentSize(t *testing.T) {
	rules := maximise.DefaultRules()

	// already the large variant: only the original remains
	it := rules.Maximise(mustURL(t, "https://f4.bcbits.com/img/a1234567890_10.jpg"))
	assert.Equal(t, []string{
		"https://f4.bcbits.com/img/a1234567890_0.jpg",
	}, drain(it))
}

func TestBandcampRuleIgnoresOtherHosts(t *testing.T) {
	candidates := maximise.BandcampRule(mustURL(t, "https://example.com/img/a123_16.jpg"))
	assert.Empty(t, candidates)
}

func TestAppleMusicRule(t *testing.T) {
	rules := maximise.DefaultRules()

	it := rules.Maximise(mustURL(t, "https://is1-ssl.mzstatic.com/image/thumb/Music/v4/ab/cd/ef/source/600x600bb.jpg"))
	assert.Equal(t, []string{
		"https://is1-ssl.mzstatic.com/image/thumb/Music/v4/ab/cd/ef/source/99999x99999bb.jpg",
		"https://is1-ssl.mzstatic.com/image/thumb/Music/v4/ab/cd/ef/source/1200x1200bb.jpg",
	}, drain(it))
}

func TestGenericThumbnailRule(t *testing.T) {
	rules := maximise.DefaultRules()

	it := rules.Maximise(mustURL(t, "https://blog.example.com/uploads/cover-150x150.jpg"))
	assert.Equal(t, []string{
		"https://blog.example.com/uploads/cover.jpg",
	}, drain(it))
}

func TestUnrecognizedURLYieldsEmptySequence(t *testing.T) {
	rules := maximise.DefaultRules()

	it := rules.Maximise(mustURL(t, "https://example.com/plain.jpg"))
	_, ok := it.Next()
	require.False(t, ok, "no rule applies, sequence must be empty")
}
