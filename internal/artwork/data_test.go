package artwork_test

import (
	"testing"

	"github.com/rohmanhakim/coverart-fetcher/internal/artwork"
	"github.com/stretchr/testify/assert"
)

func TestHasFront(t *testing.T) {
	assert.False(t, artwork.HasFront(nil))
	assert.False(t, artwork.HasFront([]artwork.Type{artwork.TypeBack, artwork.TypeBooklet}))
	assert.True(t, artwork.HasFront([]artwork.Type{artwork.TypeBack, artwork.TypeFront}))
}

func TestCandidateImageTypesAreCopied(t *testing.T) {
	types := []artwork.Type{artwork.TypeFront}
	c := artwork.NewCandidateImage(mustURL(t, "https://example.com/a.jpg"), types, "", false)

	got := c.Types()
	got[0] = artwork.TypeBack

	assert.Equal(t, []artwork.Type{artwork.TypeFront}, c.Types(),
		"mutating the returned slice must not affect the candidate")
}
