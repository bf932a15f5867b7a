package timeutil_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rohmanhakim/coverart-fetcher/pkg/timeutil"
	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoffDelayGrowsAndCaps(t *testing.T) {
	param := timeutil.NewBackoffParam(100*time.Millisecond, 2.0, time.Second)
	rng := rand.New(rand.NewSource(1))

	d1 := timeutil.ExponentialBackoffDelay(1, 0, *rng, param)
	d2 := timeutil.ExponentialBackoffDelay(2, 0, *rng, param)
	d3 := timeutil.ExponentialBackoffDelay(3, 0, *rng, param)

	assert.Equal(t, 100*time.Millisecond, d1)
	assert.Equal(t, 200*time.Millisecond, d2)
	assert.Equal(t, 400*time.Millisecond, d3)

	// Far beyond the cap
	d10 := timeutil.ExponentialBackoffDelay(10, 0, *rng, param)
	assert.Equal(t, time.Second, d10)
}

func TestExponentialBackoffDelayJitterBounded(t *testing.T) {
	param := timeutil.NewBackoffParam(100*time.Millisecond, 2.0, time.Second)
	rng := rand.New(rand.NewSource(42))

	jitter := 50 * time.Millisecond
	for i := 0; i < 20; i++ {
		d := timeutil.ExponentialBackoffDelay(1, jitter, *rng, param)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.Less(t, d, 100*time.Millisecond+jitter)
	}
}

func TestMaxDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), timeutil.MaxDuration(nil))
	assert.Equal(t, 3*time.Second, timeutil.MaxDuration([]time.Duration{
		time.Second, 3 * time.Second, 2 * time.Second,
	}))
}
