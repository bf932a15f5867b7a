package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// DurationPtr is a helper function to create a pointer to a time.Duration
func DurationPtr(d time.Duration) *time.Duration {
	return &d
}

// ExponentialBackoffDelay computes the delay before retry attempt N.
// attempt is 1-based: the first backoff (attempt=1) is the initial duration.
// Jitter between 0 and maxJitter is added on top of the capped exponential
// value so concurrent workers don't synchronize their retries.
func ExponentialBackoffDelay(
	attempt int,
	maxJitter time.Duration,
	rng rand.Rand,
	param BackoffParam,
) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	// initial * (multiplier ^ (attempt - 1)), capped at maxDuration
	exponent := float64(attempt - 1)
	delay := float64(param.initialDuration) * math.Pow(param.multiplier, exponent)
	if param.maxDuration > 0 && delay > float64(param.maxDuration) {
		delay = float64(param.maxDuration)
	}

	if maxJitter > 0 {
		delay += float64(rng.Int63n(int64(maxJitter)))
	}

	return time.Duration(delay)
}

// MaxDuration returns the largest duration in the slice, or zero for an
// empty slice.
func MaxDuration(durations []time.Duration) time.Duration {
	var max time.Duration
	for _, d := range durations {
		if d > max {
			max = d
		}
	}
	return max
}
