package limiter

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rohmanhakim/coverart-fetcher/pkg/timeutil"
)

// RateLimiter
// Specialized component to keep provider page fetches polite.
// Responsibilities:
// - Bookkeep each hostname's last fetch timestamp
// - Compute the delay to apply before the next fetch to a hostname
// - Never throttle sibling image candidates; only discovery page fetches
//   go through the limiter
type RateLimiter interface {
	SetBaseDelay(baseDelay time.Duration)
	SetJitter(jitter time.Duration)
	SetRandomSeed(randomSeed int64)
	SetHostDelay(host string, delay time.Duration)
	MarkLastFetchAsNow(host string)
	ResolveDelay(host string) time.Duration
	Wait(ctx context.Context, host string) error
}

type ConcurrentRateLimiter struct {
	mu          sync.RWMutex
	rngMu       sync.Mutex
	baseDelay   time.Duration
	jitter      time.Duration
	hostTimings map[string]hostTiming
	rng         *rand.Rand
}

func NewConcurrentRateLimiter() *ConcurrentRateLimiter {
	return &ConcurrentRateLimiter{
		hostTimings: make(map[string]hostTiming),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ConcurrentRateLimiter) SetBaseDelay(baseDelay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.baseDelay = baseDelay
}

func (r *ConcurrentRateLimiter) SetJitter(jitter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jitter = jitter
}

func (r *ConcurrentRateLimiter) SetRandomSeed(randomSeed int64) {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()

	r.rng = rand.New(rand.NewSource(randomSeed))
}

// SetHostDelay sets a per-host delay, separate from the global base delay.
// Used for provider sites that publish their own request-rate guidance.
func (r *ConcurrentRateLimiter) SetHostDelay(host string, delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	currentHostTiming := r.hostTimings[host]
	currentHostTiming.hostDelay = delay
	r.hostTimings[host] = currentHostTiming
}

// MarkLastFetchAsNow records that the given host was just fetched.
func (r *ConcurrentRateLimiter) MarkLastFetchAsNow(host string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	currentHostTiming := r.hostTimings[host]
	currentHostTiming.lastFetchAt = time.Now()
	r.hostTimings[host] = currentHostTiming
}

// computeJitter returns a pseudo-random duration between 0 and max (exclusive)
func (r *ConcurrentRateLimiter) computeJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}

	r.rngMu.Lock()
	defer r.rngMu.Unlock()

	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return time.Duration(r.rng.Int63n(int64(max)))
}

// ResolveDelay computes the remaining wait before the given host may be
// fetched again.
// FinalDelay = max(BaseDelay, HostDelay) + Jitter, minus the time already
// elapsed since the last fetch. A host never seen before waits nothing.
func (r *ConcurrentRateLimiter) ResolveDelay(host string) time.Duration {
	// copy needed state under read lock, then compute without holding r.mu
	r.mu.RLock()
	currentHostTiming, exists := r.hostTimings[host]
	base := r.baseDelay
	jitter := r.jitter
	r.mu.RUnlock()

	if !exists {
		return time.Duration(0)
	}

	delays := []time.Duration{base, currentHostTiming.hostDelay}
	finalDelay := timeutil.MaxDuration(delays)
	finalDelay += r.computeJitter(jitter)

	elapsed := time.Since(currentHostTiming.lastFetchAt)
	if elapsed < finalDelay {
		return finalDelay - elapsed
	}

	return time.Duration(0)
}

// Wait blocks until the host may be fetched, then marks it as fetched.
// Returns early with the context error if ctx is done first.
func (r *ConcurrentRateLimiter) Wait(ctx context.Context, host string) error {
	delay := r.ResolveDelay(host)
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.MarkLastFetchAsNow(host)
	return nil
}

func (r *ConcurrentRateLimiter) GetBaseDelay() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.baseDelay
}

func (r *ConcurrentRateLimiter) GetJitter() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.jitter
}
