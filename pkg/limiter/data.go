package limiter

import "time"

// timing-related data used to track when a provider host was last hit
type hostTiming struct {
	lastFetchAt time.Time
	hostDelay   time.Duration
}

func (h *hostTiming) HostDelay() time.Duration {
	return h.hostDelay
}

func (h *hostTiming) LastFetchAt() time.Time {
	return h.lastFetchAt
}
