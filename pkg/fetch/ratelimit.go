package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RateLimiter manages request timing per host for politeness.
// The batch layer applies it between targets; the fetcher itself never delays
type RateLimiter struct {
	hostLastRequest   map[string]time.Time // hostname -> last request attempt time
	hostLastRequestMu sync.Mutex           // Protects hostLastRequest map
	defaultDelay      time.Duration        // Fallback delay if specific delay is invalid
	log               *logrus.Logger
}

// NewRateLimiter creates a RateLimiter
func NewRateLimiter(defaultDelay time.Duration, log *logrus.Logger) *RateLimiter {
	return &RateLimiter{
		hostLastRequest: make(map[string]time.Time),
		defaultDelay:    defaultDelay,
		log:             log,
	}
}

// ApplyDelay sleeps if the time since the last request to the host is less
// than minDelay. The sleep is interrupted by context cancellation
func (rl *RateLimiter) ApplyDelay(ctx context.Context, host string, minDelay time.Duration) {
	if minDelay <= 0 {
		minDelay = rl.defaultDelay
	}
	if minDelay <= 0 {
		return
	}

	// Read last request time safely
	rl.hostLastRequestMu.Lock()
	lastReqTime, exists := rl.hostLastRequest[host]
	rl.hostLastRequestMu.Unlock() // Unlock before potentially sleeping

	if !exists {
		return
	}

	elapsed := time.Since(lastReqTime)
	if elapsed >= minDelay {
		return
	}

	sleepDuration := minDelay - elapsed
	rl.log.WithFields(logrus.Fields{
		"host": host, "sleep": sleepDuration, "required_delay": minDelay, "elapsed": elapsed,
	}).Debug("Rate limit applying sleep")

	select {
	case <-time.After(sleepDuration):
	case <-ctx.Done():
		rl.log.Debugf("Rate limit sleep interrupted: %v", ctx.Err())
	}
	// Timestamp update via UpdateLastRequestTime happens *after* the request attempt in calling code
}

// UpdateLastRequestTime records the current time as the last request attempt time for the host.
// Call this *after* an HTTP request attempt to the host
func (rl *RateLimiter) UpdateLastRequestTime(host string) {
	rl.hostLastRequestMu.Lock()
	rl.hostLastRequest[host] = time.Now()
	rl.hostLastRequestMu.Unlock()
}
