// Package collector drives the scheduled reconciliation of actual indicator
// values against stored calendar events.
package collector

import (
	"sync"
	"time"
)

// Breaker is a consecutive-failure circuit breaker guarding the calendar
// source. After threshold consecutive fetch failures it opens and rejects
// runs until cooldown elapses; the first run after cooldown is a trial whose
// outcome either closes the breaker or restarts the cooldown. State is
// injected into the collector so it survives across runs and is visible to
// the monitor.
type Breaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration

	failures int
	openedAt time.Time

	now func() time.Time
}

func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 15 * time.Minute
	}
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Allow reports whether a run may proceed. Open state rejects until the
// cooldown has fully elapsed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures < b.threshold {
		return true
	}
	return b.now().Sub(b.openedAt) >= b.cooldown
}

// RecordFailure counts one failed fetch. Crossing the threshold (or failing
// a post-cooldown trial) stamps the open time, restarting the cooldown.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.threshold {
		b.openedAt = b.now()
	}
}

// RecordSuccess closes the breaker and clears the failure streak.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.openedAt = time.Time{}
}

// Open reports whether the breaker is currently rejecting runs.
func (b *Breaker) Open() bool {
	return !b.Allow()
}

// Failures returns the current consecutive-failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
