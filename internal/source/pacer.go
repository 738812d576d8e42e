package source

import (
	"context"
	"sync"
	"time"
)

// Pacer spaces outgoing requests so repeated attachment downloads don't
// hammer the publication host. Waits are cancellable: an aborted run must
// not sit out a scheduled slot.
type Pacer struct {
	mu            sync.Mutex
	nextAllowedAt time.Time
	interval      time.Duration
}

func NewPacer(requestsPerSecond int) *Pacer {
	interval := time.Second
	if requestsPerSecond > 0 {
		interval = time.Second / time.Duration(requestsPerSecond)
	}
	return &Pacer{interval: interval}
}

// Wait blocks until the caller's slot comes up or ctx is done. The slot is
// claimed under the lock, so concurrent callers queue one interval apart.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	scheduled := now
	if p.nextAllowedAt.After(now) {
		scheduled = p.nextAllowedAt
	}
	p.nextAllowedAt = scheduled.Add(p.interval)
	p.mu.Unlock()

	sleep := time.Until(scheduled)
	if sleep <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(sleep)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
