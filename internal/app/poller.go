package app

import (
	"context"
	"time"
)

const maxBackoff = 30 * time.Second

// StartPoller re-reads the current service date from Companion in the
// background so the header tracks changes made elsewhere. Repeated failures
// back off exponentially. It returns immediately.
func StartPoller(ctx context.Context, session *Session, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		failures := 0
		for {
			if _, ok := session.CurrentDate(ctx); ok {
				failures = 0
			} else if session.Status().Configured() {
				failures++
			}

			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// calculateBackoff doubles base for each consecutive failure, capped at
// maxBackoff. A failure never shortens the wait below base.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	limit := max(base, maxBackoff)
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= limit {
			return limit
		}
	}
	return d
}
