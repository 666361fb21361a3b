package marketdata

import (
	"context"
	"sync"
	"time"

	"token-autotrader/internal/observability"
)

// rateGate enforces a minimum spacing between dispatched requests. The
// mutex is held across the wait, so concurrent callers queue and dispatch
// strictly one at a time. There is no burst allowance.
type rateGate struct {
	mu          sync.Mutex
	minInterval time.Duration
	last        time.Time
}

func newRateGate(minInterval time.Duration) *rateGate {
	return &rateGate{minInterval: minInterval}
}

// wait blocks until at least minInterval has elapsed since the previous
// dispatch, then records the new dispatch time. Cancelling the context
// releases the caller without consuming a slot.
func (g *rateGate) wait(ctx context.Context) error {
	start := time.Now()
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.last.IsZero() {
		if remaining := g.minInterval - time.Since(g.last); remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	g.last = time.Now()
	observability.RecordRateGateWait(time.Since(start).Seconds())
	return nil
}
