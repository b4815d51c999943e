package app

import (
	"context"
	"log"
	"time"
)

// Poller re-runs a client's read-decide-render cycle on a fixed interval.
// There is no push: every state change reaches a client on its next cycle.
type Poller struct {
	interval time.Duration
}

func NewPoller(interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Poller{interval: interval}
}

// Interval returns the polling cadence.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Run invokes cycle immediately, then on every tick and on every kick, until ctx is done.
// A failing cycle is logged and retried on the next tick; it never stops the loop.
func (p *Poller) Run(ctx context.Context, kick <-chan struct{}, cycle func(ctx context.Context) error) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("poll cycle failed, retrying in %s: %v", p.interval, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case _, ok := <-kick:
			if !ok {
				kick = nil
			}
		}
	}
}
