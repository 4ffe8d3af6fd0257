package arrivals

import (
	"context"
	"time"
)

const DefaultClockRate = 500 * time.Millisecond

// ClockTicker drives the live clock display. It is independent of the arrival cycles.
type ClockTicker struct {
	Interval  time.Duration
	Observers []ClockObserver

	Now func() time.Time
}

func (c *ClockTicker) Run(ctx context.Context) {
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultClockRate
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.tick()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

func (c *ClockTicker) tick() {
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}

	for _, observer := range c.Observers {
		observer.OnClockTick(now)
	}
}
