// Package timer provides the per-question countdown primitive. A Countdown
// owns no interview state; it decrements once per tick and reports expiry
// through a callback invoked exactly once.
package timer

import (
	"fmt"
	"sync"
	"time"
)

// DefaultInterval is the production tick interval. Tests inject a shorter one.
const DefaultInterval = time.Second

// Thresholds for derived observability signals, as fractions of the duration.
const (
	lowFraction      = 0.25
	criticalFraction = 0.10
)

// Countdown counts down from a fixed duration and fires an expiry callback
// exactly once when the remaining time reaches zero, then stops itself.
// Re-arming is not supported; callers stop the old countdown and start a new
// one.
type Countdown struct {
	duration int
	interval time.Duration
	onExpire func()
	onTick   func(remaining int)

	mu        sync.Mutex
	remaining int
	stopped   bool
	expired   bool
	stop      chan struct{}
}

// Option configures a Countdown before it starts ticking.
type Option func(*Countdown)

// WithInitialRemaining seeds the countdown below its duration, used to resume
// a paused question without losing elapsed time. Values above the duration are
// clamped to the duration.
func WithInitialRemaining(seconds int) Option {
	return func(c *Countdown) {
		c.remaining = seconds
	}
}

// WithInterval overrides the tick interval. Intended for tests.
func WithInterval(d time.Duration) Option {
	return func(c *Countdown) {
		c.interval = d
	}
}

// WithOnTick registers an observer invoked after every non-final decrement.
func WithOnTick(fn func(remaining int)) Option {
	return func(c *Countdown) {
		c.onTick = fn
	}
}

// Start creates a countdown and begins ticking immediately.
func Start(durationSeconds int, onExpire func(), opts ...Option) (*Countdown, error) {
	if durationSeconds <= 0 {
		return nil, fmt.Errorf("invalid countdown duration %d", durationSeconds)
	}

	c := &Countdown{
		duration:  durationSeconds,
		remaining: durationSeconds,
		interval:  DefaultInterval,
		onExpire:  onExpire,
		stop:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.remaining <= 0 {
		return nil, fmt.Errorf("invalid initial remaining %d", c.remaining)
	}
	if c.remaining > c.duration {
		c.remaining = c.duration
	}

	go c.run()
	return c, nil
}

func (c *Countdown) run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.stopped {
				c.mu.Unlock()
				return
			}
			c.remaining--
			remaining := c.remaining
			expired := remaining <= 0
			if expired {
				c.stopped = true
				c.expired = true
			}
			c.mu.Unlock()

			if expired {
				if c.onExpire != nil {
					c.onExpire()
				}
				return
			}
			if c.onTick != nil {
				c.onTick(remaining)
			}
		}
	}
}

// Stop cancels future ticks. Stopping an already stopped or expired countdown
// is a no-op.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.stop)
}

// Remaining returns the seconds left on the countdown.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Duration returns the full duration the countdown was started with.
func (c *Countdown) Duration() int {
	return c.duration
}

// Expired reports whether the countdown ran to zero and fired its callback.
func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

// Percent returns the remaining time as a percentage of the duration.
func (c *Countdown) Percent() float64 {
	return float64(c.Remaining()) / float64(c.duration) * 100
}

// Low reports whether 25% or less of the duration remains.
func (c *Countdown) Low() bool {
	return float64(c.Remaining()) <= float64(c.duration)*lowFraction
}

// Critical reports whether 10% or less of the duration remains.
func (c *Countdown) Critical() bool {
	return float64(c.Remaining()) <= float64(c.duration)*criticalFraction
}
