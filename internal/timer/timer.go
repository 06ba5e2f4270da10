package timer

import (
	"time"

	"go-match/internal/schedule"
)

// Clock counts whole seconds for one round. Ticks are deferred calls on the
// scheduler's event loop.
type Clock struct {
	sched    schedule.Scheduler
	interval time.Duration
	elapsed  int
	epoch    uint64
	running  bool
	task     schedule.Task
	onTick   func(elapsed int)
}

// New returns a stopped clock ticking once per second.
func New(sched schedule.Scheduler) *Clock {
	return &Clock{sched: sched, interval: time.Second}
}

// Start resets the clock to zero and starts ticking. onTick runs after each
// increment and may stop the clock.
func (c *Clock) Start(onTick func(elapsed int)) {
	c.Reset()
	c.onTick = onTick
	c.running = true
	c.schedule(c.epoch)
}

// Stop freezes the elapsed time. No tick is delivered after Stop returns.
func (c *Clock) Stop() {
	c.epoch++
	c.running = false
	if c.task != nil {
		c.task.Stop()
		c.task = nil
	}
}

// Reset stops the clock and zeroes it.
func (c *Clock) Reset() {
	c.Stop()
	c.elapsed = 0
	c.onTick = nil
}

// Elapsed returns the whole seconds counted so far.
func (c *Clock) Elapsed() int {
	return c.elapsed
}

// Running reports whether the clock is ticking.
func (c *Clock) Running() bool {
	return c.running
}

func (c *Clock) schedule(epoch uint64) {
	c.task = c.sched.AfterFunc(c.interval, func() {
		if epoch != c.epoch {
			return
		}
		c.elapsed++
		c.schedule(epoch)
		if c.onTick != nil {
			c.onTick(c.elapsed)
		}
	})
}
