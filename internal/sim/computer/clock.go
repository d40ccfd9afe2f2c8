package computer

import (
	"sync/atomic"
	"time"
)

// TickDuration is the fixed real-time quantum of one simulation tick.
const TickDuration = 50 * time.Millisecond

// Clock counts elapsed ticks for one computer. The authoritative goroutine
// is the only writer; script goroutines read concurrently.
type Clock struct {
	ticks atomic.Uint64
}

// Advance increments the tick counter. Called once per simulation tick.
func (c *Clock) Advance() {
	c.ticks.Add(1)
}

// Ticks returns the current tick count.
func (c *Clock) Ticks() uint64 {
	return c.ticks.Load()
}

// Elapsed returns the script-visible uptime in seconds (ticks x 50ms).
func (c *Clock) Elapsed() float64 {
	return float64(c.ticks.Load()) * TickDuration.Seconds()
}
