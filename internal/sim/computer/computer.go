package computer

import (
	"context"
	"sync"

	"voxelscript.dev/internal/protocol"
)

// SoundCategory is the throttled category used by the speaker surface.
const SoundCategory = "sound"

// Computer is one sandboxed script-execution context: its tick clock, alarm
// and timer registries, event inbox, and per-tick rate budget. The
// authoritative goroutine drives Tick; script goroutines call everything else.
// All mutable state except the clock is guarded by mu.
type Computer struct {
	ID   string
	Name string

	clock Clock

	mu     sync.Mutex
	alarms *AlarmRegistry
	timers *TimerRegistry
	budget *TickBudget
	events *EventQueue
	day    int
	hour   float64
	closed bool
}

func New(id, name string, burstCeiling int) *Computer {
	return &Computer{
		ID:     id,
		Name:   name,
		alarms: NewAlarmRegistry(),
		timers: NewTimerRegistry(),
		budget: NewTickBudget(burstCeiling),
		events: NewEventQueue(),
	}
}

// Startup seeds the in-game time sample. Alarms never survive a context
// lifecycle boundary, so the registries start empty.
func (c *Computer) Startup(day int, hour float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.day = day
	c.hour = hour
	c.alarms.Clear()
	c.timers.Clear()
	c.budget.ResetTick()
}

// Tick advances this computer by one simulation tick: clock, then due timers
// and alarms (queued as events), then the fresh rate budget. Called only by
// the authoritative goroutine. The alarm scan is skipped when the time sample
// has not changed.
func (c *Computer) Tick(day int, hour float64) {
	c.clock.Advance()
	nowTick := c.clock.Ticks()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.budget.ResetTick()

	var fired []protocol.Event
	if day != c.day || hour != c.hour {
		for _, token := range c.alarms.Due(day, hour) {
			fired = append(fired, protocol.Event{Name: "alarm", Args: []any{token}})
		}
		c.day = day
		c.hour = hour
	}
	for _, token := range c.timers.Due(nowTick) {
		fired = append(fired, protocol.Event{Name: "timer", Args: []any{token}})
	}
	c.mu.Unlock()

	for _, e := range fired {
		c.events.Push(e)
	}
}

// Shutdown clears the registries and closes the event inbox. Pending
// main-thread commands are the dispatcher's to cancel; see world.Leave.
func (c *Computer) Shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.alarms.Clear()
	c.timers.Clear()
	c.mu.Unlock()
	c.events.Close()
}

// Uptime returns elapsed seconds since startup (os.clock).
func (c *Computer) Uptime() float64 { return c.clock.Elapsed() }

// Ticks returns the tick counter.
func (c *Computer) Ticks() uint64 { return c.clock.Ticks() }

// Time returns the current in-game time sample.
func (c *Computer) Time() (day int, hour float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.day, c.hour
}

// SetAlarm schedules a wake-up at the next occurrence of hour.
func (c *Computer) SetAlarm(hour float64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alarms.Schedule(hour, c.day, c.hour)
}

// CancelAlarm is idempotent; cancelling a fired or unknown token is a no-op.
func (c *Computer) CancelAlarm(token int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alarms.Cancel(token)
}

// StartTimer schedules a "timer" event durationTicks from now.
func (c *Computer) StartTimer(durationTicks uint64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timers.Start(c.clock.Ticks(), durationTicks)
}

// CancelTimer is idempotent.
func (c *Computer) CancelTimer(token int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timers.Cancel(token)
}

// TryAdmitSound applies the per-tick sound budget. Purely local to the
// current tick's state; never crosses the thread boundary.
func (c *Computer) TryAdmitSound(burstEligible bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	return c.budget.TryAdmit(SoundCategory, burstEligible)
}

// QueueEvent appends a script- or world-originated event to the inbox.
// Returns false once the computer is shut down.
func (c *Computer) QueueEvent(name string, args ...any) bool {
	return c.events.Push(protocol.Event{Name: name, Args: args})
}

// NextEvent suspends until the next queued event is available.
func (c *Computer) NextEvent(ctx context.Context) (protocol.Event, error) {
	return c.events.Next(ctx)
}

// PendingEvents reports the inbox depth (tick log stat).
func (c *Computer) PendingEvents() int { return c.events.Len() }
