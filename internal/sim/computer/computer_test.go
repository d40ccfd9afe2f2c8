package computer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func tickTo(c *Computer, day int, hour float64, n int) {
	for i := 0; i < n; i++ {
		c.Tick(day, hour)
	}
}

func TestComputer_ClockAdvancesFiftyMillisPerTick(t *testing.T) {
	c := New("C1", "test", 8)
	c.Startup(0, 6)
	tickTo(c, 0, 6, 20)
	if got := c.Uptime(); got != 1.0 {
		t.Fatalf("uptime after 20 ticks = %v, want 1.0", got)
	}
	if got := c.Ticks(); got != 20 {
		t.Fatalf("ticks = %d", got)
	}
}

func TestComputer_AlarmFiresAsEvent(t *testing.T) {
	c := New("C1", "test", 8)
	c.Startup(1, 5.0)

	token, err := c.SetAlarm(6.0)
	if err != nil {
		t.Fatalf("setAlarm: %v", err)
	}

	// Advance in-game time but stay short of the due hour.
	c.Tick(1, 5.5)
	if n := c.PendingEvents(); n != 0 {
		t.Fatalf("alarm fired before due time, %d events queued", n)
	}

	c.Tick(1, 6.0)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	e, err := c.NextEvent(ctx)
	if err != nil {
		t.Fatalf("nextEvent: %v", err)
	}
	if e.Name != "alarm" || len(e.Args) != 1 || e.Args[0] != token {
		t.Fatalf("event = %+v, want alarm(%d)", e, token)
	}

	// Never double-fires, cancel after fire is a no-op.
	c.CancelAlarm(token)
	c.Tick(1, 7.0)
	if n := c.PendingEvents(); n != 0 {
		t.Fatalf("alarm fired twice")
	}
}

func TestComputer_AlarmAcrossDayBoundary(t *testing.T) {
	c := New("C1", "test", 8)
	c.Startup(1, 20.0)

	token, err := c.SetAlarm(6.0)
	if err != nil {
		t.Fatalf("setAlarm: %v", err)
	}
	c.Tick(1, 23.5)
	if n := c.PendingEvents(); n != 0 {
		t.Fatalf("alarm for tomorrow fired today")
	}
	c.Tick(2, 6.5)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	e, err := c.NextEvent(ctx)
	if err != nil || e.Name != "alarm" || e.Args[0] != token {
		t.Fatalf("event = %+v err=%v, want alarm(%d)", e, err, token)
	}
}

func TestComputer_TimerFiresAfterDuration(t *testing.T) {
	c := New("C1", "test", 8)
	c.Startup(0, 6)

	token := c.StartTimer(3)
	tickTo(c, 0, 6, 2)
	if n := c.PendingEvents(); n != 0 {
		t.Fatalf("timer fired early")
	}
	c.Tick(0, 6)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	e, err := c.NextEvent(ctx)
	if err != nil || e.Name != "timer" || e.Args[0] != token {
		t.Fatalf("event = %+v err=%v, want timer(%d)", e, err, token)
	}
}

func TestComputer_ShutdownClearsAndCloses(t *testing.T) {
	c := New("C1", "test", 8)
	c.Startup(0, 5)
	if _, err := c.SetAlarm(6); err != nil {
		t.Fatalf("setAlarm: %v", err)
	}
	c.StartTimer(1)
	c.QueueEvent("custom", "x")

	c.Shutdown()

	if c.QueueEvent("late") {
		t.Fatalf("queueEvent accepted after shutdown")
	}
	_, err := c.NextEvent(context.Background())
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("nextEvent after shutdown = %v, want ErrQueueClosed", err)
	}
	// Ticking a closed computer must not fire anything or panic.
	c.Tick(0, 7)
}

func TestComputer_QueueEventOrdering(t *testing.T) {
	c := New("C1", "test", 8)
	c.Startup(0, 5)
	c.QueueEvent("a")
	c.QueueEvent("b", 1, "two")

	ctx := context.Background()
	e, _ := c.NextEvent(ctx)
	if e.Name != "a" {
		t.Fatalf("first event %q", e.Name)
	}
	e, _ = c.NextEvent(ctx)
	if e.Name != "b" || len(e.Args) != 2 {
		t.Fatalf("second event %+v", e)
	}
}

func TestComputer_SoundBudgetResetsEachTick(t *testing.T) {
	c := New("C1", "test", 2)
	c.Startup(0, 5)

	if !c.TryAdmitSound(false) {
		t.Fatalf("first sound rejected")
	}
	if c.TryAdmitSound(false) {
		t.Fatalf("second sound in same tick admitted")
	}
	c.Tick(0, 5)
	if !c.TryAdmitSound(false) {
		t.Fatalf("sound rejected after tick reset")
	}
}
