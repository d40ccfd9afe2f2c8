package dispatch

import (
	"context"
	"fmt"
	"log"
	"sync"

	"voxelscript.dev/internal/protocol"
)

// Outcome is the resolved result of one unit of main-thread work: success
// with optional return values, or a structured failure. Never a raw panic.
type Outcome struct {
	OK      bool
	Code    string
	Message string
	Values  []any
}

func destroyedOutcome() Outcome {
	return Outcome{OK: false, Code: protocol.ErrDestroyed, Message: "context destroyed"}
}

// Task is one unit of work to run on the authoritative goroutine.
type Task struct {
	Owner string // computer id, used for cancellation on teardown
	Label string // e.g. "turtle.forward", for tick logs
	Run   func() Outcome
}

// Executed records one drained task and its outcome, for tick logging.
type Executed struct {
	Owner   string
	Label   string
	Outcome Outcome
}

type pending struct {
	task Task
	done chan Outcome // cap 1; nil for detached submits
}

// Dispatcher is the cross-thread bridge: sessions submit tasks from their own
// goroutines, the authoritative goroutine drains and runs them once per tick.
// Each submitted task is executed exactly once, or resolved as destroyed if
// its owner (or the dispatcher) is torn down before it is drained.
type Dispatcher struct {
	logger *log.Logger

	mu     sync.Mutex
	queue  []*pending
	closed bool
}

func New(logger *log.Logger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

// Submit enqueues the task and blocks the calling goroutine until the
// authoritative goroutine has run it and written its outcome. There is no
// timeout at this layer; ctx lets an abandoning caller stop waiting, but the
// task itself still runs (or is cancelled) exactly once either way.
func (d *Dispatcher) Submit(ctx context.Context, t Task) (Outcome, error) {
	p := &pending{task: t, done: make(chan Outcome, 1)}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return destroyedOutcome(), nil
	}
	d.queue = append(d.queue, p)
	d.mu.Unlock()

	select {
	case out := <-p.done:
		return out, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// SubmitDetached enqueues a task nobody waits on (fire-and-forget, e.g. sound
// emission). Failed outcomes are logged instead of delivered.
func (d *Dispatcher) SubmitDetached(t Task) {
	p := &pending{task: t}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.queue = append(d.queue, p)
	d.mu.Unlock()
}

// DrainAndRun swaps out the current queue and executes it in FIFO submission
// order on the calling goroutine. Work submitted while the drain is running
// lands in the fresh queue and waits for the next tick. A panicking task
// resolves as an E_INTERNAL outcome and never aborts its siblings.
func (d *Dispatcher) DrainAndRun() []Executed {
	d.mu.Lock()
	batch := d.queue
	d.queue = nil
	d.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	out := make([]Executed, 0, len(batch))
	for _, p := range batch {
		o := runRecover(p.task)
		if p.done != nil {
			p.done <- o
		} else if !o.OK && d.logger != nil {
			d.logger.Printf("detached task %s (%s) failed: %s %s", p.task.Label, p.task.Owner, o.Code, o.Message)
		}
		out = append(out, Executed{Owner: p.task.Owner, Label: p.task.Label, Outcome: o})
	}
	return out
}

func runRecover(t Task) (o Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o = Outcome{OK: false, Code: protocol.ErrInternal, Message: fmt.Sprintf("internal error: %v", r)}
		}
	}()
	return t.Run()
}

// CancelOwner resolves every not-yet-drained task of the given owner with a
// destroyed outcome and removes it from the queue. Returns how many were
// cancelled. Tasks already handed to DrainAndRun finish normally.
func (d *Dispatcher) CancelOwner(owner string) int {
	d.mu.Lock()
	var keep []*pending
	var cancel []*pending
	for _, p := range d.queue {
		if p.task.Owner == owner {
			cancel = append(cancel, p)
		} else {
			keep = append(keep, p)
		}
	}
	d.queue = keep
	d.mu.Unlock()

	for _, p := range cancel {
		if p.done != nil {
			p.done <- destroyedOutcome()
		}
	}
	return len(cancel)
}

// Close rejects all queued tasks with a destroyed outcome and makes any
// later Submit resolve the same way immediately.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	batch := d.queue
	d.queue = nil
	d.mu.Unlock()

	for _, p := range batch {
		if p.done != nil {
			p.done <- destroyedOutcome()
		}
	}
}

// PendingLen reports the current queue depth (tick log stat).
func (d *Dispatcher) PendingLen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}
