package computer

import (
	"context"
	"errors"
	"sync"

	"voxelscript.dev/internal/protocol"
)

// ErrQueueClosed is returned by Next once the queue is closed. Closing drops
// any events still queued.
var ErrQueueClosed = errors.New("event queue closed")

// EventQueue is the per-computer FIFO inbox of asynchronous notifications.
// Push happens on the authoritative goroutine (alarms, timers, sounds) or a
// script goroutine (queueEvent); Next suspends a single consumer until an
// event is available. No event is dropped once enqueued, except by Close.
type EventQueue struct {
	mu     sync.Mutex
	items  []protocol.Event
	signal chan struct{}
	done   chan struct{}
	closed bool
}

func NewEventQueue() *EventQueue {
	return &EventQueue{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push appends an event. Returns false if the queue is closed (event dropped).
func (q *EventQueue) Push(e protocol.Event) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, e)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// Next blocks until an event is available, the queue is closed, or ctx is done.
func (q *EventQueue) Next(ctx context.Context) (protocol.Event, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			e := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return e, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return protocol.Event{}, ErrQueueClosed
		}

		select {
		case <-q.signal:
		case <-q.done:
		case <-ctx.Done():
			return protocol.Event{}, ctx.Err()
		}
	}
}

// Close drops queued events and wakes any blocked consumer.
func (q *EventQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.items = nil
	q.mu.Unlock()
	close(q.done)
}

func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
