package computer

import "sort"

// TimerRegistry maps timer tokens to absolute due ticks. Token space is
// independent of alarm tokens. Not goroutine-safe; the owning Computer
// serializes access under its lock.
type TimerRegistry struct {
	nextToken int
	timers    map[int]uint64
}

func NewTimerRegistry() *TimerRegistry {
	return &TimerRegistry{timers: map[int]uint64{}}
}

// Start registers a timer due durationTicks ticks from nowTick. A zero
// duration is due immediately.
func (r *TimerRegistry) Start(nowTick, durationTicks uint64) int {
	token := r.nextToken
	r.nextToken++
	r.timers[token] = nowTick + durationTicks
	return token
}

// Cancel removes the timer if present. Idempotent.
func (r *TimerRegistry) Cancel(token int) {
	delete(r.timers, token)
}

// Due removes and returns every timer due at or before nowTick, in
// registration order (ascending token).
func (r *TimerRegistry) Due(nowTick uint64) []int {
	if len(r.timers) == 0 {
		return nil
	}
	var due []int
	for token, at := range r.timers {
		if at <= nowTick {
			due = append(due, token)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Ints(due)
	for _, token := range due {
		delete(r.timers, token)
	}
	return due
}

func (r *TimerRegistry) Clear() {
	r.timers = map[int]uint64{}
}

func (r *TimerRegistry) Len() int {
	return len(r.timers)
}
