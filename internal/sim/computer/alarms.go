package computer

import (
	"errors"
	"math"
	"sort"
)

// ErrOutOfRange is returned for alarm hours outside [0,24) or non-finite.
var ErrOutOfRange = errors.New("number out of range")

type alarm struct {
	Day  int
	Hour float64
}

// AlarmRegistry maps alarm tokens to absolute in-game wake times. Tokens are
// monotonic and never reused within a computer's lifetime. Not goroutine-safe;
// the owning Computer serializes access under its lock.
type AlarmRegistry struct {
	nextToken int
	alarms    map[int]alarm
}

func NewAlarmRegistry() *AlarmRegistry {
	return &AlarmRegistry{alarms: map[int]alarm{}}
}

// Schedule registers a wake-up at the next occurrence of hour: today if the
// hour is still upcoming, else tomorrow. curDay/curHour is the owning
// computer's current in-game time sample.
func (r *AlarmRegistry) Schedule(hour float64, curDay int, curHour float64) (int, error) {
	if math.IsNaN(hour) || math.IsInf(hour, 0) || hour < 0 || hour >= 24 {
		return 0, ErrOutOfRange
	}
	day := curDay
	if hour <= curHour {
		day = curDay + 1
	}
	token := r.nextToken
	r.nextToken++
	r.alarms[token] = alarm{Day: day, Hour: hour}
	return token, nil
}

// Cancel removes the alarm if present. Idempotent.
func (r *AlarmRegistry) Cancel(token int) {
	delete(r.alarms, token)
}

// Due removes and returns every alarm whose wake time is at or before the
// given sample, in registration order (ascending token).
func (r *AlarmRegistry) Due(curDay int, curHour float64) []int {
	if len(r.alarms) == 0 {
		return nil
	}
	now := float64(curDay)*24 + curHour
	var due []int
	for token, a := range r.alarms {
		if float64(a.Day)*24+a.Hour <= now {
			due = append(due, token)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Ints(due)
	for _, token := range due {
		delete(r.alarms, token)
	}
	return due
}

func (r *AlarmRegistry) Clear() {
	r.alarms = map[int]alarm{}
}

func (r *AlarmRegistry) Len() int {
	return len(r.alarms)
}
