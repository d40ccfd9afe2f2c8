package protocol

// Event is one asynchronous notification for a computer: alarms, timers,
// sounds from nearby machines, and script-queued events all share this shape.
// Immutable once constructed.
type Event struct {
	Name string `json:"name"`
	Args []any  `json:"args,omitempty"`
}
