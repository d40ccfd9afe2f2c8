package world

// Metrics is a point-in-time snapshot safe to read from any goroutine.
type Metrics struct {
	Tick            uint64
	Computers       int64
	PendingCommands int
	JoinQueue       int
	LeaveQueue      int
}

func (w *World) Metrics() Metrics {
	return Metrics{
		Tick:            w.tick.Load(),
		Computers:       w.compCount.Load(),
		PendingCommands: w.disp.PendingLen(),
		JoinQueue:       len(w.join),
		LeaveQueue:      len(w.leave),
	}
}
