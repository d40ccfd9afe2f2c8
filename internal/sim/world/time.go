package world

// ingameTime derives the day/hour pair from the tick counter. The hour sweeps
// [0,24) over DayTicks ticks and the day increments when it wraps.
func (w *World) ingameTime(tick uint64) (day int, hour float64) {
	dt := uint64(w.cfg.DayTicks)
	day = int(tick / dt)
	hour = float64(tick%dt) / float64(dt) * 24.0
	return day, hour
}

// IngameTime reports the time sample for the current tick.
func (w *World) IngameTime() (day int, hour float64) {
	return w.ingameTime(w.tick.Load())
}
