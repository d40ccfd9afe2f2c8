package computer

// TickBudget is the per-tick admission policy for throttled action
// categories: one primary action per category per tick, plus a burst of
// burst-eligible actions up to the ceiling, but only when the tick's primary
// admission was itself burst-eligible. Counters never carry across ticks.
// Not goroutine-safe; the owning Computer serializes access under its lock.
type TickBudget struct {
	ceiling int
	used    map[string]bool
	burst   map[string]int
}

func NewTickBudget(burstCeiling int) *TickBudget {
	return &TickBudget{
		ceiling: burstCeiling,
		used:    map[string]bool{},
		burst:   map[string]int{},
	}
}

// TryAdmit decides whether one action of the category may proceed this tick.
// A rejected admission is a normal "not this tick" result, not an error.
func (b *TickBudget) TryAdmit(category string, burstEligible bool) bool {
	if !b.used[category] {
		b.used[category] = true
		if burstEligible {
			b.burst[category]++
		}
		return true
	}
	if burstEligible && b.burst[category] > 0 && b.burst[category] < b.ceiling {
		b.burst[category]++
		return true
	}
	return false
}

// ResetTick zeroes all per-category state. Called once per tick before any
// admission decision.
func (b *TickBudget) ResetTick() {
	clear(b.used)
	clear(b.burst)
}
