package world

import (
	"sort"

	"voxelscript.dev/internal/sim/computer"
)

// step advances the simulation one tick. Ordering: leaves, joins, per-computer
// clock/alarm/timer/budget ticks, then the dispatcher drain. Leaves run first
// so a departing computer's undrained commands resolve as destroyed instead
// of executing against a torn-down context.
func (w *World) step(joins []JoinRequest, leaves []leaveRequest) {
	nowTick := w.tick.Load()
	day, hour := w.ingameTime(nowTick)

	for _, req := range leaves {
		w.handleLeave(req)
	}

	// Snapshot before joins: a computer admitted this tick starts its clock
	// at zero and first advances on the next tick.
	ids := w.sortedComputerIDs()
	for _, req := range joins {
		w.handleJoin(req, day, hour)
	}

	for _, id := range ids {
		w.comps[id].Tick(day, hour)
	}

	executed := w.disp.DrainAndRun()

	entry := TickLogEntry{
		Tick:     nowTick,
		Day:      day,
		Hour:     hour,
		Digest:   w.stateDigest(nowTick),
		Commands: make([]CommandRecord, 0, len(executed)),
	}
	for _, e := range executed {
		entry.Commands = append(entry.Commands, CommandRecord{
			Owner:   e.Owner,
			Label:   e.Label,
			OK:      e.Outcome.OK,
			Code:    e.Outcome.Code,
			Message: e.Outcome.Message,
		})
	}
	for _, c := range w.comps {
		entry.Events += c.PendingEvents()
	}
	for _, s := range w.sinks {
		if err := s.WriteTick(entry); err != nil && w.logger != nil {
			w.logger.Printf("tick sink: %v", err)
		}
	}

	w.tick.Add(1)
}

func (w *World) handleJoin(req JoinRequest, day int, hour float64) {
	id := w.newComputerID()
	name := req.Name
	if name == "" {
		name = "computer"
	}

	t := &Turtle{ID: id, Name: name, Pos: w.spawnPos(), Facing: FacingNorth}
	w.turtles[id] = t

	c := computer.New(id, name, w.cfg.SoundNotesPerTick)
	c.Startup(day, hour)
	w.comps[id] = c
	w.compCount.Add(1)

	if req.Resp != nil {
		req.Resp <- JoinResponse{Computer: c, Welcome: w.welcome(id)}
	}
}

func (w *World) handleLeave(req leaveRequest) {
	if c := w.comps[req.ComputerID]; c != nil {
		c.Shutdown()
		delete(w.comps, req.ComputerID)
		w.compCount.Add(-1)
	}
	w.disp.CancelOwner(req.ComputerID)
	delete(w.turtles, req.ComputerID)
	if req.Resp != nil {
		req.Resp <- struct{}{}
	}
}

// spawnPos places new turtles on a deterministic line near the origin,
// skipping occupied cells.
func (w *World) spawnPos() Vec3i {
	for x := 0; ; x += 2 {
		p := Vec3i{X: x, Y: 0, Z: 0}
		if w.turtleAt(p) == nil {
			return p
		}
	}
}

func (w *World) sortedComputerIDs() []string {
	ids := make([]string, 0, len(w.comps))
	for id := range w.comps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
