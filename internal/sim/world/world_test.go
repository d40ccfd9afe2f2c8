package world

import (
	"context"
	"testing"
	"time"

	"voxelscript.dev/internal/protocol"
	"voxelscript.dev/internal/sim/computer"
	"voxelscript.dev/internal/sim/dispatch"
)

func testConfig() WorldConfig {
	return WorldConfig{
		ID:                "W1",
		TickRateHz:        20,
		DayTicks:          240, // 10 ticks per in-game hour
		BoundaryR:         32,
		Seed:              1337,
		SoundNotesPerTick: 8,
		SoundEarshotR:     16,
	}
}

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return w
}

func joinOne(t *testing.T, w *World, name string) (string, *computer.Computer) {
	t.Helper()
	req := JoinRequest{Name: name, Resp: make(chan JoinResponse, 1)}
	w.StepOnce([]JoinRequest{req}, nil)
	resp := <-req.Resp
	if resp.Welcome.ComputerID == "" {
		t.Fatalf("join produced no computer id")
	}
	return resp.Welcome.ComputerID, resp.Computer
}

func issueAsync(w *World, id string, cmd Command) chan dispatch.Outcome {
	out := make(chan dispatch.Outcome, 1)
	go func() {
		o, _ := w.Issue(context.Background(), id, cmd)
		out <- o
	}()
	waitQueued(w, 1)
	return out
}

func waitQueued(w *World, n int) {
	deadline := time.Now().Add(2 * time.Second)
	for w.disp.PendingLen() < n && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
}

func TestWorld_ThreeCommandsResolveInOneStep(t *testing.T) {
	w := newTestWorld(t)
	id, _ := joinOne(t, w, "miner")

	outs := make([]chan dispatch.Outcome, 3)
	cmds := []Command{MoveCommand{Dir: DirForward}, TurnCommand{Left: true}, MoveCommand{Dir: DirForward}}
	for i, cmd := range cmds {
		i, cmd := i, cmd
		outs[i] = make(chan dispatch.Outcome, 1)
		go func() {
			o, _ := w.Issue(context.Background(), id, cmd)
			outs[i] <- o
		}()
		waitQueued(w, i+1)
	}

	w.StepOnce(nil, nil)

	for i := range outs {
		select {
		case o := <-outs[i]:
			if !o.OK {
				t.Fatalf("command %d outcome = %+v", i, o)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("command %d never resolved after one step", i)
		}
	}

	// forward (north), turn left (west), forward: net position (-1,0,-1).
	got := w.turtles[id].Pos
	if (got != Vec3i{X: -1, Y: 0, Z: -1}) {
		t.Fatalf("pos = %+v", got)
	}
}

func TestWorld_MovementObstructed(t *testing.T) {
	w := newTestWorld(t)
	id, _ := joinOne(t, w, "miner")

	out := issueAsync(w, id, MoveCommand{Dir: DirDown})
	w.StepOnce(nil, nil)
	o := <-out
	if o.OK || o.Code != protocol.ErrBlocked || o.Message != "Movement obstructed" {
		t.Fatalf("outcome = %+v, want obstruction", o)
	}
	if w.turtles[id].Pos.Y != 0 {
		t.Fatalf("turtle moved into solid block")
	}
}

func TestWorld_DigThenMoveDown(t *testing.T) {
	w := newTestWorld(t)
	id, _ := joinOne(t, w, "miner")

	out := issueAsync(w, id, DigCommand{Dir: DirDown})
	w.StepOnce(nil, nil)
	o := <-out
	if !o.OK || len(o.Values) != 1 || o.Values[0] != BlockDirt {
		t.Fatalf("dig outcome = %+v", o)
	}

	out = issueAsync(w, id, DigCommand{Dir: DirUp})
	w.StepOnce(nil, nil)
	o = <-out
	if o.OK || o.Code != protocol.ErrInvalidTarget || o.Message != "Nothing to dig here" {
		t.Fatalf("dig air outcome = %+v", o)
	}

	out = issueAsync(w, id, MoveCommand{Dir: DirDown})
	w.StepOnce(nil, nil)
	if o = <-out; !o.OK {
		t.Fatalf("move into dug cell = %+v", o)
	}
	if w.turtles[id].Pos.Y != -1 {
		t.Fatalf("pos = %+v", w.turtles[id].Pos)
	}
}

func TestWorld_PlaceRejectedWhenOccupied(t *testing.T) {
	w := newTestWorld(t)
	id, _ := joinOne(t, w, "builder")

	out := issueAsync(w, id, PlaceCommand{Dir: DirDown, Block: BlockStone})
	w.StepOnce(nil, nil)
	if o := <-out; o.OK || o.Message != "Cannot place block here" {
		t.Fatalf("place into ground = %+v", o)
	}

	out = issueAsync(w, id, PlaceCommand{Dir: DirUp, Block: BlockStone})
	w.StepOnce(nil, nil)
	if o := <-out; !o.OK {
		t.Fatalf("place up = %+v", o)
	}
	if b := w.BlockAt(Vec3i{X: 0, Y: 1, Z: 0}); b != BlockStone {
		t.Fatalf("block above = %s", b)
	}
}

func TestWorld_LeaveResolvesPendingAsDestroyed(t *testing.T) {
	w := newTestWorld(t)
	id, comp := joinOne(t, w, "doomed")

	out1 := issueAsync(w, id, MoveCommand{Dir: DirForward})
	out2 := make(chan dispatch.Outcome, 1)
	go func() {
		o, _ := w.Issue(context.Background(), id, MoveCommand{Dir: DirForward})
		out2 <- o
	}()
	waitQueued(w, 2)

	w.StepOnce(nil, []string{id})

	for i, ch := range []chan dispatch.Outcome{out1, out2} {
		select {
		case o := <-ch:
			if o.OK || o.Code != protocol.ErrDestroyed {
				t.Fatalf("pending command %d outcome = %+v, want E_DESTROYED", i, o)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("pending command %d left hanging after teardown", i)
		}
	}
	if _, err := comp.NextEvent(context.Background()); err == nil {
		t.Fatalf("event queue still open after leave")
	}
	if w.turtles[id] != nil {
		t.Fatalf("turtle survived leave")
	}
}

func TestWorld_IssueAfterLeaveResolvesDestroyed(t *testing.T) {
	w := newTestWorld(t)
	id, _ := joinOne(t, w, "gone")
	w.StepOnce(nil, []string{id})

	out := issueAsync(w, id, MoveCommand{Dir: DirForward})
	w.StepOnce(nil, nil)
	if o := <-out; o.OK || o.Code != protocol.ErrDestroyed {
		t.Fatalf("outcome = %+v, want E_DESTROYED", o)
	}
}

func TestWorld_AlarmFiresWithDayCycle(t *testing.T) {
	w := newTestWorld(t)
	_, comp := joinOne(t, w, "sleeper")

	// World starts near hour 0; wake at in-game hour 6 later today.
	token, err := comp.SetAlarm(6.0)
	if err != nil {
		t.Fatalf("setAlarm: %v", err)
	}

	// Hour 6 is tick 60 at 240 ticks/day. Step just short of it.
	for w.Tick() < 60 {
		w.StepOnce(nil, nil)
		if comp.PendingEvents() != 0 {
			day, hour := w.IngameTime()
			t.Fatalf("alarm fired early at day %d hour %.2f", day, hour)
		}
	}
	w.StepOnce(nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	e, err := comp.NextEvent(ctx)
	if err != nil {
		t.Fatalf("nextEvent: %v", err)
	}
	if e.Name != "alarm" || e.Args[0] != token {
		t.Fatalf("event = %+v, want alarm(%d)", e, token)
	}
}

func TestWorld_SoundReachesOnlyEarshot(t *testing.T) {
	w := newTestWorld(t)
	_, nearComp := joinOne(t, w, "near")
	emitID, _ := joinOne(t, w, "emitter")

	// Spawn line spacing is 2, so the pair starts within earshot. After the
	// in-range check, shrink the radius and verify exclusion with the same pair.
	out := issueAsync(w, emitID, SoundCommand{Name: "bell", Volume: 1, Pitch: 1})
	w.StepOnce(nil, nil)
	if o := <-out; !o.OK {
		t.Fatalf("sound outcome = %+v", o)
	}
	e, err := nearComp.NextEvent(context.Background())
	if err != nil || e.Name != "sound" {
		t.Fatalf("near event = %+v err=%v", e, err)
	}
	if e.Args[0] != emitID || e.Args[1] != "bell" {
		t.Fatalf("sound args = %v", e.Args)
	}

	w.cfg.SoundEarshotR = 1
	out = issueAsync(w, emitID, SoundCommand{Name: "bell", Volume: 1, Pitch: 1})
	w.StepOnce(nil, nil)
	<-out
	if n := nearComp.PendingEvents(); n != 0 {
		t.Fatalf("sound crossed earshot boundary, %d events", n)
	}
}

func TestWorld_DigestDeterministicAcrossRuns(t *testing.T) {
	run := func() []string {
		w := newTestWorld(t)
		id, _ := joinOne(t, w, "det")
		var digests []string
		for i := 0; i < 5; i++ {
			out := issueAsync(w, id, MoveCommand{Dir: DirForward})
			_, d := w.StepOnce(nil, nil)
			<-out
			digests = append(digests, d)
		}
		return digests
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("digest %d diverged: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestWorld_TickSinkReceivesCommandRecords(t *testing.T) {
	w := newTestWorld(t)
	sink := &captureSink{}
	w.AddTickSink(sink)
	id, _ := joinOne(t, w, "logged")

	out := issueAsync(w, id, MoveCommand{Dir: DirForward})
	w.StepOnce(nil, nil)
	<-out

	last := sink.entries[len(sink.entries)-1]
	if len(last.Commands) != 1 {
		t.Fatalf("tick entry commands = %+v", last.Commands)
	}
	rec := last.Commands[0]
	if rec.Owner != id || rec.Label != "turtle.move.forward" || !rec.OK {
		t.Fatalf("command record = %+v", rec)
	}
	if last.Digest == "" {
		t.Fatalf("tick entry missing digest")
	}
}

type captureSink struct {
	entries []TickLogEntry
}

func (s *captureSink) WriteTick(e TickLogEntry) error {
	s.entries = append(s.entries, e)
	return nil
}
