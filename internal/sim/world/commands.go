package world

import (
	"fmt"

	"voxelscript.dev/internal/protocol"
	"voxelscript.dev/internal/sim/dispatch"
)

// Command is one side-effecting (or world-reading) action executed against
// simulation state. Execute runs only on the authoritative goroutine, reached
// exclusively through the dispatcher drain, and reports rejections as
// structured outcomes rather than errors.
type Command interface {
	Label() string
	Execute(w *World, t *Turtle) dispatch.Outcome
}

func ok(values ...any) dispatch.Outcome {
	return dispatch.Outcome{OK: true, Values: values}
}

func rejected(code, message string) dispatch.Outcome {
	return dispatch.Outcome{OK: false, Code: code, Message: message}
}

// MoveDir selects the axis of a move or dig relative to the turtle.
type MoveDir int

const (
	DirForward MoveDir = iota
	DirBack
	DirUp
	DirDown
)

func (d MoveDir) String() string {
	switch d {
	case DirForward:
		return "forward"
	case DirBack:
		return "back"
	case DirUp:
		return "up"
	default:
		return "down"
	}
}

func (d MoveDir) target(t *Turtle) Vec3i {
	switch d {
	case DirForward:
		return t.Pos.Add(t.Facing.Delta())
	case DirBack:
		return t.Pos.Add(Vec3i{X: -t.Facing.Delta().X, Z: -t.Facing.Delta().Z})
	case DirUp:
		return t.Pos.Add(Vec3i{Y: 1})
	default:
		return t.Pos.Add(Vec3i{Y: -1})
	}
}

type MoveCommand struct {
	Dir MoveDir
}

func (c MoveCommand) Label() string { return "turtle.move." + c.Dir.String() }

func (c MoveCommand) Execute(w *World, t *Turtle) dispatch.Outcome {
	dst := c.Dir.target(t)
	if !w.inBounds(dst) {
		return rejected(protocol.ErrBlocked, "Out of world bounds")
	}
	if w.BlockAt(dst) != BlockAir {
		return rejected(protocol.ErrBlocked, "Movement obstructed")
	}
	if other := w.turtleAt(dst); other != nil {
		return rejected(protocol.ErrBlocked, "Movement obstructed")
	}
	t.Pos = dst
	return ok()
}

type TurnCommand struct {
	Left bool
}

func (c TurnCommand) Label() string {
	if c.Left {
		return "turtle.turnLeft"
	}
	return "turtle.turnRight"
}

func (c TurnCommand) Execute(w *World, t *Turtle) dispatch.Outcome {
	if c.Left {
		t.Facing = t.Facing.Left()
	} else {
		t.Facing = t.Facing.Right()
	}
	return ok()
}

type DigCommand struct {
	Dir MoveDir
}

func (c DigCommand) Label() string { return "turtle.dig." + c.Dir.String() }

func (c DigCommand) Execute(w *World, t *Turtle) dispatch.Outcome {
	dst := c.Dir.target(t)
	if !w.inBounds(dst) {
		return rejected(protocol.ErrInvalidTarget, "Out of world bounds")
	}
	b := w.BlockAt(dst)
	if b == BlockAir {
		return rejected(protocol.ErrInvalidTarget, "Nothing to dig here")
	}
	w.setBlock(dst, BlockAir)
	return ok(b)
}

type PlaceCommand struct {
	Dir   MoveDir
	Block string
}

func (c PlaceCommand) Label() string { return "turtle.place." + c.Dir.String() }

func (c PlaceCommand) Execute(w *World, t *Turtle) dispatch.Outcome {
	dst := c.Dir.target(t)
	if !w.inBounds(dst) {
		return rejected(protocol.ErrInvalidTarget, "Out of world bounds")
	}
	if w.BlockAt(dst) != BlockAir || w.turtleAt(dst) != nil {
		return rejected(protocol.ErrBlocked, "Cannot place block here")
	}
	w.setBlock(dst, c.Block)
	return ok()
}

type DetectCommand struct {
	Dir MoveDir
}

func (c DetectCommand) Label() string { return "turtle.detect." + c.Dir.String() }

func (c DetectCommand) Execute(w *World, t *Turtle) dispatch.Outcome {
	dst := c.Dir.target(t)
	solid := w.inBounds(dst) && w.BlockAt(dst) != BlockAir
	return ok(solid)
}

type InspectCommand struct {
	Dir MoveDir
}

func (c InspectCommand) Label() string { return "turtle.inspect." + c.Dir.String() }

func (c InspectCommand) Execute(w *World, t *Turtle) dispatch.Outcome {
	dst := c.Dir.target(t)
	if !w.inBounds(dst) {
		return rejected(protocol.ErrInvalidTarget, "Out of world bounds")
	}
	b := w.BlockAt(dst)
	if b == BlockAir {
		return rejected(protocol.ErrInvalidTarget, "No block to inspect")
	}
	return ok(map[string]any{"name": b, "pos": dst})
}

// SoundCommand broadcasts a sound event to every other computer within
// earshot. Admission control already happened on the caller's tick budget;
// execution itself always succeeds.
type SoundCommand struct {
	Name   string
	Volume float64
	Pitch  float64
	Note   bool
}

func (c SoundCommand) Label() string {
	if c.Note {
		return "speaker.playNote"
	}
	return "speaker.playSound"
}

func (c SoundCommand) Execute(w *World, t *Turtle) dispatch.Outcome {
	vol := c.Volume
	if vol > 3.0 {
		vol = 3.0
	}
	for id, other := range w.turtles {
		if id == t.ID {
			continue
		}
		if Manhattan(other.Pos, t.Pos) > w.cfg.SoundEarshotR {
			continue
		}
		if comp := w.comps[id]; comp != nil {
			comp.QueueEvent("sound", t.ID, c.Name, vol, c.Pitch)
		}
	}
	return ok()
}

// Label sanity for tick logs: commands constructed outside this package must
// never produce an empty label.
func commandLabel(c Command) string {
	if l := c.Label(); l != "" {
		return l
	}
	return fmt.Sprintf("command.%T", c)
}
