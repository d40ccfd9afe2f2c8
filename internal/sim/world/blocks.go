package world

type Vec3i struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (v Vec3i) Add(o Vec3i) Vec3i {
	return Vec3i{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func Manhattan(a, b Vec3i) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y) + abs(a.Z-b.Z)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

const (
	BlockAir   = "AIR"
	BlockDirt  = "DIRT"
	BlockStone = "STONE"
)

// Facing is a cardinal heading on the XZ plane.
type Facing int

const (
	FacingNorth Facing = iota // -Z
	FacingEast                // +X
	FacingSouth               // +Z
	FacingWest                // -X
)

func (f Facing) Left() Facing  { return (f + 3) % 4 }
func (f Facing) Right() Facing { return (f + 1) % 4 }

func (f Facing) Delta() Vec3i {
	switch f {
	case FacingNorth:
		return Vec3i{Z: -1}
	case FacingEast:
		return Vec3i{X: 1}
	case FacingSouth:
		return Vec3i{Z: 1}
	default:
		return Vec3i{X: -1}
	}
}

// BlockAt reads the effective block: explicit edits first, then the
// generated terrain (stone deep down, dirt below y=0, air above).
func (w *World) BlockAt(p Vec3i) string {
	if b, ok := w.blocks[p]; ok {
		return b
	}
	switch {
	case p.Y < -3:
		return BlockStone
	case p.Y < 0:
		return BlockDirt
	default:
		return BlockAir
	}
}

func (w *World) setBlock(p Vec3i, b string) {
	w.blocks[p] = b
}

func (w *World) inBounds(p Vec3i) bool {
	r := w.cfg.BoundaryR
	return abs(p.X) <= r && abs(p.Z) <= r && p.Y >= -64 && p.Y <= 64
}

func (w *World) turtleAt(p Vec3i) *Turtle {
	for _, t := range w.turtles {
		if t.Pos == p {
			return t
		}
	}
	return nil
}
