package world

// Turtle is the in-world body of one computer: a position and heading on the
// block grid. Owned exclusively by the authoritative goroutine; script
// goroutines only ever see it through command outcomes.
type Turtle struct {
	ID     string
	Name   string
	Pos    Vec3i
	Facing Facing
}
