package world

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// CommandRecord is one drained command in a tick log entry.
type CommandRecord struct {
	Owner   string `json:"owner"`
	Label   string `json:"label"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// TickLogEntry is written once per tick to every registered sink.
type TickLogEntry struct {
	Tick     uint64          `json:"tick"`
	Day      int             `json:"day"`
	Hour     float64         `json:"hour"`
	Commands []CommandRecord `json:"commands,omitempty"`
	Events   int             `json:"events"`
	Digest   string          `json:"digest"`
}

// stateDigest hashes the externally observable world state: turtle poses and
// block edits. Two runs with the same inputs produce the same digests.
func (w *World) stateDigest(tick uint64) string {
	h := sha256.New()
	fmt.Fprintf(h, "tick=%d\n", tick)

	ids := make([]string, 0, len(w.turtles))
	for id := range w.turtles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		t := w.turtles[id]
		fmt.Fprintf(h, "t %s %d %d %d %d\n", id, t.Pos.X, t.Pos.Y, t.Pos.Z, t.Facing)
	}

	edits := make([]Vec3i, 0, len(w.blocks))
	for p := range w.blocks {
		edits = append(edits, p)
	}
	sort.Slice(edits, func(i, j int) bool {
		a, b := edits[i], edits[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	for _, p := range edits {
		fmt.Fprintf(h, "b %d %d %d %s\n", p.X, p.Y, p.Z, w.blocks[p])
	}

	return hex.EncodeToString(h.Sum(nil))[:16]
}
