package world

import (
	"context"

	"voxelscript.dev/internal/protocol"
	"voxelscript.dev/internal/sim/dispatch"
)

// Issue submits a command for the given computer and suspends the calling
// goroutine until the authoritative tick that drains it resolves the outcome.
// Commands from one caller resolve in submission order.
func (w *World) Issue(ctx context.Context, computerID string, cmd Command) (dispatch.Outcome, error) {
	return w.disp.Submit(ctx, w.task(computerID, cmd))
}

// IssueDetached submits a command nobody waits on (sound emission).
func (w *World) IssueDetached(computerID string, cmd Command) {
	w.disp.SubmitDetached(w.task(computerID, cmd))
}

func (w *World) task(computerID string, cmd Command) dispatch.Task {
	return dispatch.Task{
		Owner: computerID,
		Label: commandLabel(cmd),
		Run: func() dispatch.Outcome {
			t := w.turtles[computerID]
			if t == nil {
				return dispatch.Outcome{OK: false, Code: protocol.ErrDestroyed, Message: "context destroyed"}
			}
			return cmd.Execute(w, t)
		},
	}
}
