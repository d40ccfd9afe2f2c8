package world

import (
	"context"
	"time"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer w.disp.Close()

	var pendingJoins []JoinRequest
	var pendingLeaves []leaveRequest

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case req := <-w.leave:
			pendingLeaves = append(pendingLeaves, req)
		case <-ticker.C:
			w.step(pendingJoins, pendingLeaves)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce advances the world by a single tick using the same ordering
// semantics as the server loop. Intended for deterministic tests.
func (w *World) StepOnce(joins []JoinRequest, leaves []string) (tick uint64, digest string) {
	tick = w.tick.Load()
	lr := make([]leaveRequest, 0, len(leaves))
	for _, id := range leaves {
		lr = append(lr, leaveRequest{ComputerID: id})
	}
	w.step(joins, lr)
	return tick, w.stateDigest(tick)
}
