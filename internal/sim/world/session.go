package world

import (
	"context"
	"errors"

	"voxelscript.dev/internal/protocol"
	"voxelscript.dev/internal/sim/computer"
)

// JoinRequest attaches a new computer to the world at the next tick boundary.
type JoinRequest struct {
	Name string
	Resp chan JoinResponse
}

type JoinResponse struct {
	Computer *computer.Computer
	Welcome  protocol.WelcomeMsg
}

type leaveRequest struct {
	ComputerID string
	Resp       chan struct{}
}

// RequestJoin blocks until the authoritative goroutine has admitted the
// computer at a tick boundary.
func (w *World) RequestJoin(ctx context.Context, name string) (JoinResponse, error) {
	if w == nil {
		return JoinResponse{}, errors.New("world not running")
	}
	req := JoinRequest{Name: name, Resp: make(chan JoinResponse, 1)}
	select {
	case w.join <- req:
	case <-ctx.Done():
		return JoinResponse{}, ctx.Err()
	}
	select {
	case resp := <-req.Resp:
		return resp, nil
	case <-ctx.Done():
		return JoinResponse{}, ctx.Err()
	}
}

// RequestLeave tears the computer down at the next tick boundary: registries
// cleared, event inbox closed, undrained commands resolved as destroyed.
// Returns once the teardown has been applied.
func (w *World) RequestLeave(ctx context.Context, computerID string) error {
	if w == nil {
		return errors.New("world not running")
	}
	req := leaveRequest{ComputerID: computerID, Resp: make(chan struct{}, 1)}
	select {
	case w.leave <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-req.Resp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *World) welcome(id string) protocol.WelcomeMsg {
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		ComputerID:      id,
		WorldParams: protocol.WorldParams{
			TickRateHz: w.cfg.TickRateHz,
			DayTicks:   w.cfg.DayTicks,
			BoundaryR:  w.cfg.BoundaryR,
			Seed:       w.cfg.Seed,
		},
	}
}
