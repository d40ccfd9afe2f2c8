package api

import (
	"context"

	"voxelscript.dev/internal/protocol"
	"voxelscript.dev/internal/sim/world"
)

// The turtle module goes through the dispatcher: each call is queued as a
// command and the calling goroutine suspends until the tick that drains it.
// Successful commands return [true, ...]; expected in-world rejections return
// [false, reason] and keep Ok=true on the RESULT.
func (r *Registry) registerTurtle() {
	moves := map[string]world.MoveDir{
		"forward": world.DirForward,
		"back":    world.DirBack,
		"up":      world.DirUp,
		"down":    world.DirDown,
	}
	for fn, dir := range moves {
		dir := dir
		r.register("turtle", fn, func(ctx context.Context, env Env, _ []any) ([]any, *Fail) {
			return issue(ctx, env, world.MoveCommand{Dir: dir})
		})
	}

	r.register("turtle", "turnLeft", func(ctx context.Context, env Env, _ []any) ([]any, *Fail) {
		return issue(ctx, env, world.TurnCommand{Left: true})
	})
	r.register("turtle", "turnRight", func(ctx context.Context, env Env, _ []any) ([]any, *Fail) {
		return issue(ctx, env, world.TurnCommand{Left: false})
	})

	digDirs := map[string]world.MoveDir{
		"dig":     world.DirForward,
		"digUp":   world.DirUp,
		"digDown": world.DirDown,
	}
	for fn, dir := range digDirs {
		dir := dir
		r.register("turtle", fn, func(ctx context.Context, env Env, _ []any) ([]any, *Fail) {
			return issue(ctx, env, world.DigCommand{Dir: dir})
		})
	}

	placeDirs := map[string]world.MoveDir{
		"place":     world.DirForward,
		"placeUp":   world.DirUp,
		"placeDown": world.DirDown,
	}
	for fn, dir := range placeDirs {
		dir := dir
		r.register("turtle", fn, func(ctx context.Context, env Env, args []any) ([]any, *Fail) {
			block, fail := argString(args, 0)
			if fail != nil {
				return nil, fail
			}
			return issue(ctx, env, world.PlaceCommand{Dir: dir, Block: block})
		})
	}

	detectDirs := map[string]world.MoveDir{
		"detect":     world.DirForward,
		"detectUp":   world.DirUp,
		"detectDown": world.DirDown,
	}
	for fn, dir := range detectDirs {
		dir := dir
		r.register("turtle", fn, func(ctx context.Context, env Env, _ []any) ([]any, *Fail) {
			return issueRaw(ctx, env, world.DetectCommand{Dir: dir})
		})
	}

	inspectDirs := map[string]world.MoveDir{
		"inspect":     world.DirForward,
		"inspectUp":   world.DirUp,
		"inspectDown": world.DirDown,
	}
	for fn, dir := range inspectDirs {
		dir := dir
		r.register("turtle", fn, func(ctx context.Context, env Env, _ []any) ([]any, *Fail) {
			return issue(ctx, env, world.InspectCommand{Dir: dir})
		})
	}
}

// issue runs a command through the dispatcher and applies the [true,...] /
// [false, reason] convention. Lifecycle and internal failures stay
// call-level errors.
func issue(ctx context.Context, env Env, cmd world.Command) ([]any, *Fail) {
	out, err := env.World.Issue(ctx, env.Computer.ID, cmd)
	if err != nil {
		return nil, failf(protocol.ErrDestroyed, "call abandoned")
	}
	if out.OK {
		return append([]any{true}, out.Values...), nil
	}
	switch out.Code {
	case protocol.ErrBlocked, protocol.ErrInvalidTarget:
		return []any{false, out.Message}, nil
	default:
		return nil, &Fail{Code: out.Code, Message: out.Message}
	}
}

// issueRaw passes the outcome values through untouched (detect returns a
// bare boolean, not the success/reason pair).
func issueRaw(ctx context.Context, env Env, cmd world.Command) ([]any, *Fail) {
	out, err := env.World.Issue(ctx, env.Computer.ID, cmd)
	if err != nil {
		return nil, failf(protocol.ErrDestroyed, "call abandoned")
	}
	if !out.OK {
		return nil, &Fail{Code: out.Code, Message: out.Message}
	}
	return out.Values, nil
}
