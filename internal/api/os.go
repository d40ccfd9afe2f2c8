package api

import (
	"context"
	"errors"
	"math"

	"voxelscript.dev/internal/protocol"
	"voxelscript.dev/internal/sim/computer"
)

// The os module covers the computer's clock, alarms, timers and the event
// queue. All of it is local to the computer context; nothing here takes a
// trip through the dispatcher.
func (r *Registry) registerOS() {
	r.register("os", "clock", func(_ context.Context, env Env, _ []any) ([]any, *Fail) {
		return []any{env.Computer.Uptime()}, nil
	})

	r.register("os", "time", func(_ context.Context, env Env, _ []any) ([]any, *Fail) {
		_, hour := env.Computer.Time()
		return []any{hour}, nil
	})

	r.register("os", "day", func(_ context.Context, env Env, _ []any) ([]any, *Fail) {
		day, _ := env.Computer.Time()
		return []any{day}, nil
	})

	r.register("os", "epoch", func(_ context.Context, env Env, _ []any) ([]any, *Fail) {
		day, hour := env.Computer.Time()
		ms := (float64(day)*24 + hour) * 3600 * 1000
		return []any{ms}, nil
	})

	r.register("os", "setAlarm", func(_ context.Context, env Env, args []any) ([]any, *Fail) {
		hour, fail := argFloat(args, 0)
		if fail != nil {
			return nil, fail
		}
		token, err := env.Computer.SetAlarm(hour)
		if err != nil {
			if errors.Is(err, computer.ErrOutOfRange) {
				return nil, failf(protocol.ErrBadRequest, "number out of range")
			}
			return nil, failf(protocol.ErrInternal, "setAlarm: %v", err)
		}
		return []any{token}, nil
	})

	r.register("os", "cancelAlarm", func(_ context.Context, env Env, args []any) ([]any, *Fail) {
		token, fail := argInt(args, 0)
		if fail != nil {
			return nil, fail
		}
		env.Computer.CancelAlarm(token)
		return nil, nil
	})

	r.register("os", "startTimer", func(_ context.Context, env Env, args []any) ([]any, *Fail) {
		seconds, fail := argFloat(args, 0)
		if fail != nil {
			return nil, fail
		}
		if seconds < 0 {
			return nil, failf(protocol.ErrBadRequest, "number out of range")
		}
		ticks := uint64(math.Round(seconds / computer.TickDuration.Seconds()))
		return []any{env.Computer.StartTimer(ticks)}, nil
	})

	r.register("os", "cancelTimer", func(_ context.Context, env Env, args []any) ([]any, *Fail) {
		token, fail := argInt(args, 0)
		if fail != nil {
			return nil, fail
		}
		env.Computer.CancelTimer(token)
		return nil, nil
	})

	r.register("os", "queueEvent", func(_ context.Context, env Env, args []any) ([]any, *Fail) {
		name, fail := argString(args, 0)
		if fail != nil {
			return nil, fail
		}
		if !env.Computer.QueueEvent(name, args[1:]...) {
			return nil, failf(protocol.ErrDestroyed, "context destroyed")
		}
		return nil, nil
	})
}
