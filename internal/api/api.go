// Package api maps script-visible calls ("os.setAlarm", "turtle.forward")
// onto the simulation. Dispatch is a plain lookup table keyed by module and
// function name; there is no reflection and scripts can only reach what was
// registered explicitly.
package api

import (
	"context"
	"fmt"

	"voxelscript.dev/internal/protocol"
	"voxelscript.dev/internal/sim/computer"
	"voxelscript.dev/internal/sim/world"
)

// Env is the per-session binding a handler runs against.
type Env struct {
	World    *world.World
	Computer *computer.Computer
}

// Fail rejects a call at the call layer (Ok=false on the RESULT). Expected
// in-world rejections never produce a Fail; they come back as Ok=true with
// values [false, reason].
type Fail struct {
	Code    string
	Message string
}

func failf(code, format string, a ...any) *Fail {
	return &Fail{Code: code, Message: fmt.Sprintf(format, a...)}
}

type Handler func(ctx context.Context, env Env, args []any) ([]any, *Fail)

type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	r := &Registry{handlers: map[string]Handler{}}
	r.registerOS()
	r.registerTurtle()
	r.registerSpeaker()
	return r
}

func (r *Registry) register(module, fn string, h Handler) {
	r.handlers[module+"."+fn] = h
}

// Has reports whether a module.fn pair is registered.
func (r *Registry) Has(module, fn string) bool {
	_, ok := r.handlers[module+"."+fn]
	return ok
}

// Invoke runs one CALL to completion and builds its RESULT. Every call
// produces exactly one RESULT, failures included.
func (r *Registry) Invoke(ctx context.Context, env Env, call protocol.CallMsg) protocol.ResultMsg {
	res := protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		CallID:          call.ID,
	}

	h := r.handlers[call.Module+"."+call.Fn]
	if h == nil {
		res.Code = protocol.ErrUnknownFn
		res.Message = fmt.Sprintf("no such function %s.%s", call.Module, call.Fn)
		return res
	}

	values, fail := h(ctx, env, call.Args)
	if fail != nil {
		res.Code = fail.Code
		res.Message = fail.Message
		return res
	}
	res.Ok = true
	res.Values = values
	return res
}
