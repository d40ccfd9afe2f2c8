package api

import (
	"context"

	"voxelscript.dev/internal/protocol"
	"voxelscript.dev/internal/sim/world"
)

// Note instruments accepted by speaker.playNote.
var noteInstruments = map[string]struct{}{
	"harp": {}, "basedrum": {}, "snare": {}, "hat": {}, "bass": {},
	"flute": {}, "bell": {}, "guitar": {}, "chime": {}, "xylophone": {},
	"iron_xylophone": {}, "cow_bell": {}, "didgeridoo": {}, "bit": {},
	"banjo": {}, "pling": {},
}

// The speaker module is budgeted per tick: one arbitrary sound, with notes
// allowed to burst. Admission happens synchronously on the computer's own
// budget; the emission itself is fire-and-forget through the dispatcher.
func (r *Registry) registerSpeaker() {
	r.register("speaker", "playSound", func(_ context.Context, env Env, args []any) ([]any, *Fail) {
		name, fail := argString(args, 0)
		if fail != nil {
			return nil, fail
		}
		volume, fail := argFloatDefault(args, 1, 1.0)
		if fail != nil {
			return nil, fail
		}
		pitch, fail := argFloatDefault(args, 2, 1.0)
		if fail != nil {
			return nil, fail
		}
		if volume < 0 || pitch < 0 || pitch > 2 {
			return nil, failf(protocol.ErrBadRequest, "number out of range")
		}

		if !env.Computer.TryAdmitSound(false) {
			return []any{false}, nil
		}
		env.World.IssueDetached(env.Computer.ID, world.SoundCommand{
			Name:   name,
			Volume: volume,
			Pitch:  pitch,
		})
		return []any{true}, nil
	})

	r.register("speaker", "playNote", func(_ context.Context, env Env, args []any) ([]any, *Fail) {
		instrument, fail := argString(args, 0)
		if fail != nil {
			return nil, fail
		}
		if _, ok := noteInstruments[instrument]; !ok {
			return nil, failf(protocol.ErrBadRequest, "invalid instrument %q", instrument)
		}
		volume, fail := argFloatDefault(args, 1, 1.0)
		if fail != nil {
			return nil, fail
		}
		pitch, fail := argFloatDefault(args, 2, 12)
		if fail != nil {
			return nil, fail
		}
		if volume < 0 || pitch < 0 || pitch > 24 {
			return nil, failf(protocol.ErrBadRequest, "number out of range")
		}

		if !env.Computer.TryAdmitSound(true) {
			return []any{false}, nil
		}
		env.World.IssueDetached(env.Computer.ID, world.SoundCommand{
			Name:   "note." + instrument,
			Volume: volume,
			Pitch:  pitch,
			Note:   true,
		})
		return []any{true}, nil
	})
}
