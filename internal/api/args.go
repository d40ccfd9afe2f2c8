package api

import (
	"math"

	"voxelscript.dev/internal/protocol"
)

// Call args come off the wire as JSON, so every number is a float64.
// Non-finite values are rejected everywhere; NaN hours or Inf durations must
// never reach a registry.

func argString(args []any, i int) (string, *Fail) {
	if i >= len(args) {
		return "", failf(protocol.ErrBadRequest, "missing argument %d (expected string)", i+1)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", failf(protocol.ErrBadRequest, "argument %d: expected string", i+1)
	}
	return s, nil
}

func argFloat(args []any, i int) (float64, *Fail) {
	if i >= len(args) {
		return 0, failf(protocol.ErrBadRequest, "missing argument %d (expected number)", i+1)
	}
	f, ok := args[i].(float64)
	if !ok {
		return 0, failf(protocol.ErrBadRequest, "argument %d: expected number", i+1)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, failf(protocol.ErrBadRequest, "argument %d: number out of range", i+1)
	}
	return f, nil
}

// argFloatDefault reads an optional trailing number argument.
func argFloatDefault(args []any, i int, def float64) (float64, *Fail) {
	if i >= len(args) || args[i] == nil {
		return def, nil
	}
	return argFloat(args, i)
}

func argInt(args []any, i int) (int, *Fail) {
	f, fail := argFloat(args, i)
	if fail != nil {
		return 0, fail
	}
	return int(f), nil
}
