package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Call layer.
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrUnknownFn     = "E_UNKNOWN_FN"
	ErrInvalidTarget = "E_INVALID_TARGET"
	ErrBlocked       = "E_BLOCKED"
	ErrRateLimit     = "E_RATE_LIMIT"
	ErrDestroyed     = "E_DESTROYED"
	ErrInternal      = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadRequest:      {},
	ErrUnknownFn:       {},
	ErrInvalidTarget:   {},
	ErrBlocked:         {},
	ErrRateLimit:       {},
	ErrDestroyed:       {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
