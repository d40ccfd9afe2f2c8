package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	ComputerName    string     `json:"computer_name"`
	Capabilities    HelloCapabilities `json:"capabilities,omitempty"`
	Auth            *HelloAuth `json:"auth,omitempty"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
}

type HelloAuth struct {
	Token string `json:"token,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	ComputerID      string      `json:"computer_id"`
	ResumeToken     string      `json:"resume_token,omitempty"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	TickRateHz int   `json:"tick_rate_hz"`
	DayTicks   int   `json:"day_ticks"`
	BoundaryR  int   `json:"world_boundary_r"`
	Seed       int64 `json:"seed"`
}

// CALL (client -> server): one script-visible function call.
// The session resolves each CALL with exactly one RESULT.
type CallMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Module          string `json:"module"`
	Fn              string `json:"fn"`
	Args            []any  `json:"args,omitempty"`
}

// RESULT (server -> client)
//
// Ok=false means the call itself was rejected (bad input, unknown function,
// context torn down); Code then carries one of the E_* codes. Expected
// in-world rejections ("Movement obstructed") are Ok=true with
// Values=[false, reason] — scripts branch on them, they are not errors.
type ResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	CallID          string `json:"call_id"`
	Ok              bool   `json:"ok"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
	Values          []any  `json:"values,omitempty"`
}

// EVENT (server -> client): one queued event delivered in FIFO order.
type EventMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	Name            string `json:"name"`
	Args            []any  `json:"args,omitempty"`
}
