package devtools

import "encoding/json"

// Event names exchanged with a devtools client.
const (
	EventInit          = "vstore:init"
	EventRegister      = "vstore:register"
	EventMutation      = "vstore:mutation"
	EventUnregister    = "vstore:unregister"
	EventTravelToState = "vstore:travel-to-state"
)

// Hook is the channel to a devtools client.
type Hook interface {
	// Emit sends an event with its payload to the client.
	Emit(event string, payload ...any)

	// On registers handler for events sent by the client.
	On(event string, handler func(payload json.RawMessage))
}

// Registration is the payload of EventRegister.
type Registration struct {
	Identifier string `json:"identifier"`
	State      any    `json:"state"`
}

// Mutation is the payload of EventMutation. Type has the form
// "[identifier]: Field", Payload holds the call arguments and State the
// snapshot of every mirrored store taken before the call.
type Mutation struct {
	Type    string         `json:"type"`
	Payload []any          `json:"payload"`
	State   map[string]any `json:"state"`
}
