package core

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire shape of every event: {"event": name, "args": [...]}.
// Args are kept raw so relayed payloads pass through untouched.
type Envelope struct {
	Event string            `json:"event"`
	Args  []json.RawMessage `json:"args,omitempty"`
}

// EncodeEvent builds a Frame. json.RawMessage args are written verbatim.
func EncodeEvent(event string, args ...any) (Frame, error) {
	env := Envelope{Event: event}
	if len(args) > 0 {
		env.Args = make([]json.RawMessage, 0, len(args))
	}
	for i, a := range args {
		if raw, ok := a.(json.RawMessage); ok {
			env.Args = append(env.Args, raw)
			continue
		}
		b, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("encode %s arg %d: %w", event, i, err)
		}
		env.Args = append(env.Args, b)
	}
	return json.Marshal(env)
}

func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing event")
	}
	return env, nil
}
