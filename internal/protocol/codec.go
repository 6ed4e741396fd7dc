package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/DrJasper1/emerson-colab/internal/core"
)

// Envelope wraps every payload sent over the channel.
type Envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Decode parses one wire frame into an envelope. The payload stays raw
// until the dispatcher knows which struct to bind it to.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return env, fmt.Errorf("decode envelope: missing type")
	}
	return env, nil
}

// Bind unmarshals the envelope payload into v.
func (e Envelope) Bind(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("bind %s: empty payload", e.Type)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("bind %s: %w", e.Type, err)
	}
	return nil
}

// BindOptional is Bind for commands whose payload may be omitted
// entirely; an absent payload leaves v at its zero value.
func (e Envelope) BindOptional(v any) error {
	if len(e.Data) == 0 {
		return nil
	}
	return e.Bind(v)
}

// Encode builds a wire frame for an outbound event.
func Encode(t EventType, payload any) (core.Frame, error) {
	env := Envelope{Type: t}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", t, err)
		}
		env.Data = data
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", t, err)
	}
	return core.Frame(b), nil
}
