// Package channel implements the envelope wire codec and the transports the
// advisor worker drains: an in-memory bounded queue and an HTTP ingestor the
// GP driver can post to.
package channel

import (
	"encoding/json"
	"fmt"

	"github.com/snow-ghost/advisor/core"
)

// wireEnvelope is the self-describing serialized shape on the channel.
type wireEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode serializes an envelope for transmission.
func Encode(env core.Envelope) ([]byte, error) {
	payload, err := json.Marshal(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", env.Kind, err)
	}
	return json.Marshal(wireEnvelope{Type: string(env.Kind), Payload: payload})
}

// Decode deserializes envelope bytes into the typed payload variant for the
// declared kind. Malformed bytes yield a *core.DecodeError. A well-formed
// envelope of an unrecognized kind decodes with a nil payload so the
// dispatcher can log and ignore it.
func Decode(data []byte) (core.Envelope, error) {
	var wire wireEnvelope
	if err := json.Unmarshal(data, &wire); err != nil {
		return core.Envelope{}, &core.DecodeError{Err: err}
	}

	kind := core.MessageKind(wire.Type)
	payload, err := decodePayload(kind, wire.Payload)
	if err != nil {
		return core.Envelope{}, &core.DecodeError{Err: err}
	}
	return core.Envelope{Kind: kind, Payload: payload}, nil
}

func decodePayload(kind core.MessageKind, raw json.RawMessage) (core.Payload, error) {
	unmarshal := func(v core.Payload) (core.Payload, error) {
		if len(raw) == 0 {
			return v, nil
		}
		if err := json.Unmarshal(raw, v); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", kind, err)
		}
		return v, nil
	}

	switch kind {
	case core.KindInit:
		return unmarshal(&core.InitPayload{})
	case core.KindCommand:
		return unmarshal(&core.CommandPayload{})
	case core.KindEvolutionUpdate:
		return unmarshal(&core.EvolutionUpdatePayload{})
	case core.KindThresholdStart:
		return unmarshal(&core.ThresholdStartPayload{})
	case core.KindSuggestion:
		return unmarshal(&core.SuggestionPayload{})
	case core.KindError:
		return unmarshal(&core.ErrorPayload{})
	default:
		return nil, nil
	}
}
