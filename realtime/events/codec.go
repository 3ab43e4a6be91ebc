package events

import (
	"encoding/json"
	"fmt"
)

// Codec translates between wire bytes and envelopes. A generated schema
// package can implement it to hand typed events to listeners; the client
// only relies on this contract.
type Codec interface {
	Decode(data []byte) (Event, error)
	Encode(event Event) ([]byte, error)
}

// JSON returns the default codec: plain JSON objects with no schema
// awareness beyond the required type discriminator.
func JSON() Codec {
	return jsonCodec{}
}

type jsonCodec struct{}

func (jsonCodec) Decode(data []byte) (Event, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	event := Event{fields: fields}
	if event.Type() == "" {
		return Event{}, fmt.Errorf("event is missing the %q field", TypeField)
	}
	return event, nil
}

func (jsonCodec) Encode(event Event) ([]byte, error) {
	data, err := json.Marshal(event.Fields())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}
