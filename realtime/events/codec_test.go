package events

import "testing"

func TestJSONCodecDecodeRequiresType(t *testing.T) {
	if _, err := JSON().Decode([]byte(`{"event_id":"evt_1"}`)); err == nil {
		t.Fatalf("expected an error for an event without a type")
	}
	if _, err := JSON().Decode([]byte(`not json`)); err == nil {
		t.Fatalf("expected an error for malformed JSON")
	}
}

func TestJSONCodecDecode(t *testing.T) {
	event, err := JSON().Decode([]byte(`{"type":"session.created","event_id":"evt_1","session":{"voice":"alloy"}}`))
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if event.Type() != "session.created" {
		t.Fatalf("expected type session.created, got %q", event.Type())
	}
	if event.ID() != "evt_1" {
		t.Fatalf("expected event_id evt_1, got %q", event.ID())
	}
	if _, ok := event.Get("session"); !ok {
		t.Fatalf("expected the session payload field to survive decoding")
	}
}

func TestWithIDDoesNotMutateReceiver(t *testing.T) {
	original := New("session.update")
	stamped := original.WithID("evt_1")

	if original.ID() != "" {
		t.Fatalf("expected the original event to stay unstamped, got %q", original.ID())
	}
	if stamped.ID() != "evt_1" {
		t.Fatalf("expected the copy to carry the identifier, got %q", stamped.ID())
	}
}
