package transports

import (
	"errors"
	"testing"
	"time"
)

func TestBeginConnectRejectsSecondAttempt(t *testing.T) {
	base, err := NewBase("wss://example.test/v1/realtime")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer base.Close()

	if err := base.BeginConnect(); err != nil {
		t.Fatalf("unexpected error on first connect: %v", err)
	}
	if err := base.BeginConnect(); !errors.Is(err, ErrAlreadyConnected) {
		t.Fatalf("expected ErrAlreadyConnected, got %v", err)
	}
	if base.State() != StateConnecting {
		t.Fatalf("expected the rejected attempt to leave the state alone, got %q", base.State())
	}
}

func TestSetStateDeduplicatesAndPublishes(t *testing.T) {
	base, err := NewBase("wss://example.test/v1/realtime")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer base.Close()

	states, cancel := base.SubscribeStates()
	defer cancel()

	base.SetState(StateConnected)
	base.SetState(StateConnected)
	base.SetState(StateDisconnected)
	base.SetState(StateDisconnected)

	for _, want := range []ConnectionState{StateConnected, StateDisconnected} {
		select {
		case got := <-states:
			if got != want {
				t.Fatalf("expected state %q, got %q", want, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for state %q", want)
		}
	}
	select {
	case got := <-states:
		t.Fatalf("expected no further state changes, got %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCompareAndSetState(t *testing.T) {
	base, err := NewBase("wss://example.test/v1/realtime")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer base.Close()

	if !base.CompareAndSetState(StateDisconnected, StateConnecting) {
		t.Fatalf("expected the transition from the current state to succeed")
	}
	if base.CompareAndSetState(StateDisconnected, StateConnected) {
		t.Fatalf("expected the transition from a stale state to fail")
	}
	if base.State() != StateConnecting {
		t.Fatalf("expected state connecting, got %q", base.State())
	}
}

func TestAPIKeyFailsClosedInBrowserRuntime(t *testing.T) {
	previous := browserRuntime
	browserRuntime = func() bool { return true }
	defer func() { browserRuntime = previous }()

	if _, err := NewBase("wss://example.test/v1/realtime", WithAPIKey("sk-test")); !errors.Is(err, ErrInsecureAPIKey) {
		t.Fatalf("expected ErrInsecureAPIKey, got %v", err)
	}

	base, err := NewBase("wss://example.test/v1/realtime",
		WithAPIKey("sk-test"), WithDangerouslyAllowAPIKeyInBrowser())
	if err != nil {
		t.Fatalf("expected the explicit override to be honored, got %v", err)
	}
	base.Close()
}

func TestCanSendOnlyWhenDataChannelOpened(t *testing.T) {
	base, err := NewBase("wss://example.test/v1/realtime")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer base.Close()

	for _, state := range []ConnectionState{StateDisconnected, StateConnecting, StateConnected} {
		base.SetState(state)
		if base.CanSend() {
			t.Fatalf("expected CanSend to be false in state %q", state)
		}
	}
	base.SetState(StateDataChannelOpened)
	if !base.CanSend() {
		t.Fatalf("expected CanSend to be true once the data channel is open")
	}
}
