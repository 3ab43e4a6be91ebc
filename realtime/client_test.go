package realtime

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/swooby/openai-realtime-go/realtime/events"
	"github.com/swooby/openai-realtime-go/realtime/transports"
)

type testServer struct {
	server   *httptest.Server
	received chan []byte

	mu   sync.Mutex
	conn *websocket.Conn
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{received: make(chan []byte, 16)}
	upgrader := websocket.Upgrader{}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			s.received <- data
		}
	}))
	t.Cleanup(s.server.Close)
	return s
}

func (s *testServer) url() string {
	return "ws" + strings.TrimPrefix(s.server.URL, "http")
}

func (s *testServer) send(t *testing.T, message string) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		t.Fatalf("no client connection yet")
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
		t.Fatalf("failed to send from test server: %v", err)
	}
}

func receiveEvent(t *testing.T, ch <-chan events.Event) events.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for a dispatched event")
		panic("unreachable")
	}
}

func newConnectedClient(t *testing.T, server *testServer, opts ...ClientOption) *Client {
	t.Helper()
	opts = append([]ClientOption{WithTransportOptions(transports.WithURL(server.url()))}, opts...)
	client, err := NewClient(opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(client.Close)
	if err := client.Connect(context.Background(), "gpt-4o-realtime-preview", nil); err != nil {
		t.Fatalf("unexpected connect error: %v", err)
	}
	return client
}

func TestSendStampsIdentifierAndForwardsExactEncoding(t *testing.T) {
	server := newTestServer(t)
	client := newConnectedClient(t, server)

	byType := make(chan events.Event, 1)
	client.On("session.update", func(ev events.Event) { byType <- ev })
	byDirection := make(chan events.Event, 1)
	client.On(WildcardClient, func(ev events.Event) { byDirection <- ev })
	all := make(chan events.Event, 1)
	client.On(WildcardAll, func(ev events.Event) { all <- ev })

	err := client.Send(events.New("session.update").
		Set("session", map[string]any{"voice": "alloy"}))
	if err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	dispatched := receiveEvent(t, byType)
	if dispatched.ID() == "" {
		t.Fatalf("expected the dispatched event to carry a generated identifier")
	}
	if !strings.HasPrefix(dispatched.ID(), events.DefaultIDPrefix) || len(dispatched.ID()) != events.DefaultIDLength {
		t.Fatalf("unexpected identifier shape: %q", dispatched.ID())
	}
	if receiveEvent(t, byDirection).ID() != dispatched.ID() {
		t.Fatalf("expected the same event under the direction wildcard")
	}
	if receiveEvent(t, all).ID() != dispatched.ID() {
		t.Fatalf("expected the same event under the global wildcard")
	}

	encoded, err := events.JSON().Encode(dispatched)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	select {
	case frame := <-server.received:
		if !bytes.Equal(frame, encoded) {
			t.Fatalf("expected the wire frame to match the dispatched event exactly:\nwire: %s\nevent: %s", frame, encoded)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the outbound frame")
	}
}

func TestSendKeepsCallerSuppliedIdentifier(t *testing.T) {
	server := newTestServer(t)
	client := newConnectedClient(t, server)

	dispatched := make(chan events.Event, 1)
	client.On("response.create", func(ev events.Event) { dispatched <- ev })

	if err := client.Send(events.New("response.create").WithID("evt_caller")); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}
	if got := receiveEvent(t, dispatched).ID(); got != "evt_caller" {
		t.Fatalf("expected the caller-supplied identifier to survive, got %q", got)
	}
}

func TestSendWhileNotConnectedIsRejected(t *testing.T) {
	server := newTestServer(t)
	client, err := NewClient(WithTransportOptions(transports.WithURL(server.url())))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	if err := client.Send(events.New("session.update")); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestServerEventsDispatchUnderThreeKeys(t *testing.T) {
	server := newTestServer(t)
	client := newConnectedClient(t, server)

	byType := make(chan events.Event, 1)
	client.On("response.done", func(ev events.Event) { byType <- ev })
	byDirection := make(chan events.Event, 1)
	client.On(WildcardServer, func(ev events.Event) { byDirection <- ev })
	all := make(chan events.Event, 1)
	client.On(WildcardAll, func(ev events.Event) { all <- ev })

	server.send(t, `{"type":"response.done","event_id":"evt_srv"}`)

	for _, ch := range []chan events.Event{byType, byDirection, all} {
		if got := receiveEvent(t, ch).ID(); got != "evt_srv" {
			t.Fatalf("expected the server event on every key, got id %q", got)
		}
	}
}

func TestOnceListenerSeesOneServerEvent(t *testing.T) {
	server := newTestServer(t)
	client := newConnectedClient(t, server)

	seen := make(chan events.Event, 4)
	client.Once("response.done", func(ev events.Event) { seen <- ev })
	counted := make(chan events.Event, 4)
	client.On("response.done", func(ev events.Event) { counted <- ev })

	server.send(t, `{"type":"response.done","event_id":"evt_1"}`)
	server.send(t, `{"type":"response.done","event_id":"evt_2"}`)

	receiveEvent(t, counted)
	receiveEvent(t, counted)

	if got := receiveEvent(t, seen).ID(); got != "evt_1" {
		t.Fatalf("expected the once listener to see the first event, got %q", got)
	}
	select {
	case ev := <-seen:
		t.Fatalf("expected the once listener to run a single time, also saw %q", ev.ID())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCustomIdentifierPrefixAndLength(t *testing.T) {
	server := newTestServer(t)
	client := newConnectedClient(t, server,
		WithEventIDPrefix("msg_"), WithEventIDLength(32))

	dispatched := make(chan events.Event, 1)
	client.On("session.update", func(ev events.Event) { dispatched <- ev })

	if err := client.Send(events.New("session.update")); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}
	id := receiveEvent(t, dispatched).ID()
	if !strings.HasPrefix(id, "msg_") || len(id) != 32 {
		t.Fatalf("unexpected identifier shape: %q", id)
	}
}

func TestUnknownTransportKindFailsConstruction(t *testing.T) {
	if _, err := NewClient(WithTransportKind(transports.Kind("telepathy"))); err == nil {
		t.Fatalf("expected an error for an unknown transport kind")
	}
}
