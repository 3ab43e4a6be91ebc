// Package socket implements the realtime transport over a persistent
// websocket. The socket itself is the event channel: there is no separate
// negotiation phase, so the data channel opens as soon as the dial
// succeeds, and sessions are configured via protocol events afterwards.
package socket

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/swooby/openai-realtime-go/realtime/session"
	"github.com/swooby/openai-realtime-go/realtime/transports"
)

const DefaultURL = "wss://api.openai.com/v1/realtime"

type Transport struct {
	*transports.Base

	connMu sync.Mutex
	conn   *websocket.Conn
}

var _ transports.Transport = (*Transport)(nil)

func New(opts ...transports.Option) (*Transport, error) {
	base, err := transports.NewBase(DefaultURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Transport{Base: base}, nil
}

// Connect dials <endpoint>?model=<model>. config is accepted for interface
// parity but not transmitted; socket sessions are configured through
// subsequent protocol events.
func (t *Transport) Connect(ctx context.Context, model string, _ *session.Config) error {
	if err := t.BeginConnect(); err != nil {
		return err
	}

	socketURL, err := url.Parse(t.Endpoint())
	if err != nil {
		t.SetState(transports.StateDisconnected)
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	queryParams := socketURL.Query()
	queryParams.Set("model", model)
	socketURL.RawQuery = queryParams.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, socketURL.String(), nil)
	if err != nil {
		t.SetState(transports.StateDisconnected)
		return fmt.Errorf("failed to open socket connection: %w", err)
	}

	t.connMu.Lock()
	t.conn = conn
	t.connMu.Unlock()

	t.SetState(transports.StateConnected)
	t.SetState(transports.StateDataChannelOpened)
	logger.Debug("socket connected", "model", model)

	go t.readAndForwardMessages(conn)

	return nil
}

// readAndForwardMessages forwards inbound frames to the text and binary
// streams in arrival order until the socket errors or closes, then tears
// the transport down.
func (t *Transport) readAndForwardMessages(conn *websocket.Conn) {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.EmitError(fmt.Errorf("socket read failed: %w", err))
			}
			t.Disconnect()
			return
		}

		switch messageType {
		case websocket.TextMessage:
			t.EmitText(string(data))
		case websocket.BinaryMessage:
			t.EmitBinary(data)
		}
	}
}

// Send writes one JSON text frame. It reports false without writing when
// the channel is not open.
func (t *Transport) Send(data []byte) (bool, error) {
	if !t.CanSend() {
		return false, nil
	}

	t.connMu.Lock()
	defer t.connMu.Unlock()
	if t.conn == nil {
		return false, nil
	}
	if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return false, fmt.Errorf("failed to write to socket: %w", err)
	}
	return true, nil
}

// Disconnect closes the socket with a normal-closure code. Safe to call
// any number of times and from the read loop.
func (t *Transport) Disconnect() {
	t.connMu.Lock()
	conn := t.conn
	t.conn = nil
	t.connMu.Unlock()

	if conn != nil {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}

	t.SetState(transports.StateDisconnected)
}
