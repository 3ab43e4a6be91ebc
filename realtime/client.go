package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/swooby/openai-realtime-go/internal/eventbus"
	"github.com/swooby/openai-realtime-go/realtime/events"
	"github.com/swooby/openai-realtime-go/realtime/session"
	"github.com/swooby/openai-realtime-go/realtime/transports"
	"github.com/swooby/openai-realtime-go/realtime/transports/peer"
	"github.com/swooby/openai-realtime-go/realtime/transports/socket"
)

// Routing keys matching all events of one direction, or every event.
const (
	WildcardServer = "server.*"
	WildcardClient = "client.*"
	WildcardAll    = "all"
)

const (
	directionServer = "server"
	directionClient = "client"
)

// ErrNotConnected is returned by Send while the transport's data channel
// is not open. Events are rejected, never queued.
var ErrNotConnected = errors.New("data channel is not open")

// Client is the protocol layer over one transport. Listener registration
// and dispatch go through the client's event bus; see the package
// documentation for the routing keys.
type Client struct {
	transport transports.Transport
	bus       *eventbus.Bus[events.Event]
	codec     events.Codec
	logEvents bool
	idPrefix  string
	idLength  int

	mu          sync.Mutex
	unsubscribe []func()
}

// NewClient builds a client and its transport. The transport kind defaults
// to the socket transport.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := clientConfig{
		kind:     transports.KindSocket,
		codec:    events.JSON(),
		idPrefix: events.DefaultIDPrefix,
		idLength: events.DefaultIDLength,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	transport := cfg.transport
	if transport == nil {
		var err error
		if transport, err = newTransport(cfg.kind, cfg.transportOpts); err != nil {
			return nil, err
		}
	}

	return &Client{
		transport: transport,
		bus: eventbus.New[events.Event](func(key string, recovered any) {
			logger.Error("event listener panicked", "key", key, "panic", recovered)
		}),
		codec:     cfg.codec,
		logEvents: cfg.logEvents,
		idPrefix:  cfg.idPrefix,
		idLength:  cfg.idLength,
	}, nil
}

// newTransport is the factory keyed on the transport kind.
func newTransport(kind transports.Kind, opts []transports.Option) (transports.Transport, error) {
	switch kind {
	case transports.KindSocket:
		return socket.New(opts...)
	case transports.KindPeer:
		return peer.New(opts...)
	default:
		return nil, fmt.Errorf("unknown transport kind %q", kind)
	}
}

// Transport exposes the owned transport, e.g. to subscribe to connection
// state changes.
func (c *Client) Transport() transports.Transport {
	return c.transport
}

// Connect establishes the session. Config is forwarded during negotiation
// on the peer transport and ignored on the socket transport. A failed
// attempt leaves the client reusable for another call.
func (c *Client) Connect(ctx context.Context, model string, config *session.Config) error {
	ctx, span := tracer.Start(ctx, "connect realtime session")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", model))

	c.mu.Lock()
	if c.unsubscribe == nil {
		textCh, cancelText := c.transport.SubscribeText()
		errCh, cancelErrs := c.transport.SubscribeErrors()
		c.unsubscribe = []func(){cancelText, cancelErrs}
		go c.receiveMessages(textCh)
		go c.logErrors(errCh)
	}
	c.mu.Unlock()

	if err := c.transport.Connect(ctx, model, config); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "connect failed")
		return err
	}
	span.AddEvent("transport connected", trace.WithAttributes(
		attribute.String("transport.state", string(c.transport.State())),
	))
	return nil
}

// Disconnect tears down the transport connection and the client's internal
// subscriptions. Idempotent; the client can connect again afterwards.
func (c *Client) Disconnect() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()
	for _, cancel := range unsubscribe {
		cancel()
	}

	c.transport.Disconnect()
}

// Close disconnects and disposes the transport. The client is unusable
// afterwards.
func (c *Client) Close() {
	c.Disconnect()
	c.transport.Close()
	c.bus.Clear()
}

// Send stamps ev with a generated identifier (only when the caller has not
// assigned one), dispatches it to local listeners for client-side
// visibility, and forwards the serialized event to the transport. It
// returns ErrNotConnected while the data channel is not open.
func (c *Client) Send(ev events.Event) error {
	if c.transport.State() != transports.StateDataChannelOpened {
		return ErrNotConnected
	}

	if ev.ID() == "" {
		ev = ev.WithID(events.GenerateIDWith(c.idPrefix, c.idLength))
	}

	data, err := c.codec.Encode(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	c.logEvent(directionClient, data)
	c.dispatch(directionClient, ev)

	sent, err := c.transport.Send(data)
	if err != nil {
		return fmt.Errorf("failed to send event: %w", err)
	}
	if !sent {
		return ErrNotConnected
	}
	return nil
}

// On registers handler for an event type or wildcard key and returns a
// disposer removing the registration.
func (c *Client) On(key string, handler func(events.Event)) func() {
	return c.bus.On(key, handler)
}

// Once registers handler to run at most once.
func (c *Client) Once(key string, handler func(events.Event)) func() {
	return c.bus.Once(key, handler)
}

// Off removes every registration of handler under key.
func (c *Client) Off(key string, handler func(events.Event)) {
	c.bus.Off(key, handler)
}

// ClearListeners removes all listeners for the given keys, or every
// listener when no key is given.
func (c *Client) ClearListeners(keys ...string) {
	c.bus.Clear(keys...)
}

// receiveMessages decodes and dispatches inbound wire events in arrival
// order until the subscription is cancelled.
func (c *Client) receiveMessages(messages <-chan string) {
	for message := range messages {
		c.logEvent(directionServer, []byte(message))
		ev, err := c.codec.Decode([]byte(message))
		if err != nil {
			logger.Error("failed to decode server event", "error", err)
			continue
		}
		c.dispatch(directionServer, ev)
	}
}

func (c *Client) logErrors(errs <-chan error) {
	for err := range errs {
		logger.Warn("transport error", "error", err)
	}
}

func (c *Client) dispatch(direction string, ev events.Event) {
	c.bus.Dispatch(ev.Type(), ev)
	c.bus.Dispatch(direction+".*", ev)
	c.bus.Dispatch(WildcardAll, ev)
}
