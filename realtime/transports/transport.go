package transports

import (
	"context"
	"errors"
	"net/http"

	"github.com/pion/webrtc/v4"

	"github.com/swooby/openai-realtime-go/realtime/session"
)

type ConnectionState string

const (
	StateDisconnected      ConnectionState = "disconnected"
	StateConnecting        ConnectionState = "connecting"
	StateConnected         ConnectionState = "connected"
	StateDataChannelOpened ConnectionState = "data_channel_opened"
)

// Kind selects which concrete transport a client constructs. It is
// immutable for the lifetime of an instance.
type Kind string

const (
	KindSocket Kind = "socket"
	KindPeer   Kind = "peer"
)

var (
	// ErrAlreadyConnected is returned by Connect while a previous attempt
	// is still connecting or connected. There is no implicit reconnect.
	ErrAlreadyConnected = errors.New("transport is already connecting or connected")

	// ErrInsecureAPIKey is returned by constructors when the API key would
	// be exposed to untrusted parties (a browser/wasm runtime) without the
	// explicit override.
	ErrInsecureAPIKey = errors.New("refusing to use an API key in a browser runtime")
)

// Transport exchanges protocol events with the realtime API over one
// specific network mechanism.
type Transport interface {
	// Connect establishes the session for model. config is forwarded
	// during negotiation where the mechanism supports it and ignored
	// otherwise. A failed attempt returns an error and restores the
	// disconnected state; the transport stays reusable for another call.
	Connect(ctx context.Context, model string, config *session.Config) error

	// Disconnect tears the connection down and returns the transport to
	// the disconnected state. Idempotent.
	Disconnect()

	// Send writes one serialized event. sent is false with a nil error
	// when the data channel is not open; that is a legitimate outcome
	// callers must check, not a failure.
	Send(data []byte) (sent bool, err error)

	State() ConnectionState
	IsConnectingOrConnected() bool

	// The four observable streams. Each call registers an independent
	// subscriber; the cancel function must be called when done.
	SubscribeStates() (<-chan ConnectionState, func())
	SubscribeErrors() (<-chan error, func())
	SubscribeBinary() (<-chan []byte, func())
	SubscribeText() (<-chan string, func())

	// Close disposes the transport, closing all four streams. The
	// transport is unusable afterwards.
	Close()
}

// Doer issues a single HTTP request. The peer transport uses it for
// signaling; injecting a fake replaces all HTTP access without touching
// process-wide state.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// MediaSource is a live local media capture attached to the peer
// connection for the session's duration.
type MediaSource interface {
	Tracks() []webrtc.TrackLocal
	Close() error
}

// MediaSourceFunc obtains a local media source, typically a microphone.
// The peer transport invokes it once per connect, before creating the
// offer; absence means no outbound audio track is attached.
type MediaSourceFunc func(ctx context.Context) (MediaSource, error)

// RemoteTrackHandler observes a media track attached by the remote peer.
type RemoteTrackHandler func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)
