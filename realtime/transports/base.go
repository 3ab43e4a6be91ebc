package transports

import (
	"net/http"
	"runtime"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/swooby/openai-realtime-go/internal/broadcast"
)

// browserRuntime reports whether the process runs where the API key would
// be visible to untrusted parties. Overridable in tests.
var browserRuntime = func() bool {
	return runtime.GOOS == "js"
}

// Base carries the state shared by both transports: endpoint, credential,
// the connection state machine and the four broadcast streams. Concrete
// transports embed it and drive the state transitions on their own
// connect, teardown and channel-lifecycle paths.
type Base struct {
	url        string
	defaultURL string
	apiKey     string

	doer          Doer
	mediaSource   MediaSourceFunc
	onRemoteTrack RemoteTrackHandler

	mu    sync.Mutex
	state ConnectionState

	states *broadcast.Stream[ConnectionState]
	errs   *broadcast.Stream[error]
	binary *broadcast.Stream[[]byte]
	text   *broadcast.Stream[string]
}

// NewBase validates the shared configuration. It fails closed when an API
// key is configured in a browser runtime without the explicit override.
func NewBase(defaultURL string, opts ...Option) (*Base, error) {
	cfg := baseConfig{url: defaultURL}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.apiKey != "" && browserRuntime() && !cfg.allowAPIKeyInBrowser {
		return nil, ErrInsecureAPIKey
	}

	if cfg.doer == nil {
		cfg.doer = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)}
	}

	return &Base{
		url:           cfg.url,
		defaultURL:    defaultURL,
		apiKey:        cfg.apiKey,
		doer:          cfg.doer,
		mediaSource:   cfg.mediaSource,
		onRemoteTrack: cfg.onRemoteTrack,
		state:         StateDisconnected,
		states:        broadcast.NewStream[ConnectionState](),
		errs:          broadcast.NewStream[error](),
		binary:        broadcast.NewStream[[]byte](),
		text:          broadcast.NewStream[string](),
	}, nil
}

func (b *Base) Endpoint() string { return b.url }

func (b *Base) APIKey() string { return b.apiKey }

func (b *Base) HTTPDoer() Doer { return b.doer }

func (b *Base) MediaSource() MediaSourceFunc { return b.mediaSource }

func (b *Base) RemoteTrackHandler() RemoteTrackHandler { return b.onRemoteTrack }

func (b *Base) State() ConnectionState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Base) IsConnectingOrConnected() bool {
	return b.State() != StateDisconnected
}

// CanSend reports whether the bidirectional message path is usable.
func (b *Base) CanSend() bool {
	return b.State() == StateDataChannelOpened
}

// BeginConnect moves the machine to connecting, rejecting the attempt when
// one is already in flight or established. It warns when no API key is
// configured against the default endpoint; private endpoints never warn.
func (b *Base) BeginConnect() error {
	b.mu.Lock()
	if b.state != StateDisconnected {
		b.mu.Unlock()
		return ErrAlreadyConnected
	}
	b.state = StateConnecting
	b.mu.Unlock()
	b.states.Publish(StateConnecting)

	if b.apiKey == "" && b.url == b.defaultURL {
		logger.Warn("no API key configured for the default endpoint; the server will likely reject the connection")
	}
	return nil
}

// SetState publishes a state transition. Setting the current state again
// is a no-op, which keeps Disconnect idempotent.
func (b *Base) SetState(state ConnectionState) {
	b.mu.Lock()
	if b.state == state {
		b.mu.Unlock()
		return
	}
	b.state = state
	b.mu.Unlock()
	b.states.Publish(state)
}

// CompareAndSetState transitions from→to atomically, reporting whether the
// transition happened. Used where an asynchronous channel callback races a
// negotiation result and only one of them may win.
func (b *Base) CompareAndSetState(from, to ConnectionState) bool {
	b.mu.Lock()
	if b.state != from {
		b.mu.Unlock()
		return false
	}
	b.state = to
	b.mu.Unlock()
	b.states.Publish(to)
	return true
}

func (b *Base) EmitError(err error) { b.errs.Publish(err) }

func (b *Base) EmitBinary(data []byte) { b.binary.Publish(data) }

func (b *Base) EmitText(message string) { b.text.Publish(message) }

func (b *Base) SubscribeStates() (<-chan ConnectionState, func()) {
	return b.states.Subscribe()
}

func (b *Base) SubscribeErrors() (<-chan error, func()) {
	return b.errs.Subscribe()
}

func (b *Base) SubscribeBinary() (<-chan []byte, func()) {
	return b.binary.Subscribe()
}

func (b *Base) SubscribeText() (<-chan string, func()) {
	return b.text.Subscribe()
}

// Close closes all four streams.
func (b *Base) Close() {
	b.states.Close()
	b.errs.Close()
	b.binary.Close()
	b.text.Close()
}
