package realtime

import (
	"github.com/swooby/openai-realtime-go/realtime/events"
	"github.com/swooby/openai-realtime-go/realtime/transports"
)

type ClientOption func(*clientConfig)

type clientConfig struct {
	kind          transports.Kind
	transport     transports.Transport
	transportOpts []transports.Option
	codec         events.Codec
	logEvents     bool
	idPrefix      string
	idLength      int
}

// WithTransportKind selects which transport the client constructs. The
// default is the socket transport.
func WithTransportKind(kind transports.Kind) ClientOption {
	return func(c *clientConfig) { c.kind = kind }
}

// WithTransport supplies a ready-made transport instead of constructing
// one, e.g. a fake in tests. Transport options are ignored in that case.
func WithTransport(transport transports.Transport) ClientOption {
	return func(c *clientConfig) { c.transport = transport }
}

// WithTransportOptions forwards options to the constructed transport.
func WithTransportOptions(opts ...transports.Option) ClientOption {
	return func(c *clientConfig) { c.transportOpts = append(c.transportOpts, opts...) }
}

// WithCodec replaces the default JSON codec, e.g. with a generated schema
// package's typed codec.
func WithCodec(codec events.Codec) ClientOption {
	return func(c *clientConfig) { c.codec = codec }
}

// WithEventLogging enables diagnostic logging of every sent and received
// event, with large audio payloads redacted.
func WithEventLogging() ClientOption {
	return func(c *clientConfig) { c.logEvents = true }
}

// WithEventIDPrefix overrides the prefix of generated event identifiers.
func WithEventIDPrefix(prefix string) ClientOption {
	return func(c *clientConfig) { c.idPrefix = prefix }
}

// WithEventIDLength overrides the total length of generated event
// identifiers, prefix included.
func WithEventIDLength(length int) ClientOption {
	return func(c *clientConfig) { c.idLength = length }
}
