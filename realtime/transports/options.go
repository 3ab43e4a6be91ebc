package transports

type Option func(*baseConfig)

type baseConfig struct {
	url                  string
	apiKey               string
	allowAPIKeyInBrowser bool
	doer                 Doer
	mediaSource          MediaSourceFunc
	onRemoteTrack        RemoteTrackHandler
}

// WithURL overrides the default remote endpoint, e.g. to target a proxy or
// a private deployment.
func WithURL(url string) Option {
	return func(c *baseConfig) { c.url = url }
}

func WithAPIKey(apiKey string) Option {
	return func(c *baseConfig) { c.apiKey = apiKey }
}

// WithDangerouslyAllowAPIKeyInBrowser opts out of the fail-closed check
// that rejects API keys in browser/wasm runtimes, where the key is visible
// to untrusted parties.
func WithDangerouslyAllowAPIKeyInBrowser() Option {
	return func(c *baseConfig) { c.allowAPIKeyInBrowser = true }
}

// WithHTTPDoer replaces the HTTP client used for peer signaling.
func WithHTTPDoer(doer Doer) Option {
	return func(c *baseConfig) { c.doer = doer }
}

// WithMediaSource supplies the capability used to capture local media for
// the peer transport's outbound audio track.
func WithMediaSource(source MediaSourceFunc) Option {
	return func(c *baseConfig) { c.mediaSource = source }
}

// WithRemoteTrackHandler observes media tracks attached by the remote
// peer, e.g. to play back the assistant's audio.
func WithRemoteTrackHandler(handler RemoteTrackHandler) Option {
	return func(c *baseConfig) { c.onRemoteTrack = handler }
}
