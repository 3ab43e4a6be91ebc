package portaudio

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/swooby/openai-realtime-go/realtime/audio/portaudio"

var logger = otelslog.NewLogger(scopeName)
