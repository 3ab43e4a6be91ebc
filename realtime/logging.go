package realtime

import (
	"encoding/json"

	"github.com/swooby/openai-realtime-go/realtime/events"
)

// redactedEdge is how many characters survive at each end of a redacted
// value.
const redactedEdge = 10

func (c *Client) logEvent(direction string, wire []byte) {
	if !c.logEvents {
		return
	}

	var decoded any
	if err := json.Unmarshal(wire, &decoded); err != nil {
		logger.Debug("event", "direction", direction, "payload", string(wire))
		return
	}
	redacted, err := json.Marshal(redactPayload(decoded))
	if err != nil {
		return
	}
	logger.Debug("event", "direction", direction, "payload", string(redacted))
}

// redactPayload returns a deep copy of a decoded JSON value with every
// "audio" field, and every "delta" field of a response.audio.delta object,
// truncated to its first and last characters. The argument is never
// mutated, so the transmitted payload and the logged payload diverge only
// in the copy.
func redactPayload(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		audioDelta := typed[events.TypeField] == "response.audio.delta"
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			if key == "audio" || (key == "delta" && audioDelta) {
				if text, ok := item.(string); ok {
					out[key] = truncateMiddle(text)
					continue
				}
			}
			out[key] = redactPayload(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = redactPayload(item)
		}
		return out
	default:
		return value
	}
}

// truncateMiddle slices by runes so a redacted value with multi-byte
// characters stays valid UTF-8 in the logs.
func truncateMiddle(text string) string {
	runes := []rune(text)
	if len(runes) <= 2*redactedEdge {
		return text
	}
	return string(runes[:redactedEdge]) + "…" + string(runes[len(runes)-redactedEdge:])
}
