// Package session describes the session configuration forwarded to the
// remote side during connection negotiation.
//
// Every field is optional: the zero Config marshals to an empty object, so
// only caller-set fields reach the wire. The peer transport merges the
// config with the model name into the credential-exchange request body; the
// socket transport accepts a config for interface parity but sessions over
// it are configured via session.update events after connecting.
package session

import (
	"github.com/jinzhu/copier"
)

type Config struct {
	Modalities              []string            `json:"modalities,omitempty"`
	Instructions            string              `json:"instructions,omitempty"`
	Voice                   string              `json:"voice,omitempty"`
	InputAudioFormat        string              `json:"input_audio_format,omitempty"`
	OutputAudioFormat       string              `json:"output_audio_format,omitempty"`
	InputAudioTranscription *AudioTranscription `json:"input_audio_transcription,omitempty"`
	TurnDetection           *TurnDetection      `json:"turn_detection,omitempty"`
	Tools                   []Tool              `json:"tools,omitempty"`
	ToolChoice              string              `json:"tool_choice,omitempty"`
	Temperature             *float64            `json:"temperature,omitempty"`
	MaxResponseOutputTokens int                 `json:"max_response_output_tokens,omitempty"`
}

type AudioTranscription struct {
	Model string `json:"model,omitempty"`
}

type TurnDetection struct {
	Type              string   `json:"type,omitempty"`
	Threshold         *float64 `json:"threshold,omitempty"`
	PrefixPaddingMs   int      `json:"prefix_padding_ms,omitempty"`
	SilenceDurationMs int      `json:"silence_duration_ms,omitempty"`
	CreateResponse    *bool    `json:"create_response,omitempty"`
}

// Clone returns a deep copy. The peer transport snapshots the caller's
// config before negotiation so concurrent mutation cannot change the body
// mid-flight.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := &Config{}
	if err := copier.CopyWithOption(clone, c, copier.Option{DeepCopy: true}); err != nil {
		// Config is a plain data struct; copier cannot fail on it.
		panic(err)
	}
	return clone
}
