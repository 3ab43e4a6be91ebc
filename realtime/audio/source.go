// Package audio provides local audio capture as the media-source
// capability consumed by the peer transport, plus the sample encoding
// needed to frame captured PCM onto the outbound RTP track.
//
// A capture backend (see the miniaudio and portaudio subpackages) delivers
// raw PCM16 frames; [Microphone] adapts one into a
// [transports.MediaSourceFunc] that owns a single outbound μ-law audio
// track for the lifetime of a session.
package audio

import (
	"context"
	"fmt"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"

	"github.com/swooby/openai-realtime-go/realtime/transports"
)

// Capturer is a microphone backend producing little-endian PCM16 frames at
// CaptureSampleRate, mono.
type Capturer interface {
	Start(onAudio func(pcm []byte)) error
	Stop() error
}

// Microphone adapts a capture backend into the media-source capability.
// The returned function starts the capture when the peer transport invokes
// it; closing the source stops the capture.
func Microphone(capturer Capturer) transports.MediaSourceFunc {
	return func(_ context.Context) (transports.MediaSource, error) {
		track, err := webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{
			MimeType:  webrtc.MimeTypePCMU,
			ClockRate: TrackSampleRate,
			Channels:  1,
		}, "audio", "microphone")
		if err != nil {
			return nil, fmt.Errorf("failed to create audio track: %w", err)
		}

		source := &trackSource{track: track, capturer: capturer}
		if err := capturer.Start(source.push); err != nil {
			return nil, fmt.Errorf("failed to start capture: %w", err)
		}
		return source, nil
	}
}

type trackSource struct {
	track    *webrtc.TrackLocalStaticSample
	capturer Capturer
}

func (s *trackSource) push(pcm []byte) {
	encoded := EncodePCMU(pcm)
	if len(encoded) == 0 {
		return
	}
	err := s.track.WriteSample(media.Sample{
		Data:     encoded,
		Duration: time.Duration(len(encoded)) * time.Second / TrackSampleRate,
	})
	if err != nil {
		logger.Debug("dropping microphone sample", "error", err)
	}
}

func (s *trackSource) Tracks() []webrtc.TrackLocal {
	return []webrtc.TrackLocal{s.track}
}

func (s *trackSource) Close() error {
	return s.capturer.Stop()
}
