// Package miniaudio captures microphone audio through the miniaudio
// library (via malgo). It has no system library dependencies beyond the
// platform audio stack.
package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/swooby/openai-realtime-go/realtime/audio"
)

type Capturer struct {
	audioContext *malgo.AllocatedContext

	mu     sync.Mutex
	device *malgo.Device
}

func New() (*Capturer, error) {
	audioContext, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}
	return &Capturer{audioContext: audioContext}, nil
}

func (c *Capturer) Start(onAudio func(pcm []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device != nil {
		return fmt.Errorf("capture already started")
	}

	format := malgo.FormatS16
	channels := 1
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.SampleRate = uint32(audio.CaptureSampleRate)
	config.Capture.Format = format
	config.Capture.Channels = uint32(channels)
	config.Alsa.NoMMap = 1
	config.PerformanceProfile = malgo.LowLatency
	config.PeriodSizeInFrames = 480
	config.Periods = 3

	device, err := malgo.InitDevice(c.audioContext.Context, config, malgo.DeviceCallbacks{
		Data: dataCallback(onAudio, bytesPerFrame),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	c.device = device
	return nil
}

// dataCallback forwards captured frames to onAudio. It runs on the audio
// thread and must never take the capturer's mutex: Stop holds it across
// device.Stop, which waits for the in-flight callback to finish.
func dataCallback(onAudio func(pcm []byte), bytesPerFrame int) malgo.DataProc {
	return func(_, pInput []byte, frameCount uint32) {
		n := int(frameCount) * bytesPerFrame
		if len(pInput) < n || n == 0 {
			return
		}
		onAudio(pInput[:n])
	}
}

func (c *Capturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return nil
	}
	if c.device.IsStarted() {
		if err := c.device.Stop(); err != nil {
			return fmt.Errorf("failed to stop capture device: %w", err)
		}
	}
	c.device.Uninit()
	c.device = nil
	return nil
}

// Close releases the audio context. The capturer is unusable afterwards.
func (c *Capturer) Close() {
	_ = c.Stop()
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}
