// Package portaudio captures microphone audio through PortAudio. It
// requires the PortAudio system library.
package portaudio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/swooby/openai-realtime-go/realtime/audio"
)

type Capturer struct {
	bufferSize int

	mu      sync.Mutex
	stream  *portaudio.Stream
	in      []int16
	stopped chan struct{}
	done    sync.WaitGroup
}

func New(bufferSize int) (*Capturer, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	in := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, audio.CaptureSampleRate, bufferSize, in)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open PortAudio stream: %w", err)
	}

	return &Capturer{bufferSize: bufferSize, stream: stream, in: in}, nil
}

func (c *Capturer) Start(onAudio func(pcm []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped != nil {
		return fmt.Errorf("capture already started")
	}
	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start PortAudio stream: %w", err)
	}

	c.stopped = make(chan struct{})
	c.done.Add(1)
	go c.readLoop(onAudio, c.stopped)
	return nil
}

const (
	// maxConsecutiveReadFailures bounds how long a broken stream is
	// retried before the loop gives up; a healthy read resets the count.
	maxConsecutiveReadFailures = 10
	readFailureBackoff         = 10 * time.Millisecond
)

func (c *Capturer) readLoop(onAudio func(pcm []byte), stopped chan struct{}) {
	defer c.done.Done()
	captureLoop(stopped, c.stream.Read, func() {
		buffer := bytes.Buffer{}
		_ = binary.Write(&buffer, binary.LittleEndian, c.in)
		onAudio(buffer.Bytes())
	})
}

func captureLoop(stopped <-chan struct{}, read func() error, emit func()) {
	failures := 0
	for {
		select {
		case <-stopped:
			return
		default:
		}

		if err := read(); err != nil {
			failures++
			if failures >= maxConsecutiveReadFailures {
				logger.Warn("stopping capture after repeated read failures", "error", err)
				return
			}
			logger.Debug("failed to read from PortAudio stream", "error", err)
			select {
			case <-stopped:
				return
			case <-time.After(readFailureBackoff):
			}
			continue
		}
		failures = 0
		emit()
	}
}

func (c *Capturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped == nil {
		return nil
	}
	close(c.stopped)
	c.done.Wait()
	c.stopped = nil

	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop PortAudio stream: %w", err)
	}
	return nil
}

// Close releases the stream and PortAudio itself.
func (c *Capturer) Close() {
	_ = c.Stop()
	_ = c.stream.Close()
	_ = portaudio.Terminate()
}
