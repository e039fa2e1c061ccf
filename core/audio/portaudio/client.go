// Package portaudio captures microphone audio through PortAudio. It is the
// alternative to the miniaudio backend on hosts where malgo cannot open the
// default capture device.
package portaudio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/satyavak/courtroom-core/core/audio"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var logger = otelslog.NewLogger("github.com/satyavak/courtroom-core/core/audio/portaudio")

const DefaultBufferSize = 480

type Client struct {
	stream *portaudio.Stream
	in     []int16

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewClient(bufferSize int) (*Client, error) {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	in := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, audio.DefaultSampleRate, bufferSize, in)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w", err)
	}

	return &Client{stream: stream, in: in}, nil
}

// StartCapture reads the microphone on a separate goroutine until
// StopCapture is called or ctx is done.
func (c *Client) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return nil
	}

	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start portaudio stream: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel, c.done = cancel, done

	go func() {
		defer close(done)
		for ctx.Err() == nil {
			if err := c.stream.Read(); err != nil {
				if errors.Is(err, portaudio.InputOverflowed) {
					continue
				}
				logger.WarnContext(ctx, "failed to read from portaudio stream", "error", err)
				return
			}
			onAudio(audio.SamplesToBytes(c.in))
		}
	}()
	return nil
}

func (c *Client) StopCapture() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop portaudio stream: %w", err)
	}
	return nil
}

func (c *Client) CaptureEncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (c *Client) Close() error {
	return errors.Join(c.StopCapture(), c.stream.Close(), portaudio.Terminate())
}
