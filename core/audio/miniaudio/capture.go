package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/satyavak/courtroom-core/core/audio"
)

// captureClient feeds microphone frames to a single listener.
type captureClient struct {
	device   *malgo.Device
	encoding audio.EncodingInfo

	onAudio func(audio []byte)

	mu sync.Mutex
}

func (c *captureClient) Init(audioContext *malgo.AllocatedContext, encoding audio.EncodingInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format)

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.SampleRate = uint32(encoding.SampleRate)
	config.Capture.Format = format
	config.Capture.Channels = 1
	config.Alsa.NoMMap = 1
	config.PerformanceProfile = malgo.LowLatency
	config.PeriodSizeInFrames = 480
	config.Periods = 3

	device, err := malgo.InitDevice(audioContext.Context, config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}
			c.mu.Lock()
			onAudio := c.onAudio
			c.mu.Unlock()
			if onAudio != nil {
				// the device reuses its buffer after the callback returns
				onAudio(append([]byte(nil), pInput[:n]...))
			}
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	c.device = device
	c.encoding = encoding
	return nil
}

func (c *captureClient) Start(onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("capture device not initialized")
	}

	c.onAudio = onAudio
	if c.device.IsStarted() {
		return nil
	}
	if err := c.device.Start(); err != nil {
		c.onAudio = nil
		return fmt.Errorf("failed to start capture device: %w", err)
	}
	return nil
}

func (c *captureClient) Stop() error {
	c.mu.Lock()
	c.onAudio = nil
	device := c.device
	c.mu.Unlock()

	if device == nil || !device.IsStarted() {
		return nil
	}
	// Stop waits for the data callback, which takes the lock.
	if err := device.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}
	return nil
}

func (c *captureClient) Uninit() {
	c.mu.Lock()
	device := c.device
	c.device = nil
	c.onAudio = nil
	c.mu.Unlock()

	if device != nil {
		device.Uninit()
	}
}
