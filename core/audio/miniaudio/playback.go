package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/satyavak/courtroom-core/core/audio"
)

// playbackClient renders the cue mixer to the default output device.
type playbackClient struct {
	device *malgo.Device
	mixer  *audio.Mixer

	mu sync.Mutex
}

func (c *playbackClient) Init(audioContext *malgo.AllocatedContext, encoding audio.EncodingInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format)

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.SampleRate = uint32(encoding.SampleRate)
	config.Playback.Format = format
	config.Playback.Channels = 1
	config.Alsa.NoMMap = 1
	config.PeriodSizeInFrames = uint32(encoding.SampleRate / 50) // ~20ms of audio
	config.Periods = 4

	mixer := audio.NewMixer()
	device, err := malgo.InitDevice(audioContext.Context, config, malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pOutput) < n {
				n = len(pOutput)
			}
			mixer.Read(pOutput[:n])
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	c.device = device
	c.mixer = mixer
	return nil
}

func (c *playbackClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("playback device not initialized")
	} else if c.device.IsStarted() {
		return nil
	}

	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}
	return nil
}

func (c *playbackClient) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil || !c.device.IsStarted() {
		return nil
	}

	if err := c.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop playback device: %w", err)
	}
	c.mixer.StopAll()
	return nil
}

func (c *playbackClient) Uninit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
}
