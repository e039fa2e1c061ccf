// Package miniaudio drives the default capture and playback devices through
// malgo. Capture feeds the recognizer, playback renders courtroom cues.
package miniaudio

import (
	"context"
	"errors"
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/satyavak/courtroom-core/core/audio"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var logger = otelslog.NewLogger("github.com/satyavak/courtroom-core/core/audio/miniaudio")

type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	playbackClient
	captureClient
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logger.Debug("malgo", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	client := Client{audioContext: audioCtx}

	if err := client.playbackClient.Init(audioCtx, audio.GetPlaybackEncodingInfo()); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize playback client: %w", err)
	}

	if err := client.captureClient.Init(audioCtx, audio.GetDefaultEncodingInfo()); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize capture client: %w", err)
	}

	return &client, nil
}

func (c *Client) StartCapture(_ context.Context, onAudio func(audio []byte)) error {
	return c.captureClient.Start(onAudio)
}

func (c *Client) StopCapture() error {
	return c.captureClient.Stop()
}

func (c *Client) CaptureEncodingInfo() audio.EncodingInfo {
	return c.captureClient.encoding
}

// Play starts the playback device lazily and queues pcm in the mixer.
func (c *Client) Play(id string, pcm []byte, volume float64, loop bool) error {
	if err := c.playbackClient.Start(); err != nil {
		return err
	}
	c.mixer.Play(id, pcm, volume, loop)
	return nil
}

func (c *Client) Stop(id string) {
	c.mixer.Stop(id)
}

func (c *Client) SetMuted(muted bool) {
	c.mixer.SetMuted(muted)
}

func (c *Client) Close() error {
	errs := []error{c.captureClient.Stop(), c.playbackClient.Stop()}
	c.captureClient.Uninit()
	c.playbackClient.Uninit()
	if c.audioContext != nil {
		errs = append(errs, c.audioContext.Uninit())
		c.audioContext.Free()
		c.audioContext = nil
	}
	return errors.Join(errs...)
}
