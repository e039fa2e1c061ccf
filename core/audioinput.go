package orchestration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/satyavak/courtroom-core/core/audio"
)

// audioInput wraps the optional capture device. Without one, listening relies
// on the speech client receiving audio some other way.
type audioInput struct {
	mu      sync.Mutex
	capture AudioCapture

	// connected reports whether a capture device is configured.
	connected atomic.Bool
	// isCapturing reports whether the device is currently capturing.
	isCapturing atomic.Bool
}

func (a *audioInput) Set(capture AudioCapture) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.capture = capture
	a.connected.Store(capture != nil)
	a.isCapturing.Store(false)
}

func (a *audioInput) IsConfigured() bool { return a.connected.Load() }
func (a *audioInput) IsCapturing() bool  { return a.isCapturing.Load() }

// Start begins capturing into onAudio. Starting twice is a no-op.
func (a *audioInput) Start(ctx context.Context, onAudio func(audio []byte)) error {
	if !a.IsConfigured() {
		return nil
	}
	if !a.isCapturing.CompareAndSwap(false, true) {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.capture.StartCapture(ctx, onAudio); err != nil {
		a.isCapturing.Store(false)
		return err
	}
	return nil
}

func (a *audioInput) Stop() error {
	if !a.isCapturing.CompareAndSwap(true, false) {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.capture.StopCapture()
}

func (a *audioInput) Close() error {
	errs := a.Stop()

	a.mu.Lock()
	defer a.mu.Unlock()
	if closer, ok := a.capture.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	a.connected.Store(false)
	return errs
}

// EncodingInfo describes the captured audio, falling back to the default
// capture format when the device does not say.
func (a *audioInput) EncodingInfo() audio.EncodingInfo {
	a.mu.Lock()
	defer a.mu.Unlock()

	if described, ok := a.capture.(interface{ CaptureEncodingInfo() audio.EncodingInfo }); ok {
		return described.CaptureEncodingInfo()
	}
	return audio.GetDefaultEncodingInfo()
}
