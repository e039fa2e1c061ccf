package deepgram

import (
	"fmt"
	"slices"

	"github.com/satyavak/courtroom-core/core/audio"
)

type encodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

type encodingFormat string

func (e encodingFormat) Name() string { return string(e) }

const (
	encodingLinear16 encodingFormat = "linear16"
	encodingALaw     encodingFormat = "alaw"
	encodingMulaw    encodingFormat = "mulaw"
)

var supportedSampleRates = []int{8000, 16000, 24000, 32000, 48000}

func convertEncoding(encoding audio.EncodingInfo) (*encodingInfo, error) {
	if !slices.Contains(supportedSampleRates, encoding.SampleRate) {
		return nil, fmt.Errorf("unsupported sample rate %d", encoding.SampleRate)
	}

	var format encodingFormat
	switch encoding.Format {
	case audio.EncodingLinear16:
		format = encodingLinear16
	case audio.EncodingALaw:
		format = encodingALaw
	case audio.EncodingMulaw:
		format = encodingMulaw
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding.Format.Name())
	}

	// companded formats are telephony only
	if format != encodingLinear16 && encoding.SampleRate != 8000 {
		return nil, fmt.Errorf("unsupported sample rate %d for %s encoding", encoding.SampleRate, format)
	}

	return &encodingInfo{SampleRate: encoding.SampleRate, Format: format}, nil
}
