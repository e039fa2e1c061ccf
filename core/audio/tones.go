package audio

import (
	"math"
	"math/rand/v2"
	"time"
)

// Synthesized cues are used when no recorded sound is configured. They are
// deterministic for a given sample rate.

// SynthesizeGavel renders two short wooden knocks.
func SynthesizeGavel(sampleRate int) []byte {
	knock := percussive(sampleRate, 180*time.Millisecond, 190, 28)
	gap := make([]int16, samplesFor(sampleRate, 120*time.Millisecond))
	return SamplesToBytes(concat(knock, gap, knock))
}

// SynthesizeCough renders a short burst of shaped noise.
func SynthesizeCough(sampleRate int) []byte {
	rng := rand.New(rand.NewPCG(1, 7))
	n := samplesFor(sampleRate, 350*time.Millisecond)
	samples := make([]int16, n)
	var low float64
	for i := range samples {
		t := float64(i) / float64(n)
		envelope := math.Sin(math.Pi*math.Min(1, t*4)) * math.Exp(-4*t)
		low += 0.25 * (rng.NormFloat64() - low)
		samples[i] = clampSample(low * envelope * 14000)
	}
	return SamplesToBytes(samples)
}

// SynthesizeMurmur renders a low swell of crowd-like noise.
func SynthesizeMurmur(sampleRate int) []byte {
	rng := rand.New(rand.NewPCG(2, 11))
	n := samplesFor(sampleRate, 1200*time.Millisecond)
	samples := make([]int16, n)
	var low float64
	for i := range samples {
		t := float64(i) / float64(n)
		envelope := math.Sin(math.Pi * t)
		wobble := 0.6 + 0.4*math.Sin(2*math.Pi*5*float64(i)/float64(sampleRate))
		low += 0.05 * (rng.NormFloat64() - low)
		samples[i] = clampSample(low * envelope * wobble * 30000)
	}
	return SamplesToBytes(samples)
}

// SynthesizeAmbience renders a seamless loop of quiet room tone.
func SynthesizeAmbience(sampleRate int) []byte {
	rng := rand.New(rand.NewPCG(3, 13))
	n := samplesFor(sampleRate, 4*time.Second)
	fade := samplesFor(sampleRate, 200*time.Millisecond)
	samples := make([]int16, n)
	var brown float64
	for i := range samples {
		brown = 0.995*brown + 0.05*rng.NormFloat64()
		gain := 1.0
		if i < fade {
			gain = float64(i) / float64(fade)
		} else if i >= n-fade {
			gain = float64(n-i) / float64(fade)
		}
		samples[i] = clampSample(brown * gain * 6000)
	}
	return SamplesToBytes(samples)
}

func percussive(sampleRate int, duration time.Duration, frequency, decay float64) []int16 {
	n := samplesFor(sampleRate, duration)
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		tone := math.Sin(2*math.Pi*frequency*t) + 0.5*math.Sin(2*math.Pi*frequency*2.7*t)
		samples[i] = clampSample(tone * math.Exp(-decay*t) * 20000)
	}
	return samples
}

func samplesFor(sampleRate int, duration time.Duration) int {
	return int(int64(sampleRate) * int64(duration) / int64(time.Second))
}

func concat(parts ...[]int16) []int16 {
	var out []int16
	for _, part := range parts {
		out = append(out, part...)
	}
	return out
}
