package audio

import (
	"slices"
	"sync"
)

// Mixer sums any number of linear16 voices into a single output stream.
// Voices are keyed by id; playing an id again restarts it.
//
// While muted the mixer outputs silence, drops one-shot voices and keeps
// looping voices paused at their position.
type Mixer struct {
	mu     sync.Mutex
	voices map[string]*voice
	muted  bool
}

type voice struct {
	samples []int16
	pos     int
	volume  float64
	loop    bool
}

func NewMixer() *Mixer {
	return &Mixer{voices: map[string]*voice{}}
}

// Play starts a voice. One-shot voices are ignored while muted.
func (m *Mixer) Play(id string, pcm []byte, volume float64, loop bool) {
	samples := BytesToSamples(pcm)
	if len(samples) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.muted && !loop {
		return
	}
	m.voices[id] = &voice{samples: samples, volume: max(0, volume), loop: loop}
}

func (m *Mixer) Stop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.voices, id)
}

func (m *Mixer) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.voices)
}

func (m *Mixer) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.muted = muted
	if muted {
		for id, v := range m.voices {
			if !v.loop {
				delete(m.voices, id)
			}
		}
	}
}

// Playing returns the ids of the voices that are still active, sorted.
func (m *Mixer) Playing() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.voices))
	for id := range m.voices {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Read fills out with the next len(out)/2 mixed samples and returns the
// number of bytes written, which is always the even part of len(out).
func (m *Mixer) Read(out []byte) int {
	n := len(out) / 2
	mixed := make([]float64, n)

	m.mu.Lock()
	if !m.muted {
		for id, v := range m.voices {
			for i := 0; i < n; i++ {
				if v.pos >= len(v.samples) {
					if !v.loop {
						delete(m.voices, id)
						break
					}
					v.pos = 0
				}
				mixed[i] += float64(v.samples[v.pos]) * v.volume
				v.pos++
			}
			if !v.loop && v.pos >= len(v.samples) {
				delete(m.voices, id)
			}
		}
	}
	m.mu.Unlock()

	samples := make([]int16, n)
	for i, value := range mixed {
		samples[i] = clampSample(value)
	}
	return copy(out, SamplesToBytes(samples))
}
