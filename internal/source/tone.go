// ABOUTME: Sine tone source for transport demos
// ABOUTME: Generates a fixed-frequency tone addressed by timeline position
package source

import (
	"math"
)

// ToneSource generates a sine tone. Because the phase is a pure function of
// the timeline position, seeks and loop wraps stay click-free at any
// boundary that lands on a whole period.
type ToneSource struct {
	frequency  float64
	sampleRate int
	amplitude  float64
}

// NewToneSource creates a tone source. A 440Hz tone at 48kHz loops cleanly
// on multiples of 1200 samples.
func NewToneSource(frequency float64, sampleRate int) *ToneSource {
	return &ToneSource{
		frequency:  frequency,
		sampleRate: sampleRate,
		amplitude:  0.5,
	}
}

func (s *ToneSource) ReadAt(pos int64, out []int16) {
	step := 2 * math.Pi * s.frequency / float64(s.sampleRate)
	for i := range out {
		phase := float64(pos+int64(i)) * step
		out[i] = int16(math.Sin(phase) * s.amplitude * 32767.0)
	}
}

func (s *ToneSource) SampleRate() int { return s.sampleRate }
