// ABOUTME: MP3 file source for transport demos
// ABOUTME: Decodes a whole file into memory for position-addressed reads
package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// FileSource holds a fully decoded MP3 in memory, downmixed to mono, so
// ReadAt is a bounds-checked copy and safe to call from the render path.
type FileSource struct {
	samples    []int16
	sampleRate int
}

// NewFileSource decodes path into memory. go-mp3 always yields 16-bit
// stereo frames at the file's native rate.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// Downmix interleaved stereo to mono.
	frames := len(raw) / 4
	samples := make([]int16, frames)
	for i := 0; i < frames; i++ {
		left := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		right := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		samples[i] = int16((int32(left) + int32(right)) / 2)
	}

	return &FileSource{
		samples:    samples,
		sampleRate: dec.SampleRate(),
	}, nil
}

func (s *FileSource) ReadAt(pos int64, out []int16) {
	for i := range out {
		p := pos + int64(i)
		if p < 0 || p >= int64(len(s.samples)) {
			out[i] = 0
			continue
		}
		out[i] = s.samples[p]
	}
}

func (s *FileSource) SampleRate() int { return s.sampleRate }

// Duration returns the length of the decoded material in samples.
func (s *FileSource) Duration() int64 { return int64(len(s.samples)) }
