// ABOUTME: Tests for the render bridge
// ABOUTME: Tests silence for idle timelines, pre-roll tails, loop continuity
package engine

import (
	"encoding/binary"
	"testing"

	"github.com/Cadenza-Audio/cadenza-go/internal/source"
	"github.com/Cadenza-Audio/cadenza-go/pkg/audiotime"
)

// rampSource emits its own position as the sample value, making block
// placement directly checkable.
type rampSource struct{}

func (rampSource) ReadAt(pos int64, out []int16) {
	for i := range out {
		out[i] = int16(pos + int64(i))
	}
}

func (rampSource) SampleRate() int { return 48000 }

func frameAt(p []byte, i int) (left, right int16) {
	left = int16(binary.LittleEndian.Uint16(p[i*bytesPerFrame:]))
	right = int16(binary.LittleEndian.Uint16(p[i*bytesPerFrame+2:]))
	return
}

func newTestEngine() *Engine {
	return New(rampSource{}, 48000)
}

func TestIdleTimelineRendersSilence(t *testing.T) {
	e := newTestEngine()

	p := make([]byte, 256*bytesPerFrame)
	for i := range p {
		p[i] = 0xAA // stale device memory must be overwritten
	}

	n, err := e.bridge.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read = (%d, %v), want (%d, nil)", n, err, len(p))
	}

	for i := 0; i < 256; i++ {
		if l, r := frameAt(p, i); l != 0 || r != 0 {
			t.Fatalf("frame %d not silent: (%d, %d)", i, l, r)
		}
	}
}

func TestStartedTimelineFillsBlockFromSource(t *testing.T) {
	e := newTestEngine()
	tl := e.Timeline()

	p := make([]byte, 256*bytesPerFrame)
	_, _ = e.bridge.Read(p) // anchors the session at device sample 0

	// Timeline position 0 at the next block's first frame.
	tl.SetTimeAtTime(0, audiotime.WithSamples(256))

	_, _ = e.bridge.Read(p)

	for i := 0; i < 256; i++ {
		l, r := frameAt(p, i)
		if l != int16(i) || r != int16(i) {
			t.Fatalf("frame %d = (%d, %d), want (%d, %d)", i, l, r, i, i)
		}
	}
}

func TestPreRollClipLeavesLeadingSilence(t *testing.T) {
	e := newTestEngine()
	tl := e.Timeline()

	p := make([]byte, 256*bytesPerFrame)
	_, _ = e.bridge.Read(p)

	// Audible from device sample 384: the second half of the next block.
	tl.StartAtTime(audiotime.WithSamples(384))

	_, _ = e.bridge.Read(p)

	for i := 0; i < 128; i++ {
		if l, _ := frameAt(p, i); l != 0 {
			t.Fatalf("pre-roll frame %d not silent: %d", i, l)
		}
	}
	for i := 128; i < 256; i++ {
		want := int16(i - 128)
		if l, _ := frameAt(p, i); l != want {
			t.Fatalf("frame %d = %d, want %d", i, l, want)
		}
	}
}

func TestLoopedBlockIsPhaseContinuous(t *testing.T) {
	e := newTestEngine()
	tl := e.Timeline()

	p := make([]byte, 256*bytesPerFrame)
	_, _ = e.bridge.Read(p)

	tl.SetLoop(0, 100)
	tl.SetTimeAtTime(0, audiotime.WithSamples(256))

	_, _ = e.bridge.Read(p)

	// The ramp must restart every 100 frames: 0..99, 0..99, 0..55.
	for i := 0; i < 256; i++ {
		want := int16(i % 100)
		if l, _ := frameAt(p, i); l != want {
			t.Fatalf("frame %d = %d, want %d (loop wrap)", i, l, want)
		}
	}
}

func TestLargePullSplitsIntoRenderBlocks(t *testing.T) {
	e := newTestEngine()

	p := make([]byte, (maxBlock+512)*bytesPerFrame)
	n, err := e.bridge.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read = (%d, %v), want (%d, nil)", n, err, len(p))
	}

	if got := e.bridge.deviceSample; got != maxBlock+512 {
		t.Errorf("device sample advanced to %d, want %d", got, maxBlock+512)
	}
}

var _ source.Source = rampSource{}
