// ABOUTME: Audio engine bridging oto device pulls to timeline render callbacks
// ABOUTME: Each device read becomes one Render call with a dual-domain timestamp
package engine

import (
	"fmt"
	"log"

	"github.com/Cadenza-Audio/cadenza-go/internal/source"
	"github.com/Cadenza-Audio/cadenza-go/pkg/audiotime"
	"github.com/Cadenza-Audio/cadenza-go/pkg/hosttime"
	"github.com/Cadenza-Audio/cadenza-go/pkg/timeline"
	"github.com/ebitengine/oto/v3"
)

const (
	channels      = 2
	bytesPerFrame = channels * 2 // 16-bit stereo
	maxBlock      = 8192         // frames per Render call
)

// Engine owns the device output and the transport timeline driving it. The
// oto player pulls PCM through a renderBridge whose Read is treated as the
// render callback: it timestamps the block, runs the timeline resolver, and
// fills the block from the source at the resolved positions.
type Engine struct {
	bridge     *renderBridge
	sampleRate int
	otoCtx     *oto.Context
	player     *oto.Player
}

// New creates an engine rendering src through a fresh timeline. The device
// is not opened until Start.
func New(src source.Source, sampleRate int) *Engine {
	bridge := &renderBridge{src: src}
	bridge.tl = timeline.New(float64(sampleRate), bridge.renderSubBlock)

	return &Engine{
		bridge:     bridge,
		sampleRate: sampleRate,
	}
}

// Timeline returns the transport timeline. All control operations (start,
// stop, seek, loop) go through it.
func (e *Engine) Timeline() *timeline.Timeline { return e.bridge.tl }

// Start opens the audio device and begins pulling render blocks. The
// timeline stays idle until its own Start is called; until then the device
// plays silence.
func (e *Engine) Start() error {
	op := &oto.NewContextOptions{
		SampleRate:   e.sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	e.otoCtx = ctx
	e.player = ctx.NewPlayer(e.bridge)
	e.player.Play()

	log.Printf("Audio engine started: %dHz, %d channels", e.sampleRate, channels)
	return nil
}

// Close stops the device.
func (e *Engine) Close() {
	if e.player != nil {
		_ = e.player.Close()
		e.player = nil
	}
	if e.otoCtx != nil {
		e.otoCtx.Suspend()
		e.otoCtx = nil
	}
}

// renderBridge adapts oto's pull model to the timeline's push model. Only
// the device goroutine calls Read, so the fields need no locking.
type renderBridge struct {
	tl  *timeline.Timeline
	src source.Source

	deviceSample int64
	scratch      [maxBlock]int16
	cursor       int
}

// renderSubBlock is the timeline's downstream callback: it reads source
// material for one contiguous sub-block into the scratch buffer. Sub-blocks
// within one Render call are consecutive device frames, so they pack
// back-to-back.
func (b *renderBridge) renderSubBlock(pos int64, frames int) {
	b.src.ReadAt(pos, b.scratch[b.cursor:b.cursor+frames])
	b.cursor += frames
}

// Read handles one device pull. Blocks larger than the scratch buffer are
// processed as consecutive render callbacks.
func (b *renderBridge) Read(p []byte) (int, error) {
	total := len(p) / bytesPerFrame
	if total == 0 {
		return 0, nil
	}

	done := 0
	for done < total {
		frames := total - done
		if frames > maxBlock {
			frames = maxBlock
		}
		b.renderBlock(p[done*bytesPerFrame : (done+frames)*bytesPerFrame])
		done += frames
	}
	return total * bytesPerFrame, nil
}

// renderBlock runs one render callback over p. Frames the timeline declines
// to render (stopped, or clipped by pre-roll) stay silent; rendered frames
// always form the tail of the block because clipping only trims the front.
func (b *renderBridge) renderBlock(p []byte) {
	frames := len(p) / bytesPerFrame

	b.cursor = 0
	ts := audiotime.WithSampleHost(b.deviceSample, hosttime.Now())
	b.tl.Render(ts, frames)
	b.deviceSample += int64(frames)

	rendered := b.cursor
	silent := (frames - rendered) * bytesPerFrame
	for i := 0; i < silent; i++ {
		p[i] = 0
	}

	for i := 0; i < rendered; i++ {
		v := uint16(b.scratch[i])
		off := silent + i*bytesPerFrame
		p[off] = byte(v)
		p[off+1] = byte(v >> 8)
		p[off+2] = byte(v)
		p[off+3] = byte(v >> 8)
	}
}
