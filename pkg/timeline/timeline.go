// ABOUTME: Sample-accurate transport timeline with a real-time render resolver
// ABOUTME: Control ops publish state snapshots; Render consumes them lock-free
package timeline

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Cadenza-Audio/cadenza-go/pkg/audiotime"
)

// RenderFunc receives contiguous sub-blocks of the timeline during a render
// callback: position is the timeline sample position of the first frame,
// frames the sub-block length. It may be invoked several times per Render
// call (loop wraps), must be real-time safe, and must not reenter control
// operations. State a callback needs travels by closure capture; there is
// no opaque context pointer.
type RenderFunc func(position int64, frames int)

// Timeline coordinates a non-real-time control path (start/stop/seek/loop)
// with a real-time render callback. Control operations mutate a control-side
// copy of the state and publish snapshots through a bounded ring; the render
// path drains the ring at the top of each callback and resolves the block's
// timeline position against the applied copy. The two copies never share
// memory; the ring is the only path between them.
type Timeline struct {
	sampleRate float64
	callback   RenderFunc

	ring stateRing

	// Control-side state, guarded by mu. Written only by control
	// operations.
	mu        sync.Mutex
	loopStart int64
	loopEnd   int64 // 0 means non-looping
	baseTime  audiotime.Time
	waitStart audiotime.Time
	idleTime  int64

	// Render-side applied state. Written only inside Render.
	applied struct {
		loopStart int64
		loopEnd   int64
		baseTime  audiotime.Time
		waitStart audiotime.Time
	}

	// Written by the render path, read by control operations. The anchor is
	// set once per session on the first callback; last-render fields feed
	// Start's next-block computation. Individual atomics instead of one
	// locked struct: the control side only ever takes an approximate
	// polling read, and the render path must not take a contended lock.
	anchorValid   atomic.Bool
	anchorSamples atomic.Int64
	anchorHost    atomic.Uint64

	lastRenderSamples atomic.Int64
	lastRenderHost    atomic.Uint64
	lastRenderFrames  atomic.Int64
}

// New creates a stopped timeline. The callback is invoked from Render with
// resolved sub-block positions; it may be nil for position-query-only use.
func New(sampleRate float64, callback RenderFunc) *Timeline {
	return &Timeline{
		sampleRate: sampleRate,
		callback:   callback,
	}
}

// SampleRate returns the rate all sample positions are expressed in.
func (t *Timeline) SampleRate() float64 { return t.sampleRate }

// Start begins playback at the next render block boundary. It blocks the
// calling goroutine, polling until the render path has produced at least one
// callback so the boundary is known. Never call it from the render path.
func (t *Timeline) Start() {
	for t.lastRenderFrames.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	last := audiotime.WithSampleHost(t.lastRenderSamples.Load(), t.lastRenderHost.Load())
	next := last.Offset(t.lastRenderFrames.Load(), t.sampleRate)
	t.StartAtTime(next)
}

// StartAtTime begins playback at the given instant. Samples between the
// current base time and audioTime are pre-roll and will not be rendered.
// A no-op if the timeline is already started.
func (t *Timeline) StartAtTime(audioTime audiotime.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.startedLocked() {
		return
	}
	if anchor, ok := t.anchor(); ok {
		audioTime = audioTime.Extrapolate(anchor, t.sampleRate)
	}
	t.waitStart = audioTime
	t.setStateLocked(t.idleTime, t.loopStart, t.loopEnd, audioTime)
}

// Stop freezes the timeline. The position at the instant of the call becomes
// the idle position, returned by Position until the next start and used as
// the resume point. Takes effect in the render path at its next drain.
func (t *Timeline) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.idleTime = t.positionAtLocked(audiotime.Now())
	t.baseTime = audiotime.Time{}
	t.waitStart = audiotime.Time{}
	t.synchronizeLocked()
}

// SetTime seeks to sampleTime. Started: the seek is anchored at the current
// instant and any pending pre-roll is cleared. Stopped: only the idle
// position moves; nothing is published.
func (t *Timeline) SetTime(sampleTime int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.startedLocked() {
		t.setTimeAtTimeLocked(sampleTime, audiotime.Now())
		return
	}
	t.idleTime = sampleTime
}

// SetTimeAtTime schedules the timeline to be at sampleTime exactly at
// audioTime, clearing any pending pre-roll.
func (t *Timeline) SetTimeAtTime(sampleTime int64, audioTime audiotime.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setTimeAtTimeLocked(sampleTime, audioTime)
}

func (t *Timeline) setTimeAtTimeLocked(sampleTime int64, audioTime audiotime.Time) {
	t.waitStart = audiotime.Time{}
	t.setStateLocked(sampleTime, t.loopStart, t.loopEnd, audioTime)
}

// SetLoop sets the loop region to [start, start+duration). A zero duration
// with a zero start disables looping. Negative arguments are a programmer
// error.
func (t *Timeline) SetLoop(start, duration int64) {
	if start < 0 || duration < 0 {
		panic("timeline: loop start and duration must be non-negative")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.loopStart = start
	t.loopEnd = start + duration
	t.synchronizeLocked()
}

// SetState atomically sets position, loop bounds and the instant the
// position refers to, and publishes the result. audioTime must be valid in
// at least one domain.
func (t *Timeline) SetState(sampleTime, loopStart, loopEnd int64, audioTime audiotime.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setStateLocked(sampleTime, loopStart, loopEnd, audioTime)
}

// setStateLocked computes the base time that puts sampleTime at audioTime
// and publishes a snapshot.
func (t *Timeline) setStateLocked(sampleTime, loopStart, loopEnd int64, audioTime audiotime.Time) {
	if !audioTime.SampleValid() && !audioTime.HostValid() {
		panic("timeline: audio time must be valid in at least one domain")
	}
	base := audioTime.Offset(-sampleTime, t.sampleRate)
	if anchor, ok := t.anchor(); ok {
		base = base.Extrapolate(anchor, t.sampleRate)
	}
	t.baseTime = base
	t.loopStart = loopStart
	t.loopEnd = loopEnd
	t.synchronizeLocked()
}

// SetRenderState seeds both state copies directly, bypassing the ring. Only
// for initialization, before the render path is running; there is no safe
// way to touch the applied copy once callbacks have begun.
func (t *Timeline) SetRenderState(sampleTime, loopStart, loopEnd int64, audioTime audiotime.Time) {
	if !audioTime.SampleValid() && !audioTime.HostValid() {
		panic("timeline: audio time must be valid in at least one domain")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	base := audioTime.Offset(-sampleTime, t.sampleRate)
	if anchor, ok := t.anchor(); ok {
		base = base.Extrapolate(anchor, t.sampleRate)
	}
	t.baseTime = base
	t.loopStart = loopStart
	t.loopEnd = loopEnd
	t.waitStart = audiotime.Time{}

	t.applied.baseTime = base
	t.applied.loopStart = loopStart
	t.applied.loopEnd = loopEnd
	t.applied.waitStart = audiotime.Time{}
}

// synchronizeLocked publishes the control-side state as a snapshot.
func (t *Timeline) synchronizeLocked() {
	t.ring.publish(message{
		loopStart: t.loopStart,
		loopEnd:   t.loopEnd,
		baseTime:  t.baseTime,
		waitStart: t.waitStart,
	})
}

// IsStarted reports whether the timeline is running. Started means the base
// time is valid in at least one domain; stopped timelines hold an invalid
// base time.
func (t *Timeline) IsStarted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startedLocked()
}

func (t *Timeline) startedLocked() bool {
	return t.baseTime.SampleValid() || t.baseTime.HostValid()
}

// Position returns the timeline position at the current instant.
func (t *Timeline) Position() int64 {
	return t.PositionAt(audiotime.Now())
}

// PositionAt returns the timeline position at audioTime: the idle position
// while stopped (or before the first render callback has anchored the
// session), otherwise the elapsed samples since base time, wrapped into the
// loop region once playback has passed the loop end.
func (t *Timeline) PositionAt(audioTime audiotime.Time) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.positionAtLocked(audioTime)
}

func (t *Timeline) positionAtLocked(audioTime audiotime.Time) int64 {
	if !t.startedLocked() {
		return t.idleTime
	}
	anchor, ok := t.anchor()
	if !ok {
		return t.idleTime
	}

	if !t.baseTime.SampleValid() {
		t.baseTime = t.baseTime.Extrapolate(anchor, t.sampleRate)
	}
	if !audioTime.SampleValid() {
		audioTime = audioTime.Extrapolate(anchor, t.sampleRate)
	}

	total := audioTime.Samples - t.baseTime.Samples
	loopDur := t.loopEnd - t.loopStart
	if t.loopEnd == 0 || loopDur <= 0 || total <= t.loopEnd {
		return total
	}
	return t.loopStart + (total-t.loopStart)%loopDur
}

// anchor returns the session anchor if the first render callback has
// established it.
func (t *Timeline) anchor() (audiotime.Time, bool) {
	if !t.anchorValid.Load() {
		return audiotime.Time{}, false
	}
	return audiotime.WithSampleHost(t.anchorSamples.Load(), t.anchorHost.Load()), true
}

// Reset clears the anchor and last-render record for a stream restart. Only
// valid while the render path is not running, same as SetRenderState.
func (t *Timeline) Reset() {
	t.anchorValid.Store(false)
	t.anchorSamples.Store(0)
	t.anchorHost.Store(0)
	t.lastRenderSamples.Store(0)
	t.lastRenderHost.Store(0)
	t.lastRenderFrames.Store(0)
	t.applied.baseTime = audiotime.Time{}
	t.applied.waitStart = audiotime.Time{}
	t.applied.loopStart = 0
	t.applied.loopEnd = 0
}

// Render is the sole render-path entry point, called once per callback with
// the block's timestamp and frame count. It drains pending snapshots,
// anchors the session on the first callback, resolves the block's timeline
// position, clips pre-roll, and invokes the callback once per contiguous
// sub-block, never straddling the loop boundary. It does not block,
// allocate, or return errors.
func (t *Timeline) Render(ts audiotime.Time, frames int) {
	t.ring.drain(t.applyMessage)

	if !t.anchorValid.Load() && ts.FullyValid() {
		t.anchorSamples.Store(ts.Samples)
		t.anchorHost.Store(ts.Host)
		t.anchorValid.Store(true)
	}
	t.lastRenderSamples.Store(ts.Samples)
	t.lastRenderHost.Store(ts.Host)
	t.lastRenderFrames.Store(int64(frames))

	base := t.applied.baseTime
	if base.Validity == audiotime.NoneValid {
		// Never started as far as the render path knows.
		return
	}

	anchor, anchored := t.anchor()
	if !anchored {
		// No usable sample<->host mapping yet; nothing can be resolved.
		return
	}
	if !base.FullyValid() {
		base = base.Extrapolate(anchor, t.sampleRate)
		t.applied.baseTime = base
	}
	if !ts.SampleValid() {
		ts = ts.Extrapolate(anchor, t.sampleRate)
	}

	// Pre-roll threshold in samples relative to base time. Frames before it
	// (and before timeline zero) stay silent.
	var waitStart int64
	if ws := t.applied.waitStart; ws.SampleValid() {
		waitStart = ws.Samples - base.Samples
	} else if ws.HostValid() {
		ws = ws.Extrapolate(anchor, t.sampleRate)
		t.applied.waitStart = ws
		waitStart = ws.Samples - base.Samples
	}
	startSample := waitStart
	if startSample < 0 {
		startSample = 0
	}

	playerTime := ts.Samples - base.Samples
	framesToRender := int64(frames)

	if playerTime < startSample {
		samplesBelow := startSample - playerTime
		if samplesBelow >= framesToRender {
			// The whole block precedes the start threshold.
			return
		}
		framesToRender -= samplesBelow
		playerTime += samplesBelow
	}

	loopDur := t.applied.loopEnd - t.applied.loopStart
	if t.applied.loopEnd == 0 || loopDur <= 0 {
		if t.callback != nil {
			t.callback(playerTime, int(framesToRender))
		}
		return
	}

	// Split the block at loop boundaries; every sub-block lies inside one
	// loop iteration.
	unlooped := playerTime
	for framesToRender > 0 {
		if unlooped >= t.applied.loopEnd {
			playerTime = t.applied.loopStart + (unlooped-t.applied.loopStart)%loopDur
		}
		n := t.applied.loopEnd - playerTime
		if n > framesToRender {
			n = framesToRender
		}
		if t.callback != nil {
			t.callback(playerTime, int(n))
		}
		playerTime += n
		framesToRender -= n
		unlooped += n
	}
}

func (t *Timeline) applyMessage(m message) {
	t.applied.baseTime = m.baseTime
	t.applied.loopStart = m.loopStart
	t.applied.loopEnd = m.loopEnd
	t.applied.waitStart = m.waitStart
}
