// ABOUTME: Package documentation for the transport timeline
// ABOUTME: Explains the control/render split and basic usage
// Package timeline provides a sample-accurate transport synchronizer for
// audio engines: user code sets playback position, loop bounds and
// start/stop on any goroutine, while a real-time render callback resolves
// each block's timeline position without blocking, allocating, or taking a
// contended lock.
//
// Control operations never touch render state directly. They publish
// snapshots through a bounded ring that the render path drains at the top
// of each callback, last write winning. The first render callback anchors
// the session's sample<->host-tick mapping; every later conversion between
// the two domains goes through that anchor (see pkg/audiotime).
//
// Example:
//
//	tl := timeline.New(48000, func(pos int64, frames int) {
//	    // render frames starting at timeline position pos
//	})
//	// from the audio backend, once per block:
//	tl.Render(audiotime.WithSampleHost(deviceSample, hosttime.Now()), frames)
//	// from anywhere else:
//	tl.SetLoop(0, 48000)
//	tl.Start()
package timeline
