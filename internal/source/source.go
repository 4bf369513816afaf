// ABOUTME: Audio sources addressed by timeline position
// ABOUTME: Defines the position-addressed read interface the engine renders from
package source

// A Source produces mono 16-bit PCM for arbitrary timeline positions. The
// timeline hands the engine (position, frames) pairs that never straddle a
// loop boundary, so a Source only ever sees contiguous reads. ReadAt must be
// real-time safe: no blocking, no allocation.
type Source interface {
	// ReadAt fills out with samples starting at timeline position pos.
	// Positions outside the source's material yield silence.
	ReadAt(pos int64, out []int16)

	// SampleRate returns the rate the material is expressed in.
	SampleRate() int
}
