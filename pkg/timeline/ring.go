// ABOUTME: Bounded snapshot ring crossing from control path to render path
// ABOUTME: Lock-free SPSC append/pop with a short-held section for eviction
package timeline

import (
	"sync"
	"sync/atomic"

	"github.com/Cadenza-Audio/cadenza-go/pkg/audiotime"
)

// message is one timeline-state snapshot in flight from a control operation
// to the render callback. Only the latest snapshot matters; intermediate
// ones may be discarded under pressure.
type message struct {
	loopStart int64
	loopEnd   int64
	baseTime  audiotime.Time
	waitStart audiotime.Time
}

const ringCapacity = 32

// stateRing is a single-producer/single-consumer ring of state snapshots.
// Appends and pops are lock-free on atomic head/tail counters. The mutex
// serializes who acts as the consumer: normally the render path (drain),
// but a publisher that finds the ring full takes it briefly to evict the
// oldest unread snapshots and make room.
type stateRing struct {
	mu    sync.Mutex
	slots [ringCapacity]message
	head  atomic.Uint64 // next slot to write
	tail  atomic.Uint64 // next slot to read
}

func (r *stateRing) tryAppend(m message) bool {
	head := r.head.Load()
	if head-r.tail.Load() == ringCapacity {
		return false
	}
	r.slots[head%ringCapacity] = m
	r.head.Store(head + 1)
	return true
}

func (r *stateRing) pop() (message, bool) {
	tail := r.tail.Load()
	if tail == r.head.Load() {
		return message{}, false
	}
	m := r.slots[tail%ringCapacity]
	r.tail.Store(tail + 1)
	return m, true
}

// publish appends a snapshot and never fails. When the ring is full it
// holds the consumer section just long enough to discard stale snapshots
// until the append succeeds.
func (r *stateRing) publish(m message) {
	if r.tryAppend(m) {
		return
	}
	r.mu.Lock()
	for !r.tryAppend(m) {
		r.pop()
	}
	r.mu.Unlock()
}

// drain pops every queued snapshot oldest-first and applies it, so the last
// application wins. If a publisher currently holds the consumer section the
// drain is skipped entirely; the render path never waits, it catches up on
// the next callback.
func (r *stateRing) drain(apply func(message)) {
	if !r.mu.TryLock() {
		return
	}
	for {
		m, ok := r.pop()
		if !ok {
			break
		}
		apply(m)
	}
	r.mu.Unlock()
}
