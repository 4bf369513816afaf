// ABOUTME: Monotonic host-tick clock for render-time math
// ABOUTME: Provides tick readings and the cached tick-to-seconds factor
package hosttime

import (
	"sync"
	"time"
)

var (
	initOnce      sync.Once
	processStart  time.Time
	tickerSeconds float64
)

// Host ticks are nanoseconds on the runtime monotonic clock. Readings are
// biased well away from zero so that subtracting a sample offset shortly
// after process start cannot underflow the unsigned range.
const (
	nanosPerTick = 1.0
	tickEpoch    = uint64(1) << 62
)

func initClock() {
	processStart = time.Now()
	tickerSeconds = nanosPerTick * 1e-9
}

// Now returns the current host-tick reading. Ticks are monotonic and
// unsigned; callers doing arithmetic across readings must use signed-safe
// subtraction.
func Now() uint64 {
	initOnce.Do(initClock)
	return tickEpoch + uint64(time.Since(processStart).Nanoseconds())
}

// TicksToSeconds returns the factor converting one host tick to seconds.
// Computed once per process; safe to race on first use because the
// computation is idempotent and side-effect free.
func TicksToSeconds() float64 {
	initOnce.Do(initClock)
	return tickerSeconds
}

// SecondsToTicks converts a duration in seconds to whole host ticks,
// rounding to nearest.
func SecondsToTicks(seconds float64) int64 {
	ticks := seconds / TicksToSeconds()
	if ticks < 0 {
		return int64(ticks - 0.5)
	}
	return int64(ticks + 0.5)
}
