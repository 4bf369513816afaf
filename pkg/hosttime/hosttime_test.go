// ABOUTME: Tests for the host-tick clock
// ABOUTME: Tests monotonicity and tick/seconds conversion round-trips
package hosttime

import (
	"testing"
	"time"
)

func TestNowIsMonotonic(t *testing.T) {
	a := Now()
	time.Sleep(2 * time.Millisecond)
	b := Now()

	if b <= a {
		t.Errorf("expected ticks to advance, got %d then %d", a, b)
	}
}

func TestTicksToSecondsIsStable(t *testing.T) {
	first := TicksToSeconds()
	second := TicksToSeconds()

	if first != second {
		t.Errorf("conversion factor changed between calls: %g vs %g", first, second)
	}
	if first <= 0 {
		t.Errorf("conversion factor must be positive, got %g", first)
	}
}

func TestSecondsToTicksRoundTrip(t *testing.T) {
	for _, seconds := range []float64{0, 0.001, 0.5, 1, 60} {
		ticks := SecondsToTicks(seconds)
		back := float64(ticks) * TicksToSeconds()

		// Within one tick of rounding error.
		if diff := back - seconds; diff > TicksToSeconds() || diff < -TicksToSeconds() {
			t.Errorf("round trip for %gs drifted by %gs", seconds, diff)
		}
	}
}

func TestSecondsToTicksRoundsNegativeTowardNearest(t *testing.T) {
	ticks := SecondsToTicks(-1)
	if ticks >= 0 {
		t.Errorf("expected negative tick count for -1s, got %d", ticks)
	}

	back := float64(ticks) * TicksToSeconds()
	if diff := back + 1; diff > TicksToSeconds() || diff < -TicksToSeconds() {
		t.Errorf("negative round trip drifted by %gs", diff)
	}
}
