// ABOUTME: Dual-domain audio timestamps (sample count + host ticks)
// ABOUTME: Offset and extrapolation math for crossing the two time domains
package audiotime

import (
	"math"

	"github.com/Cadenza-Audio/cadenza-go/pkg/hosttime"
)

// Validity enumerates which domains of a Time carry a usable value.
// The zero value is NoneValid, so an uninitialized Time reads as "unset".
type Validity uint8

const (
	NoneValid Validity = iota
	SampleOnly
	HostOnly
	BothValid
)

func (v Validity) sampleValid() bool { return v == SampleOnly || v == BothValid }
func (v Validity) hostValid() bool   { return v == HostOnly || v == BothValid }

func (v Validity) withSample() Validity {
	if v.hostValid() {
		return BothValid
	}
	return SampleOnly
}

func (v Validity) withHost() Validity {
	if v.sampleValid() {
		return BothValid
	}
	return HostOnly
}

// Time is a timestamp that may be expressed in the sample domain (a signed
// count of frames on some timeline), the host domain (unsigned monotonic
// ticks), or both. At least one domain must be valid for the value to be
// usable in render-time math.
type Time struct {
	Samples  int64
	Host     uint64
	Validity Validity
}

// Now returns the current instant, valid in the host domain only.
func Now() Time {
	return Time{Host: hosttime.Now(), Validity: HostOnly}
}

// WithSampleHost builds a fully valid timestamp from both domains.
func WithSampleHost(samples int64, host uint64) Time {
	return Time{Samples: samples, Host: host, Validity: BothValid}
}

// WithSamples builds a timestamp valid in the sample domain only.
func WithSamples(samples int64) Time {
	return Time{Samples: samples, Validity: SampleOnly}
}

func (t Time) SampleValid() bool { return t.Validity.sampleValid() }
func (t Time) HostValid() bool   { return t.Validity.hostValid() }
func (t Time) FullyValid() bool  { return t.Validity == BothValid }

// Offset shifts t by a signed number of samples, adjusting every valid
// domain. If the host-domain shift would underflow the unsigned tick range,
// t is returned unmodified; a render path cannot propagate an error and a
// clamped value is strictly better than a wrapped one.
func (t Time) Offset(samples int64, sampleRate float64) Time {
	out := t
	if t.SampleValid() {
		out.Samples += samples
	}
	if t.HostValid() {
		seconds := float64(samples) / sampleRate
		ticks := hosttime.SecondsToTicks(seconds)
		if ticks < 0 && t.Host < uint64(-ticks) {
			return t
		}
		out.Host += uint64(ticks)
	}
	return out
}

// Extrapolate derives the missing domain of t by linear projection through
// anchor, which must be fully valid. If t already has a sample value, the
// host value is (re)derived from it; otherwise the sample value is derived
// from the host value. This is the only place domain crossing happens.
//
// Calling with an unusable t or a partial anchor is a programmer error.
func (t Time) Extrapolate(anchor Time, sampleRate float64) Time {
	if !anchor.FullyValid() {
		panic("audiotime: extrapolate requires a fully valid anchor")
	}
	if t.Validity == NoneValid {
		panic("audiotime: cannot extrapolate an unset timestamp")
	}

	out := t
	if t.SampleValid() {
		secondsDiff := float64(t.Samples-anchor.Samples) / sampleRate
		ticks := hosttime.SecondsToTicks(secondsDiff)
		out.Host = uint64(int64(anchor.Host) + ticks)
		out.Validity = t.Validity.withHost()
	} else {
		secondsDiff := float64(safeSub(t.Host, anchor.Host)) * hosttime.TicksToSeconds()
		out.Samples = anchor.Samples + int64(math.Round(secondsDiff*sampleRate))
		out.Validity = t.Validity.withSample()
	}
	return out
}

// safeSub subtracts two unsigned tick values, producing the mathematically
// correct signed difference even when b > a.
func safeSub(a, b uint64) int64 {
	if a >= b {
		return int64(a - b)
	}
	return -int64(b - a)
}
