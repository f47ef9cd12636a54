// FILE: lixenwraith/motherboard/clock.go
package motherboard

import (
	"math"
	"time"
)

// Clock converts between durations and sample counts at a given sample rate.
type Clock struct {
	SampleRate int
}

// SampleCountFor returns how many samples cover d, rounded up.
func (c Clock) SampleCountFor(d time.Duration) uint32 {
	return uint32(math.Ceil(float64(c.SampleRate) * d.Seconds()))
}

// SampleCountForBar returns how many samples cover one bar at tempo (BPM) with
// the given time signature. A zero denominator is treated as 4/4.
func (c Clock) SampleCountForBar(tempo float64, numerator, denominator int) uint32 {
	bar := 240.0 / tempo
	if numerator != denominator && denominator != 0 {
		bar *= float64(numerator) / float64(denominator)
	}
	return uint32(math.Ceil(float64(c.SampleRate) * bar))
}

// DurationFor is the inverse of SampleCountFor, rounded up to the millisecond.
func (c Clock) DurationFor(samples uint32) time.Duration {
	ms := math.Ceil(float64(samples) * 1000.0 / float64(c.SampleRate))
	return time.Duration(ms) * time.Millisecond
}

// RateLimiter returns a limiter firing once every d worth of samples.
func (c Clock) RateLimiter(d time.Duration) RateLimiter {
	return RateLimiter{limit: c.SampleCountFor(d)}
}

// RateLimiter counts processed samples and fires when the limit is reached.
// Typical use: rate-limit status output from the render loop.
type RateLimiter struct {
	limit uint32
	count uint32
}

// ShouldUpdate accounts for numSamples processed samples and reports whether the
// limit was reached. The remainder carries over to the next period.
func (r *RateLimiter) ShouldUpdate(numSamples uint32) bool {
	r.count += numSamples
	if r.count >= r.limit {
		r.count -= r.limit
		return true
	}
	return false
}
