// FILE: lixenwraith/motherboard/constants.go
package motherboard

import (
	"cmp"
	"math"
	"time"
)

// BatchSize is the number of frames the host renders per block.
const BatchSize = 64

// CV readings are clamped to this range by the CV mapping helpers.
const (
	MinCVValue = -10000.0
	MaxCVValue = 10000.0
)

// Log verbosities used with logr's V(). Trace output is only produced on the
// render path when explicitly enabled.
const (
	LevelDebug = 4
	LevelTrace = 5
)

// Clamp bounds v to [lower, upper].
func Clamp[T cmp.Ordered](v, lower, upper T) T {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}

// Equals5DP compares two floats with 5 decimal places of precision.
func Equals5DP(a, b float64) bool {
	return math.Abs(a-b) < 1e-5
}

// BatchDuration returns the wall-clock length of one block at sampleRate.
func BatchDuration(sampleRate int) time.Duration {
	return time.Duration(float64(BatchSize) * float64(time.Second) / float64(sampleRate))
}

// BatchCountToFitDuration returns how many blocks are needed to cover d.
func BatchCountToFitDuration(sampleRate int, d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(float64(d) / float64(BatchDuration(sampleRate))))
}
