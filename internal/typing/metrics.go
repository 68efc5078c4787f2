package typing

import (
	"math"
	"time"
)

// DefaultSampleInterval is the metrics refresh cadence while a session runs.
const DefaultSampleInterval = 120 * time.Millisecond

// Metrics is a derived snapshot of session performance.
type Metrics struct {
	WPM      int
	Accuracy int
	Errors   int
	Progress int
}

// BaselineMetrics is reported before anything has been typed.
var BaselineMetrics = Metrics{Accuracy: 100}

// Compute derives metrics from the typed map and the session clock. WPM
// counts committed runes per minute and keeps prev.WPM while no time has
// elapsed or the clock has not started.
func Compute(ref *Reference, typed *TypedMap, start, now time.Time, prev Metrics) Metrics {
	out := BaselineMetrics
	out.WPM = prev.WPM
	size := typed.Len()
	if !start.IsZero() {
		minutes := float64(now.Sub(start)) / float64(time.Minute)
		if minutes > 0 {
			out.WPM = roundInt(float64(size) / minutes)
		}
	}
	typed.Each(func(pos int, r rune) {
		if r != ref.At(pos) {
			out.Errors++
		}
	})
	if size > 0 {
		out.Accuracy = roundInt(float64(size-out.Errors) / float64(size) * 100)
	}
	if ref.Len() > 0 {
		out.Progress = roundInt(float64(size) / float64(ref.Len()) * 100)
	}
	return out
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
