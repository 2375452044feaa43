package stats

import "fmt"

const (
	msPerSecond = 1000.0

	// secondsThreshold is the millisecond value at which formatting
	// switches from milliseconds to seconds. A formatting policy, not a
	// correctness invariant.
	secondsThreshold = 10000.0
)

// FormatDuration renders a millisecond value as "12.3ms" below the seconds
// threshold and as "12.345s" at or above it.
func FormatDuration(ms float64) string {
	if ms < secondsThreshold {
		return fmt.Sprintf("%.1fms", ms)
	}

	return fmt.Sprintf("%.3fs", ms/msPerSecond)
}
