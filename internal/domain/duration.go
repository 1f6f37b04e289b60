package domain

import (
	"fmt"
	"math"
	"time"
)

// ComputeDuration returns the length of [start, end] in whole minutes and its
// display label. Minutes are rounded half up. A span that ends before it
// starts is not rejected and yields a negative count.
func ComputeDuration(start, end time.Time) (int, string) {
	diffMs := float64(end.Sub(start).Milliseconds())
	minutesTotal := int(math.Floor(diffMs/float64(time.Minute/time.Millisecond) + 0.5))
	return minutesTotal, FormatDurationLabel(minutesTotal)
}

// FormatDurationLabel renders a minute count as "2h 5m", or "45m" below one hour.
func FormatDurationLabel(minutesTotal int) string {
	hours := floorDiv(minutesTotal, 60)
	minutes := minutesTotal % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
