package timer

import "fmt"

// FormatHours renders whole hours zero-padded to two digits, "00" for nil.
func FormatHours(seconds *int) string {
	if seconds == nil {
		return "00"
	}
	return pad(*seconds / 3600)
}

// FormatMinutes renders the minutes within the hour, "00" for nil.
func FormatMinutes(seconds *int) string {
	if seconds == nil {
		return "00"
	}
	return pad((*seconds % 3600) / 60)
}

// FormatSeconds renders the seconds within the minute, "00" for nil.
func FormatSeconds(seconds *int) string {
	if seconds == nil {
		return "00"
	}
	return pad(*seconds % 60)
}

// FormatClock renders HH:MM:SS.
func FormatClock(seconds *int) string {
	return FormatHours(seconds) + ":" + FormatMinutes(seconds) + ":" + FormatSeconds(seconds)
}

func pad(n int) string {
	return fmt.Sprintf("%02d", n)
}
