package player

import "fmt"

// FormatTime renders a play-head offset in seconds as "MM:SS".
// Negative offsets clamp to 00:00; minutes are not capped at 59.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
