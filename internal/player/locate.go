package player

import "github.com/ctmes/ProfTwo/internal/models"

// Locate finds the transcript segment whose interval contains t
// (startTime <= t <= endTime, both ends inclusive).
//
// The scan is in sequence order, so when malformed input contains
// overlapping intervals the earliest-indexed match wins. That tie-break is
// deliberate, not an error. Gaps between segments and pre/post-roll
// return no match.
func Locate(segments []models.TranscriptSegment, t float64) (*models.TranscriptSegment, bool) {
	for i := range segments {
		if t >= segments[i].StartTime && t <= segments[i].EndTime {
			return &segments[i], true
		}
	}
	return nil, false
}
