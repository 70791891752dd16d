package pipeline

import (
	"strconv"
	"strings"

	"github.com/ctmes/ProfTwo/internal/models"
)

// segmentText cuts narration text into timed transcript segments, one
// sentence per segment on a fixed cadence. The cadence mirrors the original
// player's pacing rather than any real speech timing.
func segmentText(text string, cadenceSeconds int) []models.TranscriptSegment {
	sentences := splitSentences(text)
	segments := make([]models.TranscriptSegment, 0, len(sentences))

	for i, sentence := range sentences {
		segments = append(segments, models.TranscriptSegment{
			SegmentID: strconv.Itoa(i + 1),
			Position:  i,
			Text:      sentence,
			StartTime: float64(i * cadenceSeconds),
			EndTime:   float64((i + 1) * cadenceSeconds),
		})
	}
	return segments
}

func splitSentences(text string) []string {
	var out []string
	var b strings.Builder

	flush := func() {
		s := strings.TrimSpace(b.String())
		if s != "" {
			out = append(out, s)
		}
		b.Reset()
	}

	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			flush()
		}
	}
	flush()
	return out
}
