package player

import (
	"sync"

	"github.com/ctmes/ProfTwo/internal/models"
)

// ScrollRequest asks the view layer to bring a segment's anchor into view.
type ScrollRequest struct {
	SegmentID string `json:"segmentId"`
	Behavior  string `json:"behavior"` // "smooth"
	Block     string `json:"block"`    // "center"
}

// ScrollSink receives scroll requests. The HTTP layer forwards them over
// the session's event feed; tests record them.
type ScrollSink interface {
	ScrollTo(ScrollRequest)
}

// SyncController keeps the transcript highlight in step with the play-head.
type SyncController struct {
	segments []models.TranscriptSegment
	sink     ScrollSink
	session  *Session

	mu     sync.Mutex
	active string
}

func newSyncController(segments []models.TranscriptSegment, sink ScrollSink, session *Session) *SyncController {
	return &SyncController{
		segments: segments,
		sink:     sink,
		session:  session,
	}
}

// Update runs the locator against the new play-head position. Only a
// *changed* active segment emits a scroll request, so repeated updates
// inside one segment never thrash the view. When no segment contains t
// (a timing gap between segments) the previous highlight is kept rather
// than cleared, to avoid flicker.
func (c *SyncController) Update(t float64) {
	seg, ok := Locate(c.segments, t)
	if !ok {
		return
	}

	c.mu.Lock()
	if seg.SegmentID == c.active {
		c.mu.Unlock()
		return
	}
	c.active = seg.SegmentID
	c.mu.Unlock()

	if c.sink != nil {
		c.sink.ScrollTo(ScrollRequest{
			SegmentID: seg.SegmentID,
			Behavior:  "smooth",
			Block:     "center",
		})
	}
}

// Click selects a segment directly: highlight it and jump the play-head to
// its start time. Bypasses the locator entirely.
func (c *SyncController) Click(segmentID string) {
	for i := range c.segments {
		if c.segments[i].SegmentID == segmentID {
			c.mu.Lock()
			c.active = segmentID
			c.mu.Unlock()
			if c.session != nil {
				c.session.setTime(c.segments[i].StartTime)
			}
			return
		}
	}
}

// Active returns the currently highlighted segment id, empty before the
// first match.
func (c *SyncController) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
