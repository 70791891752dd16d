package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/ctmes/ProfTwo/internal/api/middleware"
	"github.com/ctmes/ProfTwo/internal/events"
	"github.com/ctmes/ProfTwo/internal/library"
	"github.com/ctmes/ProfTwo/internal/player"
)

// busSink forwards transcript scroll requests onto the event bus, where the
// WebSocket feed picks them up for the client's auto-scroll.
type busSink struct {
	bus       *events.Bus
	lectureID string
}

func (s *busSink) ScrollTo(req player.ScrollRequest) {
	s.bus.Publish(events.Event{
		Type:    events.TypePlayerScroll,
		Payload: gin.H{"lecture_id": s.lectureID, "scroll": req},
	})
}

// PlaybackHandler keeps one transient player session per user+lecture pair.
// Sessions live in memory only; reopening a lecture starts from zero.
type PlaybackHandler struct {
	library *library.Store
	bus     *events.Bus

	mu       sync.Mutex
	sessions map[string]*player.Session
}

func NewPlaybackHandler(lib *library.Store, bus *events.Bus) *PlaybackHandler {
	return &PlaybackHandler{
		library:  lib,
		bus:      bus,
		sessions: make(map[string]*player.Session),
	}
}

// Open creates (or resets) the caller's session for a lecture.
func (h *PlaybackHandler) Open(c *gin.Context) {
	lec, err := h.library.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lecture not found"})
		return
	}
	if !h.library.Owns(lec, middleware.UserID(c)) && middleware.UserRole(c) != "admin" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lecture not found"})
		return
	}

	sess := player.NewSession(lec, &busSink{bus: h.bus, lectureID: lec.ID})

	h.mu.Lock()
	h.sessions[h.key(c)] = sess
	h.mu.Unlock()

	c.JSON(http.StatusCreated, sess.Snapshot())
}

// State returns the session's current snapshot.
func (h *PlaybackHandler) State(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No open session for this lecture"})
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// Command applies one control action to the session.
func (h *PlaybackHandler) Command(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No open session for this lecture"})
		return
	}

	var req struct {
		Action    string  `json:"action" binding:"required"`
		Time      float64 `json:"time"`
		Delta     float64 `json:"delta"`
		Volume    int     `json:"volume"`
		Speed     float64 `json:"speed"`
		SegmentID string  `json:"segment_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An action is required"})
		return
	}

	switch req.Action {
	case "toggle":
		sess.TogglePlayPause()
	case "seek":
		sess.Seek(req.Time)
	case "advance":
		sess.Advance(req.Delta)
	case "volume":
		sess.SetVolume(req.Volume)
	case "speed":
		sess.SetSpeed(req.Speed)
	case "next_slide":
		sess.NextSlide()
	case "prev_slide":
		sess.PrevSlide()
	case "click_segment":
		sess.ClickSegment(req.SegmentID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown action"})
		return
	}

	c.JSON(http.StatusOK, sess.Snapshot())
}

// Close drops the session.
func (h *PlaybackHandler) Close(c *gin.Context) {
	h.mu.Lock()
	delete(h.sessions, h.key(c))
	h.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "Session closed"})
}

func (h *PlaybackHandler) key(c *gin.Context) string {
	return middleware.UserID(c) + "/" + c.Param("id")
}

func (h *PlaybackHandler) session(c *gin.Context) *player.Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[h.key(c)]
}
