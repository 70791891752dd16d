package player

import (
	"sync"

	"github.com/ctmes/ProfTwo/internal/models"
)

// Speeds is the fixed set of playback rate multipliers the player accepts.
var Speeds = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0}

// State is an observable snapshot of a playback session. Transient: never
// persisted, dies with the session.
type State struct {
	IsPlaying         bool    `json:"isPlaying"`
	CurrentTime       float64 `json:"currentTime"`
	CurrentSlideIndex int     `json:"currentSlideIndex"`
	Volume            int     `json:"volume"`
	Speed             float64 `json:"speed"`
	ActiveSegmentID   string  `json:"activeSegmentId"`
	TotalDuration     float64 `json:"totalDuration"`
}

// Session is the playback control model for one lecture. It borrows a
// read-only view of the lecture's slides and transcript for its lifetime.
//
// All mutators are synchronous and clamp rather than error:
// currentSlideIndex stays within [0, slideCount-1] and currentTime within
// [0, totalDuration] at all times.
type Session struct {
	mu sync.Mutex

	lecture *models.Lecture

	isPlaying  bool
	current    float64
	slideIndex int
	volume     int
	speed      float64

	sync *SyncController
}

func NewSession(lec *models.Lecture, sink ScrollSink) *Session {
	s := &Session{
		lecture: lec,
		volume:  80,
		speed:   1.0,
	}
	s.sync = newSyncController(lec.Transcript, sink, s)
	return s
}

// TotalDuration is the endTime of the last transcript segment, or 0.
func (s *Session) TotalDuration() float64 {
	n := len(s.lecture.Transcript)
	if n == 0 {
		return 0
	}
	return s.lecture.Transcript[n-1].EndTime
}

func (s *Session) TogglePlayPause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isPlaying = !s.isPlaying
}

// Seek moves the play-head, clamped into [0, totalDuration], and re-syncs
// the transcript highlight.
func (s *Session) Seek(t float64) {
	s.mu.Lock()
	s.current = s.clamp(t)
	cur := s.current
	s.mu.Unlock()

	s.sync.Update(cur)
}

// Advance moves the play-head forward by dt wall seconds scaled by the
// playback speed. No-op while paused; playback pauses at the end.
func (s *Session) Advance(dt float64) {
	s.mu.Lock()
	if !s.isPlaying {
		s.mu.Unlock()
		return
	}
	s.current = s.clamp(s.current + dt*s.speed)
	if s.current >= s.TotalDuration() {
		s.isPlaying = false
	}
	cur := s.current
	s.mu.Unlock()

	s.sync.Update(cur)
}

func (s *Session) SetVolume(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	s.volume = v
}

// SetSpeed accepts only the fixed multipliers; anything else is ignored.
func (s *Session) SetSpeed(speed float64) {
	for _, allowed := range Speeds {
		if speed == allowed {
			s.mu.Lock()
			s.speed = speed
			s.mu.Unlock()
			return
		}
	}
}

// NextSlide advances the slide, a no-op at the last index.
func (s *Session) NextSlide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slideIndex < len(s.lecture.Slides)-1 {
		s.slideIndex++
	}
}

// PrevSlide goes back one slide, a no-op at index 0.
func (s *Session) PrevSlide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slideIndex > 0 {
		s.slideIndex--
	}
}

// ClickSegment handles a direct transcript click: jump the play-head to the
// segment's start and highlight it, independent of the locator.
func (s *Session) ClickSegment(segmentID string) {
	s.sync.Click(segmentID)
}

// Snapshot returns a copy of the current observable state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		IsPlaying:         s.isPlaying,
		CurrentTime:       s.current,
		CurrentSlideIndex: s.slideIndex,
		Volume:            s.volume,
		Speed:             s.speed,
		ActiveSegmentID:   s.sync.Active(),
		TotalDuration:     s.TotalDuration(),
	}
}

func (s *Session) clamp(t float64) float64 {
	if t < 0 {
		return 0
	}
	if max := s.TotalDuration(); t > max {
		return max
	}
	return t
}

// setTime is the sync controller's way into the play-head without
// re-triggering a locator pass (a click already knows its segment).
func (s *Session) setTime(t float64) {
	s.mu.Lock()
	s.current = s.clamp(t)
	s.mu.Unlock()
}
