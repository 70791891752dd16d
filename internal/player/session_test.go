package player

import (
	"testing"

	"github.com/ctmes/ProfTwo/internal/models"
)

func testLecture() *models.Lecture {
	return &models.Lecture{
		ID:    "lec1",
		Title: "Intro to ML",
		Slides: []models.Slide{
			{SlideID: "1", Position: 0},
			{SlideID: "2", Position: 1},
			{SlideID: "3", Position: 2},
		},
		Transcript: []models.TranscriptSegment{
			{SegmentID: "1", Text: "Welcome.", StartTime: 0, EndTime: 5},
			{SegmentID: "2", Text: "Today we cover ML.", StartTime: 5, EndTime: 10},
			{SegmentID: "3", Text: "Let's begin.", StartTime: 10, EndTime: 15},
		},
	}
}

func TestSlideNavigationClamps(t *testing.T) {
	s := NewSession(testLecture(), nil)

	// PrevSlide at index 0 is a no-op
	s.PrevSlide()
	if got := s.Snapshot().CurrentSlideIndex; got != 0 {
		t.Errorf("PrevSlide at start moved index to %d", got)
	}

	s.NextSlide()
	s.NextSlide()
	if got := s.Snapshot().CurrentSlideIndex; got != 2 {
		t.Fatalf("Expected index 2, got %d", got)
	}

	// NextSlide at the last index is a no-op
	s.NextSlide()
	if got := s.Snapshot().CurrentSlideIndex; got != 2 {
		t.Errorf("NextSlide at end moved index to %d", got)
	}
}

func TestSeekAndVolumeClamp(t *testing.T) {
	s := NewSession(testLecture(), nil)

	tests := []struct {
		name string
		seek float64
		want float64
	}{
		{"In Range", 7, 7},
		{"Below Zero", -5, 0},
		{"Past End", 99, 15}, // totalDuration = last endTime
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.Seek(tt.seek)
			if got := s.Snapshot().CurrentTime; got != tt.want {
				t.Errorf("Seek(%v) left currentTime %v, want %v", tt.seek, got, tt.want)
			}
		})
	}

	s.SetVolume(150)
	if got := s.Snapshot().Volume; got != 100 {
		t.Errorf("SetVolume(150) = %d, want 100", got)
	}
	s.SetVolume(-10)
	if got := s.Snapshot().Volume; got != 0 {
		t.Errorf("SetVolume(-10) = %d, want 0", got)
	}
}

func TestSetSpeedIgnoresUnknownMultipliers(t *testing.T) {
	s := NewSession(testLecture(), nil)

	s.SetSpeed(1.5)
	if got := s.Snapshot().Speed; got != 1.5 {
		t.Fatalf("SetSpeed(1.5) = %v", got)
	}

	// 3.0 is not one of the six fixed multipliers
	s.SetSpeed(3.0)
	if got := s.Snapshot().Speed; got != 1.5 {
		t.Errorf("SetSpeed(3.0) should be ignored, speed is now %v", got)
	}
}

func TestTogglePlayPauseAndAdvance(t *testing.T) {
	s := NewSession(testLecture(), nil)

	// Paused: Advance is a no-op
	s.Advance(2)
	if got := s.Snapshot().CurrentTime; got != 0 {
		t.Fatalf("Advance while paused moved the play-head to %v", got)
	}

	s.TogglePlayPause()
	if !s.Snapshot().IsPlaying {
		t.Fatal("Expected playing after toggle")
	}

	s.SetSpeed(2.0)
	s.Advance(3) // 3 wall seconds at 2x = 6 lecture seconds
	if got := s.Snapshot().CurrentTime; got != 6 {
		t.Errorf("Expected play-head at 6, got %v", got)
	}

	// Running off the end pauses at totalDuration
	s.Advance(100)
	snap := s.Snapshot()
	if snap.CurrentTime != 15 {
		t.Errorf("Expected clamp at 15, got %v", snap.CurrentTime)
	}
	if snap.IsPlaying {
		t.Error("Expected pause at end of lecture")
	}
}

func TestTotalDurationEmptyTranscript(t *testing.T) {
	lec := testLecture()
	lec.Transcript = nil
	s := NewSession(lec, nil)

	if got := s.TotalDuration(); got != 0 {
		t.Errorf("TotalDuration with no transcript = %v, want 0", got)
	}
}
