package player

import (
	"testing"
)

// recordingSink captures scroll requests for assertions.
type recordingSink struct {
	requests []ScrollRequest
}

func (r *recordingSink) ScrollTo(req ScrollRequest) {
	r.requests = append(r.requests, req)
}

func TestSyncEmitsOneScrollPerTransition(t *testing.T) {
	sink := &recordingSink{}
	s := NewSession(testLecture(), sink)

	// Many updates inside segment 1: exactly one scroll
	s.Seek(1)
	s.Seek(2)
	s.Seek(3)
	if len(sink.requests) != 1 {
		t.Fatalf("Expected 1 scroll request, got %d", len(sink.requests))
	}
	if sink.requests[0].SegmentID != "1" {
		t.Errorf("Scrolled to %q, want \"1\"", sink.requests[0].SegmentID)
	}
	if sink.requests[0].Behavior != "smooth" || sink.requests[0].Block != "center" {
		t.Errorf("Expected a smooth centered scroll, got %+v", sink.requests[0])
	}

	// Crossing into segment 2: one more
	s.Seek(7)
	if len(sink.requests) != 2 {
		t.Fatalf("Expected 2 scroll requests after transition, got %d", len(sink.requests))
	}
	if sink.requests[1].SegmentID != "2" {
		t.Errorf("Scrolled to %q, want \"2\"", sink.requests[1].SegmentID)
	}
}

func TestSyncKeepsHighlightAcrossGaps(t *testing.T) {
	lec := testLecture()
	// Introduce a gap between segments 1 and 2
	lec.Transcript[1].StartTime = 7

	sink := &recordingSink{}
	s := NewSession(lec, sink)

	s.Seek(3) // inside segment 1
	if got := s.Snapshot().ActiveSegmentID; got != "1" {
		t.Fatalf("Active = %q, want \"1\"", got)
	}

	s.Seek(6) // inside the gap: highlight must not clear
	if got := s.Snapshot().ActiveSegmentID; got != "1" {
		t.Errorf("Gap cleared the highlight: active = %q", got)
	}
	if len(sink.requests) != 1 {
		t.Errorf("Gap triggered a scroll: %d requests", len(sink.requests))
	}
}

func TestClickJumpsPlayHead(t *testing.T) {
	sink := &recordingSink{}
	s := NewSession(testLecture(), sink)

	s.ClickSegment("3")

	snap := s.Snapshot()
	if snap.ActiveSegmentID != "3" {
		t.Errorf("Active = %q, want \"3\"", snap.ActiveSegmentID)
	}
	if snap.CurrentTime != 10 {
		t.Errorf("Play-head = %v, want 10 (segment 3 startTime)", snap.CurrentTime)
	}
	// A click highlights directly; it does not go through the scroll sink
	if len(sink.requests) != 0 {
		t.Errorf("Click emitted %d scroll requests", len(sink.requests))
	}
}

func TestClickUnknownSegmentIsNoOp(t *testing.T) {
	s := NewSession(testLecture(), nil)
	s.Seek(1)

	s.ClickSegment("nope")
	snap := s.Snapshot()
	if snap.ActiveSegmentID != "1" {
		t.Errorf("Unknown click changed active to %q", snap.ActiveSegmentID)
	}
	if snap.CurrentTime != 1 {
		t.Errorf("Unknown click moved the play-head to %v", snap.CurrentTime)
	}
}
