package synthesis

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRenderStampVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narration.mp3")

	if err := Render(path, 30); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	// 30s at ~26ms per 417-byte frame
	if float64(stat.Size()) < 30/frameSeconds*frameSize {
		t.Errorf("Narration too short: %d bytes", stat.Size())
	}

	if err := Stamp(path, "Intro to ML", "ProfTwo AI", "Lectures"); err != nil {
		t.Fatalf("Stamp failed: %v", err)
	}

	info, err := Verify(path)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if info.Title != "Intro to ML" {
		t.Errorf("Title = %q", info.Title)
	}
	if info.Lecturer != "ProfTwo AI" {
		t.Errorf("Lecturer = %q", info.Lecturer)
	}
	if info.Album != "Lectures" {
		t.Errorf("Album = %q", info.Album)
	}
}

func TestRenderRejectsZeroDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mp3")
	if err := Render(path, 0); err == nil {
		t.Error("Expected error for zero duration")
	}
}
