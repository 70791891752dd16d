package models

import (
	"time"

	"gorm.io/gorm"
)

// Lecture is a persisted, completed lecture: slides + timed transcript +
// narration audio. Immutable after the pipeline creates it, except deletion.
type Lecture struct {
	ID        string         `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // Hiding DeletedAt from the API

	// Ownership is an explicit column, NOT a prefix baked into the id.
	// (An owner id that prefixes another owner id must never leak records.)
	OwnerID string `gorm:"index" json:"ownerId"`

	Title        string  `gorm:"not null" json:"title"`
	Duration     float64 `json:"duration"` // seconds, endTime of the last segment
	SlideCount   int     `json:"slideCount"`
	ThumbnailURL string  `json:"thumbnailUrl"`

	AudioKey    string `json:"-"` // storage key of the narration file
	AudioURL    string `json:"audioUrl"`
	AudioFormat string `gorm:"default:'mp3'" json:"audioFormat"`

	// Enrichment from the analysis service. Empty when the call failed;
	// the pipeline never blocks completion on these.
	Summary   string `json:"summary,omitempty"`
	Topics    string `json:"topics,omitempty"` // Comma-separated: "ml,backprop"
	Sentiment string `json:"sentiment,omitempty"`

	Slides     []Slide             `gorm:"constraint:OnDelete:CASCADE" json:"slides"`
	Transcript []TranscriptSegment `gorm:"constraint:OnDelete:CASCADE" json:"transcript"`
}

// Slide is one page of the deck, ordered by Position.
type Slide struct {
	ID        uint   `gorm:"primarykey" json:"-"`
	LectureID string `gorm:"index" json:"-"`
	Position  int    `json:"-"`
	SlideID   string `json:"id"` // "1", "2", ... (view layer contract)
	URL       string `json:"url"`
}

// TranscriptSegment is a timestamped span of transcript text. Ordered by
// StartTime, non-overlapping in practice though not enforced.
type TranscriptSegment struct {
	ID        uint   `gorm:"primarykey" json:"-"`
	LectureID string `gorm:"index" json:"-"`
	Position  int    `json:"-"`

	SegmentID string  `json:"id"` // unique within a lecture
	Text      string  `json:"text"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}
