package library

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ctmes/ProfTwo/internal/models"
)

// Store owns the lecture collection. All reads and writes go through it;
// nothing else touches the lecture tables.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Append persists a completed lecture with its slides and transcript in one
// transaction. The record is immutable afterwards except for Remove.
func (s *Store) Append(lec *models.Lecture) error {
	if lec.ID == "" {
		return fmt.Errorf("lecture id is required")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(lec).Error
	})
}

// List returns the owner's lectures, newest first.
// Ownership is an equality match on owner_id. Rows imported from the old
// blob store carry no owner column; for those only, the historical
// "<owner>_<timestamp>" id prefix is honored.
func (s *Store) List(ownerID string) ([]models.Lecture, error) {
	var rows []models.Lecture
	result := s.db.
		Preload("Slides", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Transcript", func(db *gorm.DB) *gorm.DB { return db.Order("start_time asc") }).
		Where("owner_id = ? OR owner_id = ''", ownerID).
		Order("created_at desc").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	lectures := make([]models.Lecture, 0, len(rows))
	for _, lec := range rows {
		if lec.OwnerID == ownerID || (lec.OwnerID == "" && strings.HasPrefix(lec.ID, ownerID+"_")) {
			lectures = append(lectures, lec)
		}
	}
	return lectures, nil
}

// Get fetches one lecture with its associations.
func (s *Store) Get(id string) (*models.Lecture, error) {
	var lec models.Lecture
	err := s.db.
		Preload("Slides", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Transcript", func(db *gorm.DB) *gorm.DB { return db.Order("start_time asc") }).
		First(&lec, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lec, nil
}

// Owns reports whether the lecture belongs to ownerID, applying the same
// legacy-prefix fallback as List.
func (s *Store) Owns(lec *models.Lecture, ownerID string) bool {
	if lec.OwnerID != "" {
		return lec.OwnerID == ownerID
	}
	return strings.HasPrefix(lec.ID, ownerID+"_")
}

// Remove deletes a lecture and its associations cleanly.
func (s *Store) Remove(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lecture_id = ?", id).Delete(&models.TranscriptSegment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lecture_id = ?", id).Delete(&models.Slide{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Lecture{}, "id = ?", id).Error
	})
}

// PurgeOwner deletes every lecture the owner has. Logout calls this: the
// product ties a user's library lifetime to their session on purpose.
func (s *Store) PurgeOwner(ownerID string) error {
	lectures, err := s.List(ownerID)
	if err != nil {
		return err
	}
	for _, lec := range lectures {
		if err := s.Remove(lec.ID); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the total number of lectures (for the stats endpoint).
func (s *Store) Count() int64 {
	var n int64
	s.db.Model(&models.Lecture{}).Count(&n)
	return n
}
