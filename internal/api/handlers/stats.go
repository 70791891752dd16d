package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ctmes/ProfTwo/internal/models"
)

// StatsHandler handles stats-related requests independently of the main server
type StatsHandler struct {
	db *gorm.DB
}

func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db}
}

// GetStats returns aggregated service statistics for the dashboard.
func (h *StatsHandler) GetStats(c *gin.Context) {
	var totalLectures int64
	var totalUsers int64
	var totalSeconds float64
	var totalSegments int64

	h.db.Model(&models.Lecture{}).Count(&totalLectures)
	h.db.Model(&models.User{}).Count(&totalUsers)
	h.db.Model(&models.Lecture{}).Select("COALESCE(SUM(duration), 0)").Scan(&totalSeconds)
	h.db.Model(&models.TranscriptSegment{}).Count(&totalSegments)

	// Most recent additions across all users, title-only.
	type recentLecture struct {
		ID       string  `json:"id"`
		Title    string  `json:"title"`
		Duration float64 `json:"duration"`
	}
	var recent []recentLecture
	h.db.Model(&models.Lecture{}).
		Select("id, title, duration").
		Order("created_at DESC").
		Limit(5).
		Find(&recent)

	c.JSON(http.StatusOK, gin.H{
		"stats": gin.H{
			"total_lectures":         totalLectures,
			"total_users":            totalUsers,
			"total_content_seconds":  totalSeconds,
			"total_transcript_lines": totalSegments,
		},
		"recent_lectures": recent,
	})
}
