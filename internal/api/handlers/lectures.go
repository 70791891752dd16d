package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ctmes/ProfTwo/internal/api/middleware"
	"github.com/ctmes/ProfTwo/internal/events"
	"github.com/ctmes/ProfTwo/internal/library"
	"github.com/ctmes/ProfTwo/internal/storage"
)

// LectureHandler serves the lecture library and its stored assets.
type LectureHandler struct {
	library *library.Store
	storage *storage.Client
	bus     *events.Bus
}

func NewLectureHandler(lib *library.Store, st *storage.Client, bus *events.Bus) *LectureHandler {
	return &LectureHandler{library: lib, storage: st, bus: bus}
}

// GetLectures returns the caller's library, newest first.
func (h *LectureHandler) GetLectures(c *gin.Context) {
	lectures, err := h.library.List(middleware.UserID(c))
	if err != nil {
		slog.Error("Failed to list lectures", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": lectures,
		"meta": gin.H{"total": len(lectures)},
	})
}

// GetLecture returns one lecture with slides and transcript.
func (h *LectureHandler) GetLecture(c *gin.Context) {
	lec, err := h.library.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lecture not found"})
		return
	}

	// Other users' lectures 404 rather than 403: their existence is private.
	if !h.library.Owns(lec, middleware.UserID(c)) && middleware.UserRole(c) != "admin" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lecture not found"})
		return
	}

	c.JSON(http.StatusOK, lec)
}

// DeleteLecture removes a lecture, its DB rows, and its stored assets.
func (h *LectureHandler) DeleteLecture(c *gin.Context) {
	id := c.Param("id")

	lec, err := h.library.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lecture not found"})
		return
	}
	if !h.library.Owns(lec, middleware.UserID(c)) && middleware.UserRole(c) != "admin" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lecture not found"})
		return
	}

	if err := h.library.Remove(id); err != nil {
		slog.Error("Failed to delete lecture", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete lecture"})
		return
	}

	// Asset cleanup is best-effort: an orphaned deck is a storage sweep
	// problem, not a reason to fail the delete.
	keys, err := h.storage.ListAssets("lectures/" + id + "/")
	if err == nil {
		for _, key := range keys {
			if err := h.storage.DeleteAsset(key); err != nil {
				slog.Warn("Failed to delete lecture asset", "key", key, "error", err)
			}
		}
	}

	h.bus.Publish(events.Event{Type: events.TypeLectureDeleted, Payload: gin.H{"lecture_id": id}})
	c.JSON(http.StatusOK, gin.H{"message": "Lecture deleted"})
}

// StreamAudio streams the lecture's narration track.
func (h *LectureHandler) StreamAudio(c *gin.Context) {
	lec, err := h.library.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lecture not found"})
		return
	}
	if !h.library.Owns(lec, middleware.UserID(c)) && middleware.UserRole(c) != "admin" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lecture not found"})
		return
	}
	if lec.AudioKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lecture has no narration"})
		return
	}

	h.serveObject(c, lec.AudioKey, lec.Title)
}

// StreamAsset serves any stored asset (slide decks) under its full key.
func (h *LectureHandler) StreamAsset(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" || strings.Contains(key, "..") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asset key"})
		return
	}
	h.serveObject(c, key, key)
}

func (h *LectureHandler) serveObject(c *gin.Context, key, name string) {
	obj, err := h.storage.GetAsset(key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Asset missing from storage"})
		return
	}

	// CRITICAL: Always close the storage stream to prevent memory/connection leaks
	defer obj.Body.Close()
	if seeker, ok := obj.Body.(io.ReadSeeker); ok {
		http.ServeContent(c.Writer, c.Request, name, obj.LastModified, seeker)
		return
	}

	// Fallback for non-seekable streams
	extraHeaders := map[string]string{
		"Cache-Control": "public, max-age=86400",
		"Accept-Ranges": "none", // Explicitly tell the browser it can't seek
	}
	c.DataFromReader(http.StatusOK, obj.ContentLength, obj.ContentType, obj.Body, extraHeaders)
}
