package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ctmes/ProfTwo/internal/api/middleware"
	"github.com/ctmes/ProfTwo/internal/pipeline"
	"github.com/ctmes/ProfTwo/internal/storage"
)

// ProcessHandler starts, inspects, and interrupts pipeline runs.
type ProcessHandler struct {
	proc    *pipeline.Processor
	storage *storage.Client
}

func NewProcessHandler(proc *pipeline.Processor, st *storage.Client) *ProcessHandler {
	return &ProcessHandler{proc: proc, storage: st}
}

// Start kicks off a run over previously staged uploads.
func (h *ProcessHandler) Start(c *gin.Context) {
	var req struct {
		Title          string `json:"title"`
		SlidesKey      string `json:"slides_key" binding:"required"`
		SlidesFilename string `json:"slides_filename"`
		TranscriptKey  string `json:"transcript_key" binding:"required"`
		SlideCount     int    `json:"slide_count"`
	}
	// A run needs both staged files; a deck without narration text (or the
	// reverse) has nothing to process.
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Staged slides and transcript are required"})
		return
	}

	raw, err := h.storage.ReadUploadText(req.TranscriptKey)
	if err != nil {
		slog.Error("Failed to read staged transcript", "key", req.TranscriptKey, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Staged transcript not found"})
		return
	}

	run, err := h.proc.Begin(pipeline.Input{
		OwnerID:        middleware.UserID(c),
		Title:          req.Title,
		SlidesFilename: req.SlidesFilename,
		SlidesKey:      req.SlidesKey,
		TranscriptKey:  req.TranscriptKey,
		RawTranscript:  raw,
		SlideCount:     req.SlideCount,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	go h.proc.Drive(run.ID)

	c.JSON(http.StatusAccepted, gin.H{"run_id": run.ID})
}

// Status returns the run's current stage breakdown.
func (h *ProcessHandler) Status(c *gin.Context) {
	snap, ok := h.proc.Snapshot(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Interrupt aborts a live run. Everything staged by the run is discarded.
func (h *ProcessHandler) Interrupt(c *gin.Context) {
	if !h.proc.Interrupt(c.Param("id")) {
		c.JSON(http.StatusConflict, gin.H{"error": "Run is not interruptible"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Run interrupted"})
}
