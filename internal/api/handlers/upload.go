package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ctmes/ProfTwo/internal/api/middleware"
	"github.com/ctmes/ProfTwo/internal/storage"
)

// Accepted upload extensions per form field. Anything else is dropped
// without an error: the picker mirrors drag-and-drop, where a stray file
// in the selection should not fail the whole drop.
var acceptedExts = map[string]map[string]bool{
	"slides":     {".pdf": true, ".ppt": true, ".pptx": true},
	"transcript": {".txt": true},
}

// UploadHandler stages lecture source files into the uploads bucket.
type UploadHandler struct {
	storage *storage.Client
	tempDir string
}

func NewUploadHandler(st *storage.Client, tempDir string) *UploadHandler {
	return &UploadHandler{storage: st, tempDir: tempDir}
}

// Upload accepts a multipart form with "slides" and "transcript" files.
// Either may be missing; files with unexpected extensions are silently
// skipped and reported as not accepted.
func (h *UploadHandler) Upload(c *gin.Context) {
	owner := middleware.UserID(c)
	batch := uuid.NewString()

	resp := gin.H{}
	accepted := 0

	for _, field := range []string{"slides", "transcript"} {
		fileHeader, err := c.FormFile(field)
		if err != nil {
			resp[field] = nil
			continue
		}

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !acceptedExts[field][ext] {
			slog.Warn("Skipping upload with unexpected extension",
				"field", field, "filename", fileHeader.Filename)
			resp[field] = gin.H{"filename": fileHeader.Filename, "accepted": false}
			continue
		}

		key := fmt.Sprintf("staging/%s/%s/%s%s", owner, batch, field, ext)
		if err := h.stage(fileHeader, key); err != nil {
			slog.Error("Upload staging failed", "field", field, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage upload failed"})
			return
		}

		accepted++
		resp[field] = gin.H{
			"filename": fileHeader.Filename,
			"accepted": true,
			"key":      key,
		}
	}

	if accepted == 0 {
		// Nothing usable in the drop. Still a 200: rejection is silent.
		c.JSON(http.StatusOK, resp)
		return
	}

	resp["batch"] = batch
	c.JSON(http.StatusCreated, resp)
}

// stage spools the part through a temp file so the storage provider gets a
// seekable body.
func (h *UploadHandler) stage(fileHeader *multipart.FileHeader, key string) error {
	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	tempFile, err := os.CreateTemp(h.tempDir, "proftwo-upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tempFile.Name())
	defer tempFile.Close()

	if _, err := io.Copy(tempFile, src); err != nil {
		return err
	}
	if _, err := tempFile.Seek(0, 0); err != nil {
		return err
	}

	contentType := fileHeader.Header.Get("Content-Type")
	return h.storage.PutUpload(key, tempFile, contentType)
}
