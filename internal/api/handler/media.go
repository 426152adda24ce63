package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxImageBytes = 10 << 20

// UploadImage stores a multipart image through the blob uploader and
// returns its public URL.
func (h *Handler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_file"})
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_too_large"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	url, err := h.Uploader.Upload(c.Request.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Predict classifies an uploaded image and suggests a price range.
func (h *Handler) Predict(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	prediction, err := h.Classifier.Classify(data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "classification_failed"})
		return
	}
	c.JSON(http.StatusOK, prediction)
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
