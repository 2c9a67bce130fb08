package uploads

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OpenGRC/console/internal/auth"
)

const maxUploadBytes = 32 << 20

type HTTPHandler struct {
	Service *EvidenceService
}

func NewHTTPHandler(service *EvidenceService) *HTTPHandler {
	return &HTTPHandler{Service: service}
}

// Register mounts the evidence upload routes on the given group.
func (h *HTTPHandler) Register(api *gin.RouterGroup) {
	api.POST("/uploads", h.Upload)
	api.GET("/uploads/*key", h.Download)
}

// Upload handles POST /api/v1/uploads (multipart, field "file").
func (h *HTTPHandler) Upload(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	reader, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer reader.Close()

	attachment, err := h.Service.Upload(c.Request.Context(), principal.TenantID, file.Filename, reader, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "evidence upload failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	c.JSON(http.StatusCreated, attachment)
}

// Download handles GET /api/v1/uploads/*key.
func (h *HTTPHandler) Download(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		return
	}

	key := c.Param("key")
	if len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	reader, contentType, err := h.Service.Download(c.Request.Context(), principal.TenantID, key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	defer reader.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	io.Copy(c.Writer, reader)
}
