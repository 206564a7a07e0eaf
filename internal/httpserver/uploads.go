package httpserver

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 10 << 20

var allowedUploadExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

func uploadHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Uploads == nil {
			c.JSON(http.StatusNotImplemented, gin.H{"error": "uploads disabled"})
			return
		}

		header, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
			return
		}
		if header.Size > maxUploadBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
			return
		}
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !allowedUploadExts[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type"})
			return
		}

		f, err := header.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		defer f.Close()

		url, err := deps.Uploads.Store(c.Request.Context(), header.Filename, f)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "url": url})
	}
}
