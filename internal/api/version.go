package api

import (
	"net/http"

	"github.com/akikan18/shibari-karaoke/internal/version"

	"github.com/gin-gonic/gin"
)

// GetVersion reports build metadata injected through ldflags.
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": version.Version,
		"commit":  version.Commit,
		"date":    version.Date,
		"dirty":   version.Dirty,
	})
}
