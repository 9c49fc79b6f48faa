package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/oriontv/orion-updater/internal/pkg/api/releaseapi"
	"github.com/oriontv/orion-updater/internal/pkg/storage"
)

// BuildApp assembles the release server's gin engine.
func BuildApp(store *storage.FilesystemReleaseStorage) *gin.Engine {
	log.Debug("Building app")
	r := gin.Default()
	r = releaseapi.BuildReleaseAPI(r, store)
	r.GET("/api/v1/ping", ping)
	return r
}

func ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}
