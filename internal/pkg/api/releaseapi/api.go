// Package releaseapi serves the version manifest and artifact downloads
// consumed by the update client.
package releaseapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/oriontv/orion-updater/internal/pkg/api/apicommon"
	"github.com/oriontv/orion-updater/internal/pkg/storage"
)

// BuildReleaseAPI registers the version and artifact endpoints on r.
func BuildReleaseAPI(r *gin.Engine, store *storage.FilesystemReleaseStorage) *gin.Engine {
	log.Debug("Building release API")
	h := &handler{store: store}
	v1 := r.Group(apicommon.ApiBasePathV1)
	v1.GET(apicommon.VersionApiPath, h.readVersionManifest)
	v1.GET(apicommon.ArtifactsApiPath+"/:name", h.readArtifact)
	return r
}

type handler struct {
	store *storage.FilesystemReleaseStorage
}

func (h *handler) readVersionManifest(c *gin.Context) {
	release, err := h.store.Latest()
	if err != nil {
		if errors.Is(err, storage.ErrNoReleases) {
			respondWithError(c, http.StatusNotFound, "no releases published", "")
			return
		}
		log.WithError(err).Error("failed to resolve latest release")
		respondWithError(c, http.StatusInternalServerError, "internal", "")
		return
	}
	d, err := h.store.Digest(release)
	if err != nil {
		log.WithError(err).Error("failed to compute release digest")
		respondWithError(c, http.StatusInternalServerError, "internal", "")
		return
	}
	c.JSON(http.StatusOK, apicommon.VersionManifest{
		Version: release.Version,
		Sha256:  d.Encoded(),
	})
}

func (h *handler) readArtifact(c *gin.Context) {
	name := c.Param("name")
	p, err := h.store.Resolve(name)
	if err != nil {
		if errors.Is(err, storage.ErrUnknownArtifact) {
			respondWithError(c, http.StatusNotFound, "unknown artifact", name)
			return
		}
		log.WithError(err).Errorf("failed to resolve artifact %q", name)
		respondWithError(c, http.StatusInternalServerError, "internal", "")
		return
	}
	c.File(p)
}

func respondWithError(c *gin.Context, code int, message, errorContext string) {
	c.JSON(code, apicommon.APIError{InnerError: apicommon.APIErrorInner{
		Code:         code,
		Message:      message,
		ErrorContext: errorContext,
	}})
}
