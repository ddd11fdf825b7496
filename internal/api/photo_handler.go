package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/photo-gallery-api/internal/models"
	"github.com/photo-gallery-api/internal/repository"
	"github.com/photo-gallery-api/internal/service"
	"github.com/rs/zerolog"
)

const (
	thumbnailWidth  = 800
	thumbnailHeight = 600
)

// photoResponse adds the CDN thumbnail to a photo
type photoResponse struct {
	*models.Photo
	ThumbnailURL string `json:"thumbnail_url"`
}

func newPhotoResponse(p *models.Photo) photoResponse {
	return photoResponse{Photo: p, ThumbnailURL: p.Image.Transform(thumbnailWidth, thumbnailHeight)}
}

// PhotoHandler handles photo endpoints
type PhotoHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewPhotoHandler creates a new PhotoHandler
func NewPhotoHandler(services *service.Services, log zerolog.Logger) *PhotoHandler {
	return &PhotoHandler{
		services: services,
		log:      log.With().Str("handler", "photo").Logger(),
	}
}

// ListPhotos handles GET /v1/photos
func (h *PhotoHandler) ListPhotos(c *gin.Context) {
	photos, err := h.services.Gallery.ListPhotos(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list photos")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch photos"})
		return
	}

	out := make([]photoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, newPhotoResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"photos": out, "count": len(out)})
}

// GetFeatured handles GET /v1/photos/featured
func (h *PhotoHandler) GetFeatured(c *gin.Context) {
	photo, err := h.services.Gallery.FeaturedPhoto(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch featured photo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch featured photo"})
		return
	}
	if photo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no photos yet"})
		return
	}
	c.JSON(http.StatusOK, newPhotoResponse(photo))
}

// GetPhoto handles GET /v1/photos/:slug with the photo's approved comments
func (h *PhotoHandler) GetPhoto(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")

	photo, err := h.services.Gallery.GetPhotoBySlug(ctx, slug)
	if err != nil {
		h.log.Error().Err(err).Str("slug", slug).Msg("Failed to fetch photo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch photo"})
		return
	}
	if photo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}

	// A comment outage must not take the photo page down
	comments, err := h.services.Moderation.ListApproved(ctx, photo.ID)
	if err != nil {
		h.log.Warn().Err(err).Str("photo_id", photo.ID).Msg("Failed to fetch approved comments")
		comments = nil
	}
	if comments == nil {
		comments = []*models.Comment{}
	}

	c.JSON(http.StatusOK, gin.H{
		"photo":    newPhotoResponse(photo),
		"comments": comments,
	})
}

// DeletePhoto handles DELETE /v1/admin/photos/:id
func (h *PhotoHandler) DeletePhoto(c *gin.Context) {
	id := c.Param("id")

	err := h.services.Gallery.DeletePhoto(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("photo_id", id).Msg("Failed to delete photo")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete photo"})
		return
	}
	c.Status(http.StatusNoContent)
}
