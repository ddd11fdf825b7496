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

// CommentHandler handles visitor and admin comment endpoints
type CommentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// SubmitComment handles POST /v1/comments
func (h *CommentHandler) SubmitComment(c *gin.Context) {
	var req models.SubmitCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.services.Moderation.Submit(c.Request.Context(), &req)
	switch {
	case errors.Is(err, service.ErrInvalidComment):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	case err != nil:
		h.log.Error().Err(err).Str("photo_id", req.PhotoID).Msg("Failed to submit comment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit comment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment submitted and awaiting moderation",
		"comment": comment,
	})
}

// ListComments handles GET /v1/admin/comments?status=
func (h *CommentHandler) ListComments(c *gin.Context) {
	filter := c.DefaultQuery("status", service.StatusFilterAll)

	comments, err := h.services.Moderation.ListByStatus(c.Request.Context(), filter)
	if errors.Is(err, service.ErrInvalidStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of: all, pending, approved, rejected"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("status", filter).Msg("Failed to list comments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

// GetStats handles GET /v1/admin/comments/stats
func (h *CommentHandler) GetStats(c *gin.Context) {
	stats, err := h.services.Moderation.Stats(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute comment stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch comment stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// UpdateStatus handles PATCH /v1/admin/comments/:id
func (h *CommentHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	status, err := models.ParseModerationStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.services.Moderation.SetStatus(c.Request.Context(), id, status)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("comment_id", id).Msg("Failed to update comment status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update comment"})
		return
	}

	c.JSON(http.StatusOK, comment)
}

// DeleteComment handles DELETE /v1/admin/comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id := c.Param("id")

	err := h.services.Moderation.Delete(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("comment_id", id).Msg("Failed to delete comment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete comment"})
		return
	}
	c.Status(http.StatusNoContent)
}
