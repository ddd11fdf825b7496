package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/photo-gallery-api/internal/metrics"
	"github.com/photo-gallery-api/internal/models"
	"github.com/photo-gallery-api/internal/repository"
	"github.com/rs/zerolog"
)

// StatusFilterAll lists comments regardless of status
const StatusFilterAll = "all"

// moderationService is the concrete implementation of ModerationService
type moderationService struct {
	comments repository.CommentRepository
	metrics  *metrics.Metrics
	log      zerolog.Logger
	now      func() time.Time
}

// newModerationService creates a new ModerationService
func newModerationService(comments repository.CommentRepository, m *metrics.Metrics, log zerolog.Logger) *moderationService {
	return &moderationService{
		comments: comments,
		metrics:  m,
		log:      log.With().Str("service", "moderation").Logger(),
		now:      time.Now,
	}
}

// ListByStatus returns comments matching filter ("all" or a status), newest first
func (s *moderationService) ListByStatus(ctx context.Context, filter string) ([]*models.Comment, error) {
	query := models.CommentQuery{}

	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter != "" && filter != StatusFilterAll {
		status, err := models.ParseModerationStatus(filter)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, filter)
		}
		query.Status = &status
	}

	comments, err := s.comments.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}
	return comments, nil
}

// ListApproved returns the approved comments of one photo.
// Display callers treat any error as "no comments yet".
func (s *moderationService) ListApproved(ctx context.Context, photoID string) ([]*models.Comment, error) {
	status := models.StatusApproved
	comments, err := s.comments.List(ctx, models.CommentQuery{PhotoID: photoID, Status: &status})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch approved comments: %w", err)
	}
	return comments, nil
}

// Submit stores a visitor comment as pending. Blank names or texts are
// rejected before the store is touched.
func (s *moderationService) Submit(ctx context.Context, req *models.SubmitCommentRequest) (*models.Comment, error) {
	name := strings.TrimSpace(req.CommenterName)
	text := strings.TrimSpace(req.CommentText)
	photoID := strings.TrimSpace(req.PhotoID)

	switch {
	case name == "":
		return nil, fmt.Errorf("%w: commenter_name is required", ErrInvalidComment)
	case text == "":
		return nil, fmt.Errorf("%w: comment_text is required", ErrInvalidComment)
	case photoID == "":
		return nil, fmt.Errorf("%w: photo_id is required", ErrInvalidComment)
	}

	comment := &models.Comment{
		Title:            models.CommentTitle(name),
		CommenterName:    name,
		CommenterEmail:   strings.TrimSpace(req.CommenterEmail),
		CommentText:      text,
		PhotoID:          photoID,
		ModerationStatus: models.StatusPending,
		CommentDate:      today(s.now),
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.metrics.CommentSubmitted()
	s.log.Info().
		Str("comment_id", comment.ID).
		Str("photo_id", photoID).
		Msg("Comment submitted for moderation")

	return comment, nil
}

// SetStatus overwrites a comment's status; every transition is allowed
func (s *moderationService) SetStatus(ctx context.Context, commentID string, status models.ModerationStatus) (*models.Comment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	comment, err := s.comments.UpdateStatus(ctx, commentID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update comment status: %w", err)
	}

	s.metrics.StatusChanged(string(status))
	s.log.Info().
		Str("comment_id", commentID).
		Str("status", string(status)).
		Msg("Comment status updated")

	return comment, nil
}

// Stats counts comments per status for the admin dashboard
func (s *moderationService) Stats(ctx context.Context) (*models.CommentStats, error) {
	comments, err := s.comments.List(ctx, models.CommentQuery{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}

	stats := &models.CommentStats{Total: len(comments)}
	for _, c := range comments {
		switch c.ModerationStatus {
		case models.StatusPending:
			stats.Pending++
		case models.StatusApproved:
			stats.Approved++
		case models.StatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

// Delete removes a comment
func (s *moderationService) Delete(ctx context.Context, commentID string) error {
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	s.log.Info().Str("comment_id", commentID).Msg("Comment deleted")
	return nil
}
