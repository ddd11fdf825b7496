package service

import (
	"context"
	"errors"
	"time"

	"github.com/photo-gallery-api/internal/config"
	"github.com/photo-gallery-api/internal/metrics"
	"github.com/photo-gallery-api/internal/models"
	"github.com/photo-gallery-api/internal/repository"
	"github.com/photo-gallery-api/internal/validation"
	"github.com/rs/zerolog"
)

var (
	// ErrInvalidComment is returned when a submission lacks a name, text or photo
	ErrInvalidComment = errors.New("invalid comment")
	// ErrInvalidStatus is returned for an unknown moderation status or filter
	ErrInvalidStatus = errors.New("invalid moderation status")
)

// IngestService turns inbound email attachments into photos
type IngestService interface {
	// Process never fails as a whole; every problem is reported as a result entry
	Process(ctx context.Context, fromAddress, subject string, attachments []models.EmailAttachment) []models.PhotoUploadResult
}

// ModerationService defines the comment workflow
type ModerationService interface {
	ListByStatus(ctx context.Context, filter string) ([]*models.Comment, error)
	ListApproved(ctx context.Context, photoID string) ([]*models.Comment, error)
	Submit(ctx context.Context, req *models.SubmitCommentRequest) (*models.Comment, error)
	SetStatus(ctx context.Context, commentID string, status models.ModerationStatus) (*models.Comment, error)
	Stats(ctx context.Context) (*models.CommentStats, error)
	Delete(ctx context.Context, commentID string) error
}

// GalleryService defines photo reads and removal
type GalleryService interface {
	ListPhotos(ctx context.Context) ([]*models.Photo, error)
	GetPhotoBySlug(ctx context.Context, slug string) (*models.Photo, error)
	FeaturedPhoto(ctx context.Context) (*models.Photo, error)
	DeletePhoto(ctx context.Context, photoID string) error
}

// Services holds all service interfaces
type Services struct {
	Ingest     IngestService
	Moderation ModerationService
	Gallery    GalleryService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) *Services {
	validator := validation.NewValidator(cfg.Ingest.AllowedSenders)

	return &Services{
		Ingest:     newIngestService(repos, validator, cfg.Ingest, m, log),
		Moderation: newModerationService(repos.Comment, m, log),
		Gallery:    newGalleryService(repos.Photo, log),
	}
}

// today truncates now to a calendar day
func today(now func() time.Time) models.Date {
	return models.NewDate(now())
}
