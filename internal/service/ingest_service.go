package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/photo-gallery-api/internal/config"
	"github.com/photo-gallery-api/internal/metrics"
	"github.com/photo-gallery-api/internal/models"
	"github.com/photo-gallery-api/internal/repository"
	"github.com/photo-gallery-api/internal/validation"
	"github.com/photo-gallery-api/pkg/slug"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// fallbackSlug is used when a filename has no slug-able characters
const fallbackSlug = "photo"

// ingestService is the concrete implementation of IngestService
type ingestService struct {
	repos       *repository.Repositories
	validator   *validation.Validator
	folder      string
	concurrency int
	metrics     *metrics.Metrics
	log         zerolog.Logger
	now         func() time.Time
}

// newIngestService creates a new IngestService
func newIngestService(repos *repository.Repositories, validator *validation.Validator, cfg config.IngestConfig, m *metrics.Metrics, log zerolog.Logger) *ingestService {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	folder := cfg.MediaFolder
	if folder == "" {
		folder = "email-uploads"
	}

	return &ingestService{
		repos:       repos,
		validator:   validator,
		folder:      folder,
		concurrency: concurrency,
		metrics:     m,
		log:         log.With().Str("service", "ingest").Logger(),
		now:         time.Now,
	}
}

// Process uploads every acceptable image attachment and creates one photo per image
func (s *ingestService) Process(ctx context.Context, fromAddress, subject string, attachments []models.EmailAttachment) []models.PhotoUploadResult {
	start := time.Now()
	defer func() { s.metrics.IngestDuration(time.Since(start)) }()

	if !s.validator.IsAuthorizedSender(fromAddress) {
		s.log.Warn().Str("from", fromAddress).Msg("Email from unauthorized address")
		s.metrics.IngestOutcome(metrics.OutcomeUnauthorized)
		return []models.PhotoUploadResult{{
			Success: false,
			Error:   fmt.Sprintf("Unauthorized email address: %s", fromAddress),
		}}
	}

	images := validation.FilterImages(attachments)
	if len(images) == 0 {
		s.log.Info().
			Str("from", fromAddress).
			Int("attachments", len(attachments)).
			Msg("No valid image attachments found")
		s.metrics.IngestOutcome(metrics.OutcomeNoImages)
		return []models.PhotoUploadResult{{
			Success: false,
			Error:   "No valid image attachments found",
		}}
	}

	// A started batch runs to completion even if the caller goes away
	ctx = context.WithoutCancel(ctx)
	batch := s.now().UnixMilli()

	// Each goroutine writes only its own slot
	results := make([]models.PhotoUploadResult, len(images))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range images {
		g.Go(func() error {
			results[i] = s.processAttachment(ctx, fromAddress, subject, images[i], batch, i)
			return nil
		})
	}
	_ = g.Wait()

	summary := models.Summarize(results)
	s.log.Info().
		Str("from", fromAddress).
		Int("total", summary.Total).
		Int("successful", summary.Success).
		Int("failed", summary.Errors).
		Dur("duration", time.Since(start)).
		Msg("Email processing completed")

	return results
}

// processAttachment handles one image; failures become a result, never a panic
func (s *ingestService) processAttachment(ctx context.Context, fromAddress, subject string, att models.EmailAttachment, batch int64, index int) (result models.PhotoUploadResult) {
	log := s.log.With().Str("file", att.Filename).Int("index", index).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Panic while processing attachment")
			result = failure(att.Filename, fmt.Errorf("unexpected error: %v", r))
			s.metrics.IngestOutcome(metrics.OutcomeFailed)
		}
	}()

	photo, err := s.createPhoto(ctx, fromAddress, subject, att, batch, index)
	if err != nil {
		log.Error().Err(err).Msg("Error processing attachment")
		s.metrics.IngestOutcome(metrics.OutcomeFailed)
		return failure(att.Filename, err)
	}

	log.Info().Str("photo_id", photo.ID).Str("slug", photo.Slug).Msg("Successfully created photo")
	s.metrics.IngestOutcome(metrics.OutcomeCreated)
	return models.PhotoUploadResult{
		Success:  true,
		PhotoID:  photo.ID,
		Slug:     photo.Slug,
		Filename: att.Filename,
	}
}

func (s *ingestService) createPhoto(ctx context.Context, fromAddress, subject string, att models.EmailAttachment, batch int64, index int) (*models.Photo, error) {
	image, err := s.repos.Media.Upload(ctx, models.MediaUpload{
		Filename:    att.Filename,
		ContentType: att.ContentType,
		Folder:      s.folder,
		Content:     att.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image to media library: %w", err)
	}

	photoSlug, err := s.uniqueSlug(ctx, att.Filename, batch, index)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}

	caption := strings.TrimSpace(subject)
	if caption == "" {
		caption = fmt.Sprintf("Photo uploaded via email: %s", att.Filename)
	}

	photo := &models.Photo{
		Title:       slug.Title(att.Filename, subject),
		Slug:        photoSlug,
		Caption:     caption,
		Image:       *image,
		UploadDate:  today(s.now),
		Featured:    false,
		EmailSource: fromAddress,
	}

	err = s.repos.Photo.Create(ctx, photo)
	if errors.Is(err, repository.ErrSlugTaken) {
		// lost a race for the slug; one retry with a random suffix
		photo.Slug = withRandomSuffix(photoSlug)
		err = s.repos.Photo.Create(ctx, photo)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create photo: %w", err)
	}
	return photo, nil
}

// uniqueSlug appends the batch timestamp and the attachment's position, then
// falls back to a random suffix if the store already holds that slug
func (s *ingestService) uniqueSlug(ctx context.Context, filename string, batch int64, index int) (string, error) {
	base := slug.FromFilename(filename)
	if base == "" {
		base = fallbackSlug
	}
	candidate := fmt.Sprintf("%s-%d-%d", base, batch, index+1)

	exists, err := s.repos.Photo.SlugExists(ctx, candidate)
	if err != nil {
		return "", err
	}
	if exists {
		return withRandomSuffix(candidate), nil
	}
	return candidate, nil
}

func withRandomSuffix(s string) string {
	return s + "-" + uuid.New().String()[:8]
}

func failure(filename string, err error) models.PhotoUploadResult {
	return models.PhotoUploadResult{
		Success:  false,
		Filename: filename,
		Error:    fmt.Sprintf("Failed to process %s: %s", filename, err.Error()),
	}
}
