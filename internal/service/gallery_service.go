package service

import (
	"context"
	"fmt"

	"github.com/photo-gallery-api/internal/models"
	"github.com/photo-gallery-api/internal/repository"
	"github.com/rs/zerolog"
)

// galleryService is the concrete implementation of GalleryService
type galleryService struct {
	photos repository.PhotoRepository
	log    zerolog.Logger
}

// newGalleryService creates a new GalleryService
func newGalleryService(photos repository.PhotoRepository, log zerolog.Logger) *galleryService {
	return &galleryService{
		photos: photos,
		log:    log.With().Str("service", "gallery").Logger(),
	}
}

// ListPhotos returns the most recent photos
func (s *galleryService) ListPhotos(ctx context.Context) ([]*models.Photo, error) {
	photos, err := s.photos.List(ctx, models.PhotoQuery{Limit: models.DefaultPhotoLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photos: %w", err)
	}
	return photos, nil
}

// GetPhotoBySlug returns nil, nil when the slug is unknown
func (s *galleryService) GetPhotoBySlug(ctx context.Context, slug string) (*models.Photo, error) {
	photo, err := s.photos.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photo: %w", err)
	}
	return photo, nil
}

// FeaturedPhoto prefers the newest featured photo, then the newest photo
func (s *galleryService) FeaturedPhoto(ctx context.Context) (*models.Photo, error) {
	featured, err := s.photos.List(ctx, models.PhotoQuery{FeaturedOnly: true, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch featured photo: %w", err)
	}
	if len(featured) > 0 {
		return featured[0], nil
	}

	recent, err := s.photos.List(ctx, models.PhotoQuery{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch featured photo: %w", err)
	}
	if len(recent) > 0 {
		return recent[0], nil
	}
	return nil, nil
}

// DeletePhoto removes a photo
func (s *galleryService) DeletePhoto(ctx context.Context, photoID string) error {
	if err := s.photos.Delete(ctx, photoID); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	s.log.Info().Str("photo_id", photoID).Msg("Photo deleted")
	return nil
}
