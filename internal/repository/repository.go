package repository

import (
	"context"
	"errors"

	"github.com/photo-gallery-api/internal/database"
	"github.com/photo-gallery-api/internal/models"
)

// ErrNotFound is returned by mutations that target a missing record
var ErrNotFound = errors.New("record not found")

// ErrSlugTaken is returned when a photo slug collides with an existing one
var ErrSlugTaken = errors.New("slug already exists")

// PhotoRepository defines the interface for photo data operations
type PhotoRepository interface {
	Create(ctx context.Context, photo *models.Photo) error
	// GetBySlug returns nil, nil when no photo has the slug
	GetBySlug(ctx context.Context, slug string) (*models.Photo, error)
	List(ctx context.Context, query models.PhotoQuery) ([]*models.Photo, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// GetByID returns nil, nil when the comment does not exist
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	List(ctx context.Context, query models.CommentQuery) ([]*models.Comment, error)
	UpdateStatus(ctx context.Context, id string, status models.ModerationStatus) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// MediaStore uploads binary assets and issues their origin and CDN URLs
type MediaStore interface {
	Upload(ctx context.Context, upload models.MediaUpload) (*models.ImageRef, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Photo   PhotoRepository
	Comment CommentRepository
	Media   MediaStore
	// Backend names the store serving the repositories
	Backend string
}

// NewPostgres creates repositories backed by PostgreSQL and the given media store
func NewPostgres(db *database.DB, media MediaStore) *Repositories {
	return &Repositories{
		Photo:   NewPhotoRepo(db),
		Comment: NewCommentRepo(db),
		Media:   media,
		Backend: "postgres",
	}
}
