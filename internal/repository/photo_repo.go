package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/photo-gallery-api/internal/database"
	"github.com/photo-gallery-api/internal/models"
)

const photoColumns = `p.id, p.title, p.slug, p.caption, p.image_url, p.imgix_url, p.upload_date, p.featured, p.email_source`

// photoRepo is the concrete implementation of PhotoRepository
type photoRepo struct {
	db *database.DB
}

// NewPhotoRepo creates a new photo repository
func NewPhotoRepo(db *database.DB) PhotoRepository {
	return &photoRepo{db: db}
}

// Create inserts a new photo and assigns its ID
func (r *photoRepo) Create(ctx context.Context, photo *models.Photo) error {
	if photo.ID == "" {
		photo.ID = uuid.New().String()
	}

	query := `
		INSERT INTO photos (id, title, slug, caption, image_url, imgix_url, upload_date, featured, email_source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		photo.ID, photo.Title, photo.Slug, photo.Caption,
		photo.Image.URL, photo.Image.ImgixURL, photo.UploadDate,
		photo.Featured, photo.EmailSource,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("photo %q: %w", photo.Slug, ErrSlugTaken)
	}
	return err
}

// GetBySlug retrieves a photo by slug
func (r *photoRepo) GetBySlug(ctx context.Context, slug string) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos p WHERE p.slug = $1`

	photo, err := scanPhoto(r.db.QueryRowContext(ctx, query, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// List returns photos newest upload first
func (r *photoRepo) List(ctx context.Context, q models.PhotoQuery) ([]*models.Photo, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + photoColumns + ` FROM photos p`)
	if q.FeaturedOnly {
		sb.WriteString(` WHERE p.featured = TRUE`)
	}
	sb.WriteString(` ORDER BY p.upload_date DESC, p.created_at DESC`)

	limit := q.Limit
	if limit <= 0 {
		limit = models.DefaultPhotoLimit
	}
	sb.WriteString(` LIMIT $1`)

	rows, err := r.db.QueryContext(ctx, sb.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := make([]*models.Photo, 0)
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}

// SlugExists checks if a photo with the given slug exists
func (r *photoRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM photos WHERE slug = $1)", slug).Scan(&exists)
	return exists, err
}

// Delete removes a photo; its comments cascade
func (r *photoRepo) Delete(ctx context.Context, id string) error {
	return execDelete(ctx, r.db, "DELETE FROM photos WHERE id = $1", id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPhoto(row rowScanner) (*models.Photo, error) {
	var photo models.Photo
	err := row.Scan(
		&photo.ID, &photo.Title, &photo.Slug, &photo.Caption,
		&photo.Image.URL, &photo.Image.ImgixURL, &photo.UploadDate,
		&photo.Featured, &photo.EmailSource,
	)
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

func execDelete(ctx context.Context, db *database.DB, query, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// isForeignKeyViolation reports whether err is a PostgreSQL foreign_key_violation
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
