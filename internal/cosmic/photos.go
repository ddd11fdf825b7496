package cosmic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/photo-gallery-api/internal/models"
	"github.com/photo-gallery-api/internal/repository"
)

type photoMetadata struct {
	Caption     string          `json:"caption"`
	Photo       models.ImageRef `json:"photo"`
	UploadDate  models.Date     `json:"upload_date"`
	Featured    bool            `json:"featured"`
	EmailSource string          `json:"email_source"`
}

// PhotoRepo implements repository.PhotoRepository over the photos object type
type PhotoRepo struct {
	client *Client
}

var _ repository.PhotoRepository = (*PhotoRepo)(nil)

// NewPhotoRepo creates a photo repository on the client's bucket
func NewPhotoRepo(client *Client) *PhotoRepo {
	return &PhotoRepo{client: client}
}

// Create inserts a published photo object and assigns its ID
func (r *PhotoRepo) Create(ctx context.Context, photo *models.Photo) error {
	body := map[string]interface{}{
		"type":   typePhotos,
		"title":  photo.Title,
		"slug":   photo.Slug,
		"status": "published",
		"metadata": photoMetadata{
			Caption:     photo.Caption,
			Photo:       photo.Image,
			UploadDate:  photo.UploadDate,
			Featured:    photo.Featured,
			EmailSource: photo.EmailSource,
		},
	}

	obj, err := r.client.insertObject(ctx, body)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	photo.ID = obj.ID
	if obj.Slug != "" {
		photo.Slug = obj.Slug
	}
	return nil
}

// GetBySlug returns nil, nil when no photo has the slug
func (r *PhotoRepo) GetBySlug(ctx context.Context, slug string) (*models.Photo, error) {
	objs, err := r.client.find(ctx, findParams{
		Query: map[string]interface{}{"type": typePhotos, "slug": slug},
		Limit: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photo: %w", err)
	}
	if len(objs) == 0 {
		return nil, nil
	}
	return decodePhoto(objs[0])
}

// List returns photos newest upload first
func (r *PhotoRepo) List(ctx context.Context, q models.PhotoQuery) ([]*models.Photo, error) {
	query := map[string]interface{}{"type": typePhotos}
	if q.FeaturedOnly {
		query["metadata.featured"] = true
	}
	limit := q.Limit
	if limit <= 0 {
		limit = models.DefaultPhotoLimit
	}

	objs, err := r.client.find(ctx, findParams{
		Query: query,
		Sort:  "-metadata.upload_date",
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photos: %w", err)
	}

	photos := make([]*models.Photo, 0, len(objs))
	for _, obj := range objs {
		photo, err := decodePhoto(obj)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, nil
}

// SlugExists checks if a photo with the given slug exists
func (r *PhotoRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	photo, err := r.GetBySlug(ctx, slug)
	return photo != nil, err
}

// Delete removes a photo object
func (r *PhotoRepo) Delete(ctx context.Context, id string) error {
	err := r.client.deleteObject(ctx, id)
	if IsNotFound(err) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

func decodePhoto(obj object) (*models.Photo, error) {
	var meta photoMetadata
	if len(obj.Metadata) > 0 {
		if err := json.Unmarshal(obj.Metadata, &meta); err != nil {
			return nil, fmt.Errorf("cosmic: invalid photo metadata for %s: %w", obj.ID, err)
		}
	}
	return &models.Photo{
		ID:          obj.ID,
		Title:       obj.Title,
		Slug:        obj.Slug,
		Caption:     meta.Caption,
		Image:       meta.Photo,
		UploadDate:  meta.UploadDate,
		Featured:    meta.Featured,
		EmailSource: meta.EmailSource,
	}, nil
}
