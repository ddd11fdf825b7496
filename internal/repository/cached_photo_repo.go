package repository

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/photo-gallery-api/internal/models"
)

const defaultPhotoCacheSize = 256

type cachedPhoto struct {
	photo     models.Photo
	expiresAt time.Time
}

// cachedPhotoRepo serves repeated slug lookups from memory. Writes purge the
// whole cache since a delete only knows the photo id.
type cachedPhotoRepo struct {
	PhotoRepository
	cache *lru.Cache[string, cachedPhoto]
	ttl   time.Duration
	now   func() time.Time
}

// NewCachedPhotoRepository wraps inner with an LRU slug cache.
// A non-positive ttl returns inner unchanged.
func NewCachedPhotoRepository(inner PhotoRepository, size int, ttl time.Duration) PhotoRepository {
	if ttl <= 0 {
		return inner
	}
	if size <= 0 {
		size = defaultPhotoCacheSize
	}
	cache, err := lru.New[string, cachedPhoto](size)
	if err != nil {
		return inner
	}
	return &cachedPhotoRepo{
		PhotoRepository: inner,
		cache:           cache,
		ttl:             ttl,
		now:             time.Now,
	}
}

func (r *cachedPhotoRepo) GetBySlug(ctx context.Context, slug string) (*models.Photo, error) {
	if entry, ok := r.cache.Get(slug); ok {
		if r.now().Before(entry.expiresAt) {
			photo := entry.photo
			return &photo, nil
		}
		r.cache.Remove(slug)
	}

	photo, err := r.PhotoRepository.GetBySlug(ctx, slug)
	if err != nil || photo == nil {
		return photo, err
	}
	r.cache.Add(slug, cachedPhoto{photo: *photo, expiresAt: r.now().Add(r.ttl)})
	return photo, nil
}

func (r *cachedPhotoRepo) Create(ctx context.Context, photo *models.Photo) error {
	err := r.PhotoRepository.Create(ctx, photo)
	if err == nil {
		r.cache.Purge()
	}
	return err
}

func (r *cachedPhotoRepo) Delete(ctx context.Context, id string) error {
	err := r.PhotoRepository.Delete(ctx, id)
	if err == nil {
		r.cache.Purge()
	}
	return err
}
