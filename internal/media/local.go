// Package media stores uploaded images on local disk for self-hosted deployments.
package media

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/photo-gallery-api/internal/models"
	"github.com/photo-gallery-api/pkg/slug"
	"github.com/rs/zerolog"
)

// LocalStore writes media under a root directory served at a public base URL
type LocalStore struct {
	root      string
	publicURL string
	log       zerolog.Logger
}

// NewLocalStore creates a disk-backed media store
func NewLocalStore(root, publicURL string, log zerolog.Logger) *LocalStore {
	return &LocalStore{
		root:      root,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log.With().Str("component", "media").Logger(),
	}
}

// Upload saves the bytes and returns URLs for the stored file
func (s *LocalStore) Upload(ctx context.Context, upload models.MediaUpload) (*models.ImageRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	folder := slug.FromFilename(upload.Folder)
	if folder == "" {
		folder = "uploads"
	}
	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	name := storedName(upload.Filename)
	if err := os.WriteFile(filepath.Join(dir, name), upload.Content, 0644); err != nil {
		return nil, fmt.Errorf("failed to write media file: %w", err)
	}

	url := s.publicURL + "/" + path.Join(folder, name)

	s.log.Debug().
		Str("file", name).
		Str("folder", folder).
		Int("size_bytes", len(upload.Content)).
		Msg("Media stored")

	return &models.ImageRef{URL: url, ImgixURL: url}, nil
}

// storedName prefixes a sanitized filename with a short random id
func storedName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := slug.FromFilename(filepath.Base(filename))
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%s_%s%s", uuid.New().String()[:8], base, ext)
}
