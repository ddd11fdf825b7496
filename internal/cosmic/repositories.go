package cosmic

import (
	"github.com/photo-gallery-api/internal/config"
	"github.com/photo-gallery-api/internal/repository"
	"github.com/rs/zerolog"
)

// NewRepositories wires every repository to one bucket client
func NewRepositories(cfg config.CosmicConfig, log zerolog.Logger) *repository.Repositories {
	client := NewClient(cfg, log)
	return &repository.Repositories{
		Photo:   NewPhotoRepo(client),
		Comment: NewCommentRepo(client),
		Media:   NewMediaStore(client),
		Backend: config.BackendCosmic,
	}
}
