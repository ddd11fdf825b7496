package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/photo-gallery-api/internal/api"
	"github.com/photo-gallery-api/internal/config"
	"github.com/photo-gallery-api/internal/cosmic"
	"github.com/photo-gallery-api/internal/database"
	"github.com/photo-gallery-api/internal/media"
	"github.com/photo-gallery-api/internal/metrics"
	"github.com/photo-gallery-api/internal/repository"
	"github.com/photo-gallery-api/internal/service"
	"github.com/photo-gallery-api/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log := logger.New("info", "json")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("backend", cfg.StoreBackend).Msg("Starting Photo Gallery API server...")

	// Initialize repositories for the configured store
	repos, closeStore := openStore(cfg, log)
	defer closeStore()
	repos.Photo = repository.NewCachedPhotoRepository(repos.Photo, cfg.Cache.Size, cfg.Cache.TTL)

	m := metrics.New()
	services := service.NewServices(repos, cfg, m, log)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.Log.Format != "pretty" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(ctx, services, cfg, m, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop background workers
	stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server exited gracefully")
}

// openStore builds the repositories for cfg.StoreBackend and returns a
// cleanup func that releases any held connections
func openStore(cfg *config.Config, log zerolog.Logger) (*repository.Repositories, func()) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := database.New(&cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			db.Close()
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
		store := media.NewLocalStore(cfg.Media.Dir, cfg.Media.PublicURL, log)
		return repository.NewPostgres(db, store), func() { db.Close() }
	default:
		return cosmic.NewRepositories(cfg.Cosmic, log), func() {}
	}
}
