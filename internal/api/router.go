package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/photo-gallery-api/internal/config"
	"github.com/photo-gallery-api/internal/metrics"
	"github.com/photo-gallery-api/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter creates and configures the Gin router. ctx bounds background
// work owned by the router, such as the rate limiter sweep.
func NewRouter(ctx context.Context, services *service.Services, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) *gin.Engine {
	router := gin.New()

	// Client IPs feed the rate limiter, so forwarded headers are only read from known proxies
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		log.Warn().Err(err).Strs("proxies", cfg.Server.TrustedProxies).Msg("Invalid trusted proxies, trusting none")
		_ = router.SetTrustedProxies(nil)
	}

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log, m))
	router.Use(cors.New(corsConfig()))

	limiter := newIPRateLimiter(ctx, cfg.Security.RateLimitRPS, cfg.Security.RateLimitBurst)

	// Handlers
	webhookHandler := NewWebhookHandler(services, cfg, log)
	photoHandler := NewPhotoHandler(services, log)
	commentHandler := NewCommentHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(cfg.StoreBackend))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	// Locally stored media is only served for the Postgres backend
	if cfg.StoreBackend == config.BackendPostgres {
		router.Static("/media", cfg.Media.Dir)
	}

	webhook := router.Group("/api/email-webhook")
	{
		webhook.GET("", webhookHandler.Describe)
		webhook.POST("", limiter.middleware(), webhookHandler.Receive)
	}

	// API v1
	v1 := router.Group("/v1")
	{
		photos := v1.Group("/photos")
		{
			photos.GET("", photoHandler.ListPhotos)
			photos.GET("/featured", photoHandler.GetFeatured)
			photos.GET("/:slug", photoHandler.GetPhoto)
		}

		v1.POST("/comments", limiter.middleware(), commentHandler.SubmitComment)

		admin := v1.Group("/admin", adminAuth(cfg.Security.AdminToken))
		{
			admin.GET("/comments", commentHandler.ListComments)
			admin.GET("/comments/stats", commentHandler.GetStats)
			admin.PATCH("/comments/:id", commentHandler.UpdateStatus)
			admin.DELETE("/comments/:id", commentHandler.DeleteComment)
			admin.DELETE("/photos/:id", photoHandler.DeletePhoto)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(backend string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "photo-gallery-api",
			"backend":   backend,
		})
	}
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", webhookSecretHeader}
	return cfg
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   "Internal server error",
					"details": "unexpected error while handling the request",
				})
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests and records their latency
func loggingMiddleware(log zerolog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		m.ObserveRequest(c.Request.Method, c.FullPath(), statusCode, duration)

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}
