package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/RishiKendai/fpsim/internal/config"
	"github.com/RishiKendai/fpsim/internal/similarity"
)

// SetupRoutes builds the router. The rate limiter janitor stops with ctx.
func SetupRoutes(
	ctx context.Context,
	cfg *config.Config,
	engine *similarity.Engine,
	recognizer Recognizer,
	jobs JobTracker,
) *gin.Engine {
	if err := RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("Failed to register request validators")
	}

	router := gin.New()

	handler := NewHandler(cfg, engine, recognizer, jobs)

	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))
	go rateLimiter.Run(ctx)

	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware())
	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/similarity", handler.Similarity)
		api.POST("/visitors/:visitorId/snapshots", handler.RecordSnapshot)
		api.GET("/visitors/:visitorId/decisions", handler.ListDecisions)
		api.POST("/identify", handler.Identify)
		api.GET("/identify/:jobId", handler.IdentifyStatus)
	}

	return router
}
