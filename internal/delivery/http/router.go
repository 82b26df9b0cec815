package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/safecity/backend/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(
	app *fiber.App,
	safetySvc *service.SafetyService,
	insightSvc *service.InsightService,
	limiter *RateLimiter,
	logger *zap.Logger,
) {
	handler := NewHandler(safetySvc, insightSvc, logger)

	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1", limiter.Handler())
	{
		// Area clustering and scoring
		api.Get("/safety-scores", handler.GetSafetyScores)
		api.Get("/heatmap", handler.GetHeatmap)

		// Route comparison
		api.Post("/safer-routes", handler.SuggestSaferRoutes)

		// Safety insights (LLM with template fallback)
		api.Post("/insights", handler.GetInsights)
	}
}
