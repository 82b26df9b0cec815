package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/safecity/backend/internal/domain"
	"github.com/safecity/backend/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	safetySvc  *service.SafetyService
	insightSvc *service.InsightService
	logger     *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(safetySvc *service.SafetyService, insightSvc *service.InsightService, logger *zap.Logger) *Handler {
	return &Handler{
		safetySvc:  safetySvc,
		insightSvc: insightSvc,
		logger:     logger,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	status := "ok"
	if err := h.safetySvc.Health(c.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":  status,
		"service": "safecity-backend",
		"version": "1.0.0",
	})
}

// GetSafetyScores returns every area sorted by crime count.
// Storage failures produce an empty list, not an error status.
func (h *Handler) GetSafetyScores(c *fiber.Ctx) error {
	return c.JSON(h.safetySvc.GetAreas(c.Context()))
}

// SuggestSaferRoutes returns safest, balanced and fastest routes between two points
func (h *Handler) SuggestSaferRoutes(c *fiber.Ctx) error {
	var req domain.RouteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if strings.TrimSpace(req.StartLocation) == "" || strings.TrimSpace(req.EndLocation) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Start and end locations are required")
	}

	return c.JSON(h.safetySvc.SuggestRoutes(c.Context(), req))
}

// GetHeatmap returns crime density per grid cell
func (h *Handler) GetHeatmap(c *fiber.Ctx) error {
	return c.JSON(h.safetySvc.GetHeatmap(c.Context()))
}

// GetInsights returns a safety insight for a location
func (h *Handler) GetInsights(c *fiber.Ctx) error {
	var req domain.InsightRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	insight, err := h.insightSvc.Generate(c.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrLocationUnresolved) {
			return fiber.NewError(fiber.StatusBadRequest, "Valid latitude and longitude are required")
		}
		h.logger.Error("failed to generate insight", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to generate insight")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    insight,
	})
}
