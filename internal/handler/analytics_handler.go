package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mealtrack-go-api/internal/period"
	"github.com/noah-isme/mealtrack-go-api/internal/service"
	"github.com/noah-isme/mealtrack-go-api/internal/utils"
)

// AnalyticsHandler wires the dashboard aggregation endpoints.
type AnalyticsHandler struct {
	summary   service.SummaryService
	breakdown service.BreakdownService
	logger    zerolog.Logger
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(summary service.SummaryService, breakdown service.BreakdownService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		summary:   summary,
		breakdown: breakdown,
		logger:    logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register attaches analytics routes to the router group.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/summary", h.getSummary)
	router.Get("/breakdown", h.getBreakdown)
}

func (h *AnalyticsHandler) getSummary(c *fiber.Ctx) error {
	filterPeriod := c.Query("period", period.FilterDaily)
	value := c.Query("value")

	response, err := h.summary.Summarize(c.Context(), filterPeriod, value)
	if err != nil {
		if errors.Is(err, period.ErrInvalidPeriod) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build performance summary")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build performance summary")
	}

	return utils.SendSuccess(c, "performance summary", response)
}

func (h *AnalyticsHandler) getBreakdown(c *fiber.Ctx) error {
	filterPeriod := c.Query("period", period.FilterDaily)
	value := c.Query("value")
	program := c.Query("program")
	groupBy := c.Query("group_by")

	response, err := h.breakdown.Breakdown(c.Context(), filterPeriod, value, program, groupBy)
	if err != nil {
		if errors.Is(err, period.ErrInvalidPeriod) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build program breakdown")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build program breakdown")
	}

	return utils.SendSuccess(c, "program breakdown", response)
}
