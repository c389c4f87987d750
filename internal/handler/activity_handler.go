package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mealtrack-go-api/internal/repository"
	"github.com/noah-isme/mealtrack-go-api/internal/service"
	"github.com/noah-isme/mealtrack-go-api/internal/utils"
)

// ActivityHandler exposes the admin audit trail.
type ActivityHandler struct {
	activity service.ActivityService
	logger   zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(activity service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activity: activity,
		logger:   logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity routes to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := paging(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	filter := repository.ActivityLogFilter{
		Page:       page,
		PageSize:   pageSize,
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
	}

	if actorID, err := parseQueryInt(c, "actor_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid actor id")
	} else if actorID > 0 {
		id := uint(actorID)
		filter.ActorID = &id
	}

	if since := c.Query("since"); since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "since must be RFC3339")
		}
		filter.Since = &parsed
	}

	entries, total, err := h.activity.List(c.Context(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activity log")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity log")
	}

	return utils.SendSuccess(c, "activity retrieved", fiber.Map{
		"items":     entries,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
