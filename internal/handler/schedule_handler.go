package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/service"
	"github.com/noah-isme/mealtrack-go-api/internal/utils"
)

// ScheduleHandler wires the weekly eligibility calendar endpoints.
type ScheduleHandler struct {
	schedules service.ScheduleService
	logger    zerolog.Logger
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(schedules service.ScheduleService, logger zerolog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		schedules: schedules,
		logger:    logger.With().Str("component", "schedule_handler").Logger(),
	}
}

// Register attaches schedule routes to the router group.
func (h *ScheduleHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Put("", h.upsert)
	router.Delete("/:id", h.delete)
}

func (h *ScheduleHandler) list(c *fiber.Ctx) error {
	schedules, err := h.schedules.List(c.Context(), c.Query("program"))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list schedules")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list schedules")
	}
	return utils.SendSuccess(c, "schedules retrieved", schedules)
}

func (h *ScheduleHandler) upsert(c *fiber.Ctx) error {
	var payload dto.ScheduleUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	schedule, err := h.schedules.Upsert(c.Context(), payload, adminIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownProgram), errors.Is(err, service.ErrYearLevelOutOfRange), isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to upsert schedule")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to upsert schedule")
		}
	}

	return utils.SendSuccess(c, "schedule saved", schedule)
}

func (h *ScheduleHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.schedules.Delete(c.Context(), id, adminIDFromContext(c)); err != nil {
		if errors.Is(err, service.ErrScheduleNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "schedule not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete schedule")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete schedule")
	}

	return utils.SendSuccess(c, "schedule deleted", nil)
}
