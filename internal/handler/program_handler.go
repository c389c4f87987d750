package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/service"
	"github.com/noah-isme/mealtrack-go-api/internal/utils"
)

// ProgramHandler wires the academic program registry endpoints.
type ProgramHandler struct {
	programs service.ProgramService
	logger   zerolog.Logger
}

// NewProgramHandler constructs the handler.
func NewProgramHandler(programs service.ProgramService, logger zerolog.Logger) *ProgramHandler {
	return &ProgramHandler{
		programs: programs,
		logger:   logger.With().Str("component", "program_handler").Logger(),
	}
}

// Register attaches program routes to the router group.
func (h *ProgramHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *ProgramHandler) list(c *fiber.Ctx) error {
	programs, err := h.programs.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list programs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list programs")
	}
	return utils.SendSuccess(c, "programs retrieved", programs)
}

func (h *ProgramHandler) create(c *fiber.Ctx) error {
	var payload dto.ProgramCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	program, err := h.programs.Create(c.Context(), payload, adminIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProgramExists):
			return utils.SendError(c, fiber.StatusConflict, "program already exists")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create program")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create program")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "program created", program)
}

func (h *ProgramHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.ProgramUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	program, err := h.programs.Update(c.Context(), id, payload, adminIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProgramNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "program not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update program")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update program")
		}
	}

	return utils.SendSuccess(c, "program updated", program)
}

func (h *ProgramHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.programs.Delete(c.Context(), id, adminIDFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrProgramNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "program not found")
		case errors.Is(err, service.ErrProgramInUse):
			return utils.SendError(c, fiber.StatusConflict, "program still has enrolled students")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete program")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete program")
		}
	}

	return utils.SendSuccess(c, "program deleted", nil)
}
