package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/service"
	"github.com/noah-isme/mealtrack-go-api/internal/utils"
)

// EligibilityHandler wires the kitchen terminal check-in endpoint.
type EligibilityHandler struct {
	service   service.EligibilityService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEligibilityHandler constructs the handler.
func NewEligibilityHandler(service service.EligibilityService, validator *validator.Validate, logger zerolog.Logger) *EligibilityHandler {
	return &EligibilityHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "eligibility_handler").Logger(),
	}
}

// Register attaches the check-in route to the router group.
func (h *EligibilityHandler) Register(router fiber.Router) {
	router.Post("/check", h.check)
}

func (h *EligibilityHandler) check(c *fiber.Ctx) error {
	var payload dto.EligibilityCheckRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Check(c.Context(), payload.StudentIDNumber)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("eligibility check failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "eligibility check failed")
	}

	return utils.SendSuccess(c, "eligibility evaluated", response)
}
