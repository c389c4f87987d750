package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mealtrack-go-api/internal/models"
	"github.com/noah-isme/mealtrack-go-api/internal/service"
	"github.com/noah-isme/mealtrack-go-api/internal/utils"
)

// SeedHandler exposes tooling endpoints for seeding data.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/programs", h.programs)
	router.Post("/schedules", h.schedules)
	router.Post("/admin", h.admin)
}

type seedProgramsRequest struct {
	Items []models.Program `json:"items"`
}

type seedSchedulesRequest struct {
	Items []models.Schedule `json:"items"`
}

type seedAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *SeedHandler) programs(c *fiber.Ctx) error {
	token := c.Get("X-Seed-Token")
	var payload seedProgramsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	affected, err := h.service.SeedPrograms(c.Context(), token, payload.Items)
	if err != nil {
		return h.seedError(c, err)
	}

	return utils.SendSuccess(c, "programs seeded", fiber.Map{"affected": affected})
}

func (h *SeedHandler) schedules(c *fiber.Ctx) error {
	token := c.Get("X-Seed-Token")
	var payload seedSchedulesRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	affected, err := h.service.SeedSchedules(c.Context(), token, payload.Items)
	if err != nil {
		return h.seedError(c, err)
	}

	return utils.SendSuccess(c, "schedules seeded", fiber.Map{"affected": affected})
}

func (h *SeedHandler) admin(c *fiber.Ctx) error {
	token := c.Get("X-Seed-Token")
	var payload seedAdminRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.service.SeedAdmin(c.Context(), token, payload.Name, payload.Email, payload.Password); err != nil {
		return h.seedError(c, err)
	}

	return utils.SendSuccess(c, "admin seeded", nil)
}

func (h *SeedHandler) seedError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSeedDisabled):
		return utils.SendError(c, fiber.StatusForbidden, "seeding disabled")
	case errors.Is(err, service.ErrSeedUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, "invalid token")
	default:
		h.logger.Error().Err(err).Msg("seed operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "seed operation failed")
	}
}
