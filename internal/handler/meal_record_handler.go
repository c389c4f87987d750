package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/period"
	"github.com/noah-isme/mealtrack-go-api/internal/service"
	"github.com/noah-isme/mealtrack-go-api/internal/utils"
)

// MealRecordHandler wires the meal ledger listing and the unclaimed backfill.
type MealRecordHandler struct {
	records   service.MealRecordService
	backfill  service.BackfillService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewMealRecordHandler constructs the handler.
func NewMealRecordHandler(records service.MealRecordService, backfill service.BackfillService, validator *validator.Validate, logger zerolog.Logger) *MealRecordHandler {
	return &MealRecordHandler{
		records:   records,
		backfill:  backfill,
		validator: validator,
		logger:    logger.With().Str("component", "meal_record_handler").Logger(),
	}
}

// Register attaches meal record routes to the router group.
func (h *MealRecordHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("/backfill", h.runBackfill)
}

func (h *MealRecordHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := paging(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	req := dto.MealRecordListRequest{
		StudentIDNumber: c.Query("student_id_number"),
		Status:          c.Query("status"),
		From:            c.Query("from"),
		To:              c.Query("to"),
		Page:            page,
		PageSize:        pageSize,
	}

	response, err := h.records.List(c.Context(), req)
	if err != nil {
		if errors.Is(err, period.ErrInvalidPeriod) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list meal records")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list meal records")
	}

	return utils.SendSuccess(c, "meal records retrieved", response)
}

func (h *MealRecordHandler) runBackfill(c *fiber.Ctx) error {
	var payload dto.BackfillRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.backfill.GenerateUnclaimed(c.Context(), payload.Date)
	if err != nil {
		if errors.Is(err, period.ErrInvalidPeriod) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("unclaimed backfill failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "unclaimed backfill failed")
	}

	return utils.SendSuccess(c, "unclaimed backfill completed", response)
}
