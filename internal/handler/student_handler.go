package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/service"
	"github.com/noah-isme/mealtrack-go-api/internal/utils"
)

// StudentHandler wires admin student endpoints.
type StudentHandler struct {
	students service.StudentService
	uploads  service.UploadService
	logger   zerolog.Logger
}

// NewStudentHandler constructs the handler. uploads may be nil when avatar
// storage is not configured.
func NewStudentHandler(students service.StudentService, uploads service.UploadService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		students: students,
		uploads:  uploads,
		logger:   logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student admin routes to the router group.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/bulk", h.bulkImport)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/avatar", h.uploadAvatar)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := paging(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	yearLevel, err := parseQueryInt(c, "year_level")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid year level")
	}

	req := dto.StudentListRequest{
		Page:      page,
		PageSize:  pageSize,
		Search:    c.Query("search"),
		Program:   c.Query("program"),
		YearLevel: yearLevel,
		Section:   c.Query("section"),
		Sort:      c.Query("sort"),
	}

	response, err := h.students.List(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list students")
	}

	return utils.SendSuccess(c, "students retrieved", response)
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var payload dto.StudentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.students.Create(c.Context(), payload, adminIDFromContext(c))
	if err != nil {
		return h.mapStudentError(c, err, "failed to create student")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", student)
}

func (h *StudentHandler) bulkImport(c *fiber.Ctx) error {
	var payload dto.StudentBulkImportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.students.BulkImport(c.Context(), payload, adminIDFromContext(c))
	if err != nil {
		return h.mapStudentError(c, err, "failed to import students")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "students imported", response)
}

func (h *StudentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	student, err := h.students.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch student")
	}

	return utils.SendSuccess(c, "student retrieved", student)
}

func (h *StudentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.StudentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.students.Update(c.Context(), id, payload, adminIDFromContext(c))
	if err != nil {
		return h.mapStudentError(c, err, "failed to update student")
	}

	return utils.SendSuccess(c, "student updated", student)
}

func (h *StudentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.students.Delete(c.Context(), id, adminIDFromContext(c)); err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete student")
	}

	return utils.SendSuccess(c, "student deleted", nil)
}

func (h *StudentHandler) uploadAvatar(c *fiber.Ctx) error {
	if h.uploads == nil {
		return utils.SendError(c, fiber.StatusServiceUnavailable, "avatar storage not configured")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	stored, err := h.uploads.UploadAvatar(c.Context(), file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrUploadNotImage):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("avatar upload failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "avatar upload failed")
		}
	}

	student, err := h.students.SetProfilePicture(c.Context(), id, stored.URL)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to store avatar url")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to store avatar url")
	}

	return utils.SendSuccess(c, "avatar uploaded", student)
}

func (h *StudentHandler) mapStudentError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrStudentExists):
		return utils.SendError(c, fiber.StatusConflict, "student already exists")
	case errors.Is(err, service.ErrUnknownProgram), errors.Is(err, service.ErrYearLevelOutOfRange), isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
