package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/service"
	"github.com/noah-isme/mealtrack-go-api/internal/utils"
)

// AuthHandler wires the admin sign-in and credential recovery endpoints.
type AuthHandler struct {
	auth    service.AuthService
	uploads service.UploadService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler. uploads may be nil when avatar
// storage is not configured.
func NewAuthHandler(auth service.AuthService, uploads service.UploadService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		uploads: uploads,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterPublic attaches the unauthenticated auth routes.
func (h *AuthHandler) RegisterPublic(router fiber.Router) {
	router.Post("/login", h.login)
	router.Post("/google", h.loginWithGoogle)
	router.Post("/refresh", h.refresh)
	router.Post("/forgot-password", h.forgotPassword)
	router.Post("/reset-password", h.resetPassword)
}

// RegisterProtected attaches routes that require a valid access token.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Get("/profile", h.profile)
	router.Post("/profile/avatar", h.uploadAvatar)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.auth.Login(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("login failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "login failed")
		}
	}

	return utils.SendSuccess(c, "signed in", response)
}

func (h *AuthHandler) loginWithGoogle(c *fiber.Ctx) error {
	var payload dto.GoogleLoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.auth.LoginWithGoogle(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, service.ErrEmailDomainNotAllowed):
			return utils.SendError(c, fiber.StatusForbidden, "email domain not allowed")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("google sign-in failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "google sign-in failed")
		}
	}

	return utils.SendSuccess(c, "signed in", response)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) refresh(c *fiber.Ctx) error {
	var payload refreshRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	tokens, err := h.auth.Refresh(c.Context(), payload.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrRefreshTokenInvalid) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid refresh token")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("token refresh failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "token refresh failed")
	}

	return utils.SendSuccess(c, "tokens refreshed", tokens)
}

func (h *AuthHandler) forgotPassword(c *fiber.Ctx) error {
	var payload dto.ForgotPasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.auth.ForgotPassword(c.Context(), payload); err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("forgot password failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "forgot password failed")
	}

	// Same response whether or not the email exists.
	return utils.SendSuccess(c, "if the account exists, a reset token was sent", nil)
}

func (h *AuthHandler) resetPassword(c *fiber.Ctx) error {
	var payload dto.ResetPasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.auth.ResetPassword(c.Context(), payload); err != nil {
		switch {
		case errors.Is(err, service.ErrResetTokenInvalid):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid or expired reset token")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("password reset failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "password reset failed")
		}
	}

	return utils.SendSuccess(c, "password updated", nil)
}

func (h *AuthHandler) profile(c *fiber.Ctx) error {
	adminID := adminIDFromContext(c)
	if adminID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
	}

	admin, err := h.auth.Profile(c.Context(), adminID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load profile")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load profile")
	}

	return utils.SendSuccess(c, "profile retrieved", admin)
}

func (h *AuthHandler) uploadAvatar(c *fiber.Ctx) error {
	if h.uploads == nil {
		return utils.SendError(c, fiber.StatusServiceUnavailable, "avatar storage not configured")
	}

	adminID := adminIDFromContext(c)
	if adminID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
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

	admin, err := h.auth.SetProfilePicture(c.Context(), adminID, stored.URL)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to store avatar url")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to store avatar url")
	}

	return utils.SendSuccess(c, "avatar uploaded", admin)
}
