package handler_test

import (
	"context"
	"io"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/handler"
	"github.com/noah-isme/mealtrack-go-api/internal/service"
)

type mockAuthService struct {
	loginResponse dto.LoginResponse
	loginErr      error
	refreshErr    error
	resetErr      error
	lastEmail     string
}

func (m *mockAuthService) Login(_ context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	m.lastEmail = req.Email
	if m.loginErr != nil {
		return dto.LoginResponse{}, m.loginErr
	}
	return m.loginResponse, nil
}

func (m *mockAuthService) LoginWithGoogle(_ context.Context, _ dto.GoogleLoginRequest) (dto.LoginResponse, error) {
	if m.loginErr != nil {
		return dto.LoginResponse{}, m.loginErr
	}
	return m.loginResponse, nil
}

func (m *mockAuthService) Refresh(_ context.Context, _ string) (dto.TokenPair, error) {
	if m.refreshErr != nil {
		return dto.TokenPair{}, m.refreshErr
	}
	return dto.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (m *mockAuthService) ForgotPassword(_ context.Context, req dto.ForgotPasswordRequest) error {
	m.lastEmail = req.Email
	return nil
}

func (m *mockAuthService) ResetPassword(_ context.Context, _ dto.ResetPasswordRequest) error {
	return m.resetErr
}

func (m *mockAuthService) Profile(_ context.Context, _ uint) (dto.AdminResponse, error) {
	return m.loginResponse.Admin, nil
}

func (m *mockAuthService) SetProfilePicture(_ context.Context, _ uint, url string) (dto.AdminResponse, error) {
	admin := m.loginResponse.Admin
	admin.ProfilePictureURL = url
	return admin, nil
}

func newAuthApp(svc service.AuthService) *fiber.App {
	app := fiber.New()
	handler.NewAuthHandler(svc, nil, zerolog.New(io.Discard)).RegisterPublic(app.Group("/api/v1/auth"))
	return app
}

func TestAuthHandler_LoginSuccess(t *testing.T) {
	svc := &mockAuthService{
		loginResponse: dto.LoginResponse{
			Admin:  dto.AdminResponse{ID: 1, Name: "Ops", Email: "ops@example.edu"},
			Tokens: dto.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
		},
	}
	app := newAuthApp(svc)

	resp := postJSON(t, app, "/api/v1/auth/login", dto.LoginRequest{Email: "ops@example.edu", Password: "correct-horse"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool              `json:"success"`
		Data    dto.LoginResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)

	require.True(t, payload.Success)
	require.Equal(t, "access", payload.Data.Tokens.AccessToken)
	require.Equal(t, "ops@example.edu", svc.lastEmail)
}

func TestAuthHandler_LoginRejected(t *testing.T) {
	svc := &mockAuthService{loginErr: service.ErrInvalidCredentials}
	app := newAuthApp(svc)

	resp := postJSON(t, app, "/api/v1/auth/login", dto.LoginRequest{Email: "ops@example.edu", Password: "wrong-password"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandler_GoogleDomainRejected(t *testing.T) {
	svc := &mockAuthService{loginErr: service.ErrEmailDomainNotAllowed}
	app := newAuthApp(svc)

	resp := postJSON(t, app, "/api/v1/auth/google", dto.GoogleLoginRequest{IDToken: "opaque"})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAuthHandler_RefreshRejected(t *testing.T) {
	svc := &mockAuthService{refreshErr: service.ErrRefreshTokenInvalid}
	app := newAuthApp(svc)

	resp := postJSON(t, app, "/api/v1/auth/refresh", map[string]string{"refresh_token": "stale"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandler_ResetTokenRejected(t *testing.T) {
	svc := &mockAuthService{resetErr: service.ErrResetTokenInvalid}
	app := newAuthApp(svc)

	resp := postJSON(t, app, "/api/v1/auth/reset-password", dto.ResetPasswordRequest{Token: "stale", NewPassword: "longenough"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
