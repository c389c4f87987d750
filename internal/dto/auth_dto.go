package dto

import (
	"time"

	"github.com/noah-isme/mealtrack-go-api/internal/models"
)

// LoginRequest is the email+password admin sign-in payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// GoogleLoginRequest carries the opaque Google ID token from the console.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// TokenPair carries the issued access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AdminResponse serializes an operator account.
type AdminResponse struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// LoginResponse bundles the signed-in admin with their tokens.
type LoginResponse struct {
	Admin  AdminResponse `json:"admin"`
	Tokens TokenPair     `json:"tokens"`
}

// NewAdminResponse converts an admin model into a DTO.
func NewAdminResponse(admin models.Admin) AdminResponse {
	return AdminResponse{
		ID:                admin.ID,
		Name:              admin.Name,
		Email:             admin.Email,
		ProfilePictureURL: admin.ProfilePictureURL,
		CreatedAt:         admin.CreatedAt,
	}
}
