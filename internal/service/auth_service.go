package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/repository"
	"github.com/noah-isme/mealtrack-go-api/pkg/identity"
)

var (
	// ErrInvalidCredentials indicates a failed email/password sign-in.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailDomainNotAllowed indicates the email is outside the school's
	// admin domain.
	ErrEmailDomainNotAllowed = errors.New("email domain not allowed")
	// ErrResetTokenInvalid indicates the reset token is unknown or expired.
	ErrResetTokenInvalid = errors.New("password reset token invalid or expired")
	// ErrRefreshTokenInvalid indicates the refresh token failed validation.
	ErrRefreshTokenInvalid = errors.New("refresh token invalid")
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
	resetTokenTTL   = time.Hour
)

// IdentityVerifier validates a federated ID token and returns the verified
// profile claims.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (identity.Claims, error)
}

// ResetTokenDelivery hands a freshly minted password-reset token to whatever
// sends it to the admin. The mailer lives outside this service.
type ResetTokenDelivery interface {
	Deliver(ctx context.Context, email, token string) error
}

// NewLogResetDelivery returns a delivery that only logs the token. Used in
// development and tests.
func NewLogResetDelivery(logger zerolog.Logger) ResetTokenDelivery {
	return logResetDelivery{logger: logger.With().Str("component", "reset_delivery").Logger()}
}

type logResetDelivery struct {
	logger zerolog.Logger
}

func (d logResetDelivery) Deliver(_ context.Context, email, token string) error {
	d.logger.Info().Str("email", email).Str("token", token).Msg("password reset token issued")
	return nil
}

// AuthConfig carries the signing secrets and domain policy for admin auth.
type AuthConfig struct {
	JWTSecret        string
	JWTRefreshSecret string
	// AdminEmailDomain restricts Google sign-in to one hosted domain. Empty
	// disables the restriction.
	AdminEmailDomain string
}

// AuthService handles admin console authentication.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	LoginWithGoogle(ctx context.Context, req dto.GoogleLoginRequest) (dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (dto.TokenPair, error)
	ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error
	Profile(ctx context.Context, adminID uint) (dto.AdminResponse, error)
	SetProfilePicture(ctx context.Context, adminID uint, url string) (dto.AdminResponse, error)
}

type authService struct {
	admins   repository.AdminRepository
	verifier IdentityVerifier
	delivery ResetTokenDelivery
	validate *validator.Validate
	activity ActivityRecorder
	cfg      AuthConfig
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAuthService constructs the admin auth service. verifier may be nil when
// Google sign-in is not configured.
func NewAuthService(
	admins repository.AdminRepository,
	verifier IdentityVerifier,
	delivery ResetTokenDelivery,
	validate *validator.Validate,
	activity ActivityRecorder,
	cfg AuthConfig,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		admins:   admins,
		verifier: verifier,
		delivery: delivery,
		validate: validate,
		activity: activity,
		cfg:      cfg,
		logger:   logger.With().Str("component", "auth_service").Logger(),
		now:      time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		s.logger.Warn().Str("email", email).Msg("password mismatch")
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(admin.ID)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    admin.ID,
		Action:     "auth.login",
		EntityType: "admin",
		EntityID:   &admin.ID,
	})

	return dto.LoginResponse{Admin: dto.NewAdminResponse(admin), Tokens: tokens}, nil
}

func (s *authService) LoginWithGoogle(ctx context.Context, req dto.GoogleLoginRequest) (dto.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}
	if s.verifier == nil {
		return dto.LoginResponse{}, errors.New("google sign-in not configured")
	}

	claims, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("google id token rejected")
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if s.cfg.AdminEmailDomain != "" && !strings.HasSuffix(email, "@"+s.cfg.AdminEmailDomain) {
		return dto.LoginResponse{}, fmt.Errorf("%w: %s", ErrEmailDomainNotAllowed, email)
	}

	// Federated sign-in never creates accounts; the address must already be
	// provisioned as an operator.
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if admin.ProfilePictureURL == "" && claims.Picture != "" {
		if updated, err := s.admins.Update(ctx, admin.ID, map[string]interface{}{"profile_picture_url": claims.Picture}); err == nil {
			admin = updated
		}
	}

	tokens, err := s.issueTokens(admin.ID)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    admin.ID,
		Action:     "auth.login_google",
		EntityType: "admin",
		EntityID:   &admin.ID,
	})

	return dto.LoginResponse{Admin: dto.NewAdminResponse(admin), Tokens: tokens}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (dto.TokenPair, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(s.cfg.JWTRefreshSecret), nil
	})
	if err != nil || !token.Valid {
		return dto.TokenPair{}, ErrRefreshTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return dto.TokenPair{}, ErrRefreshTokenInvalid
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub < 1 {
		return dto.TokenPair{}, ErrRefreshTokenInvalid
	}

	admin, err := s.admins.GetByID(ctx, uint(sub))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TokenPair{}, ErrRefreshTokenInvalid
		}
		return dto.TokenPair{}, err
	}

	return s.issueTokens(admin.ID)
}

func (s *authService) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Do not reveal whether the address exists.
			s.logger.Info().Str("email", email).Msg("reset requested for unknown email")
			return nil
		}
		return err
	}

	token := uuid.NewString()
	expires := s.now().UTC().Add(resetTokenTTL)
	if _, err := s.admins.Update(ctx, admin.ID, map[string]interface{}{
		"password_reset_token":   token,
		"password_reset_expires": expires,
	}); err != nil {
		return err
	}

	return s.delivery.Deliver(ctx, admin.Email, token)
}

func (s *authService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	admin, err := s.admins.GetByResetToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if _, err := s.admins.Update(ctx, admin.ID, map[string]interface{}{
		"password":               string(hashed),
		"password_reset_token":   nil,
		"password_reset_expires": nil,
	}); err != nil {
		return err
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    admin.ID,
		Action:     "auth.password_reset",
		EntityType: "admin",
		EntityID:   &admin.ID,
	})

	return nil
}

func (s *authService) Profile(ctx context.Context, adminID uint) (dto.AdminResponse, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AdminResponse{}, ErrInvalidCredentials
		}
		return dto.AdminResponse{}, err
	}
	return dto.NewAdminResponse(admin), nil
}

func (s *authService) SetProfilePicture(ctx context.Context, adminID uint, url string) (dto.AdminResponse, error) {
	admin, err := s.admins.Update(ctx, adminID, map[string]interface{}{"profile_picture_url": url})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AdminResponse{}, ErrInvalidCredentials
		}
		return dto.AdminResponse{}, err
	}
	return dto.NewAdminResponse(admin), nil
}

func (s *authService) issueTokens(adminID uint) (dto.TokenPair, error) {
	now := s.now().UTC()

	access, err := s.signToken(adminID, "admin", []byte(s.cfg.JWTSecret), now, accessTokenTTL)
	if err != nil {
		return dto.TokenPair{}, err
	}
	refresh, err := s.signToken(adminID, "refresh", []byte(s.cfg.JWTRefreshSecret), now, refreshTokenTTL)
	if err != nil {
		return dto.TokenPair{}, err
	}

	return dto.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) signToken(adminID uint, role string, secret []byte, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  adminID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
