package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/mealtrack-go-api/internal/models"
	"github.com/noah-isme/mealtrack-go-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService provisions reference data and the first operator account.
type SeedService interface {
	SeedPrograms(ctx context.Context, token string, items []models.Program) (int64, error)
	SeedSchedules(ctx context.Context, token string, items []models.Schedule) (int64, error)
	SeedAdmin(ctx context.Context, token, name, email, password string) error
}

type seedService struct {
	programs  repository.ProgramRepository
	schedules repository.ScheduleRepository
	admins    repository.AdminRepository
	enabled   bool
	token     string
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(
	programs repository.ProgramRepository,
	schedules repository.ScheduleRepository,
	admins repository.AdminRepository,
	enabled bool,
	token string,
	logger zerolog.Logger,
) SeedService {
	return &seedService{
		programs:  programs,
		schedules: schedules,
		admins:    admins,
		enabled:   enabled,
		token:     token,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedPrograms(ctx context.Context, token string, items []models.Program) (int64, error) {
	if err := s.authorize(token); err != nil {
		return 0, err
	}

	var created int64
	for i := range items {
		items[i].Name = strings.ToUpper(strings.TrimSpace(items[i].Name))
		if items[i].Name == "" {
			continue
		}
		if _, err := s.programs.GetByName(ctx, items[i].Name); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}
		if err := s.programs.Create(ctx, &items[i]); err != nil {
			return created, err
		}
		created++
	}

	s.logger.Info().Int64("created", created).Msg("programs seeded")
	return created, nil
}

func (s *seedService) SeedSchedules(ctx context.Context, token string, items []models.Schedule) (int64, error) {
	if err := s.authorize(token); err != nil {
		return 0, err
	}

	var affected int64
	for i := range items {
		if !models.IsValidWeekday(items[i].DayOfWeek) {
			continue
		}
		if err := s.schedules.Upsert(ctx, &items[i]); err != nil {
			return affected, err
		}
		affected++
	}

	s.logger.Info().Int64("affected", affected).Msg("schedules seeded")
	return affected, nil
}

// SeedAdmin creates the first operator account. It refuses to run once any
// admin exists; further accounts come from the console.
func (s *seedService) SeedAdmin(ctx context.Context, token, name, email, password string) error {
	if err := s.authorize(token); err != nil {
		return err
	}

	count, err := s.admins.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("admin account already provisioned")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.Admin{
		Name:     strings.TrimSpace(name),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: string(hashed),
	}
	if err := s.admins.Create(ctx, &admin); err != nil {
		return err
	}

	s.logger.Info().Str("email", admin.Email).Msg("first admin seeded")
	return nil
}

func (s *seedService) authorize(token string) error {
	if !s.enabled {
		return ErrSeedDisabled
	}
	expected := strings.TrimSpace(s.token)
	if expected == "" || !constantTimeCompare(expected, strings.TrimSpace(token)) {
		return ErrSeedUnauthorized
	}
	return nil
}

func constantTimeCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	mismatch := byte(0)
	for i := 0; i < len(a); i++ {
		mismatch |= a[i] ^ b[i]
	}
	return mismatch == 0
}
