package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/models"
	"github.com/noah-isme/mealtrack-go-api/internal/repository"
)

// ErrScheduleNotFound indicates the schedule row does not exist.
var ErrScheduleNotFound = errors.New("schedule not found")

// ScheduleService manages the weekly eligibility calendar.
type ScheduleService interface {
	Upsert(ctx context.Context, req dto.ScheduleUpsertRequest, actorID uint) (dto.ScheduleResponse, error)
	List(ctx context.Context, program string) ([]dto.ScheduleResponse, error)
	Delete(ctx context.Context, id uint, actorID uint) error
}

type scheduleService struct {
	schedules repository.ScheduleRepository
	programs  repository.ProgramRepository
	validate  *validator.Validate
	activity  ActivityRecorder
	cache     *AnalyticsCache
	logger    zerolog.Logger
}

// NewScheduleService constructs the schedule admin service.
func NewScheduleService(
	schedules repository.ScheduleRepository,
	programs repository.ProgramRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	cache *AnalyticsCache,
	logger zerolog.Logger,
) ScheduleService {
	return &scheduleService{
		schedules: schedules,
		programs:  programs,
		validate:  validate,
		activity:  activity,
		cache:     cache,
		logger:    logger.With().Str("component", "schedule_service").Logger(),
	}
}

func (s *scheduleService) Upsert(ctx context.Context, req dto.ScheduleUpsertRequest, actorID uint) (dto.ScheduleResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.ScheduleResponse{}, err
	}

	if _, err := s.programs.GetByName(ctx, req.Program); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScheduleResponse{}, fmt.Errorf("%w: %s", ErrUnknownProgram, req.Program)
		}
		return dto.ScheduleResponse{}, err
	}

	if req.YearLevel > models.MaxYearLevelFor(req.Program) {
		return dto.ScheduleResponse{}, fmt.Errorf("%w: %s allows years 1-%d", ErrYearLevelOutOfRange, req.Program, models.MaxYearLevelFor(req.Program))
	}

	schedule := models.Schedule{
		Program:    req.Program,
		YearLevel:  req.YearLevel,
		DayOfWeek:  req.DayOfWeek,
		IsEligible: req.IsEligible,
	}
	if err := s.schedules.Upsert(ctx, &schedule); err != nil {
		return dto.ScheduleResponse{}, err
	}

	s.cache.Bump(ctx)
	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actorID,
		Action:     "schedule.upsert",
		EntityType: "schedule",
		EntityID:   &schedule.ID,
		Metadata: map[string]interface{}{
			"program":     schedule.Program,
			"year_level":  schedule.YearLevel,
			"day_of_week": schedule.DayOfWeek,
			"is_eligible": schedule.IsEligible,
		},
	})

	return dto.NewScheduleResponse(schedule), nil
}

func (s *scheduleService) List(ctx context.Context, program string) ([]dto.ScheduleResponse, error) {
	schedules, err := s.schedules.List(ctx, program)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ScheduleResponse, 0, len(schedules))
	for _, schedule := range schedules {
		responses = append(responses, dto.NewScheduleResponse(schedule))
	}
	return responses, nil
}

func (s *scheduleService) Delete(ctx context.Context, id uint, actorID uint) error {
	if err := s.schedules.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotFound
		}
		return err
	}

	s.cache.Bump(ctx)
	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actorID,
		Action:     "schedule.delete",
		EntityType: "schedule",
		EntityID:   &id,
	})

	return nil
}
