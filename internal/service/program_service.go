package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/models"
	"github.com/noah-isme/mealtrack-go-api/internal/repository"
)

var (
	// ErrProgramNotFound indicates the program does not exist.
	ErrProgramNotFound = errors.New("program not found")
	// ErrProgramExists indicates the name is already registered.
	ErrProgramExists = errors.New("program already exists")
	// ErrProgramInUse indicates students still reference the program.
	ErrProgramInUse = errors.New("program still has enrolled students")
)

// ProgramService manages the academic program registry.
type ProgramService interface {
	Create(ctx context.Context, req dto.ProgramCreateRequest, actorID uint) (dto.ProgramResponse, error)
	List(ctx context.Context) ([]dto.ProgramResponse, error)
	Update(ctx context.Context, id uint, req dto.ProgramUpdateRequest, actorID uint) (dto.ProgramResponse, error)
	Delete(ctx context.Context, id uint, actorID uint) error
}

type programService struct {
	programs  repository.ProgramRepository
	students  repository.StudentRepository
	validate  *validator.Validate
	activity  ActivityRecorder
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewProgramService constructs the program registry service.
func NewProgramService(
	programs repository.ProgramRepository,
	students repository.StudentRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	logger zerolog.Logger,
) ProgramService {
	return &programService{
		programs:  programs,
		students:  students,
		validate:  validate,
		activity:  activity,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "program_service").Logger(),
	}
}

func (s *programService) Create(ctx context.Context, req dto.ProgramCreateRequest, actorID uint) (dto.ProgramResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.ProgramResponse{}, err
	}

	program := models.Program{
		Name:        strings.ToUpper(strings.TrimSpace(req.Name)),
		Description: strings.TrimSpace(s.sanitizer.Sanitize(req.Description)),
		Color:       req.Color,
	}

	if err := s.programs.Create(ctx, &program); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ProgramResponse{}, ErrProgramExists
		}
		return dto.ProgramResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actorID,
		Action:     "program.create",
		EntityType: "program",
		EntityID:   &program.ID,
		Metadata:   map[string]interface{}{"name": program.Name},
	})

	return dto.NewProgramResponse(program), nil
}

func (s *programService) List(ctx context.Context) ([]dto.ProgramResponse, error) {
	programs, err := s.programs.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ProgramResponse, 0, len(programs))
	for _, program := range programs {
		responses = append(responses, dto.NewProgramResponse(program))
	}
	return responses, nil
}

func (s *programService) Update(ctx context.Context, id uint, req dto.ProgramUpdateRequest, actorID uint) (dto.ProgramResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.ProgramResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(s.sanitizer.Sanitize(*req.Description))
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if len(updates) == 0 {
		program, err := s.programs.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ProgramResponse{}, ErrProgramNotFound
			}
			return dto.ProgramResponse{}, err
		}
		return dto.NewProgramResponse(program), nil
	}

	program, err := s.programs.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgramResponse{}, ErrProgramNotFound
		}
		return dto.ProgramResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actorID,
		Action:     "program.update",
		EntityType: "program",
		EntityID:   &id,
	})

	return dto.NewProgramResponse(program), nil
}

func (s *programService) Delete(ctx context.Context, id uint, actorID uint) error {
	program, err := s.programs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgramNotFound
		}
		return err
	}

	enrolled, err := s.students.CountByProgram(ctx, program.Name)
	if err != nil {
		return err
	}
	if enrolled > 0 {
		return ErrProgramInUse
	}

	if err := s.programs.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgramNotFound
		}
		return err
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actorID,
		Action:     "program.delete",
		EntityType: "program",
		EntityID:   &id,
		Metadata:   map[string]interface{}{"name": program.Name},
	})

	return nil
}
