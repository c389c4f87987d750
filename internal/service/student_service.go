package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/models"
	"github.com/noah-isme/mealtrack-go-api/internal/repository"
)

var (
	// ErrUnknownProgram indicates the program is not in the registry.
	ErrUnknownProgram = errors.New("unknown program")
	// ErrYearLevelOutOfRange indicates the year level exceeds what the
	// program allows (ACT is a two-year track).
	ErrYearLevelOutOfRange = errors.New("year level out of range for program")
	// ErrStudentExists indicates a duplicate ID number or email.
	ErrStudentExists = errors.New("student already exists")
)

// StudentService manages student records from the admin console.
type StudentService interface {
	Create(ctx context.Context, req dto.StudentCreateRequest, actorID uint) (dto.StudentResponse, error)
	BulkImport(ctx context.Context, req dto.StudentBulkImportRequest, actorID uint) (dto.StudentBulkImportResponse, error)
	Get(ctx context.Context, id uint) (dto.StudentResponse, error)
	List(ctx context.Context, req dto.StudentListRequest) (dto.StudentListResponse, error)
	Update(ctx context.Context, id uint, req dto.StudentUpdateRequest, actorID uint) (dto.StudentResponse, error)
	Delete(ctx context.Context, id uint, actorID uint) error
	SetProfilePicture(ctx context.Context, id uint, url string) (dto.StudentResponse, error)
}

type studentService struct {
	students    repository.StudentRepository
	programs    repository.ProgramRepository
	validate    *validator.Validate
	activity    ActivityRecorder
	cache       *AnalyticsCache
	emailDomain string
	logger      zerolog.Logger
}

// NewStudentService constructs the student admin service. emailDomain is the
// domain appended to auto-derived student emails.
func NewStudentService(
	students repository.StudentRepository,
	programs repository.ProgramRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	cache *AnalyticsCache,
	emailDomain string,
	logger zerolog.Logger,
) StudentService {
	return &studentService{
		students:    students,
		programs:    programs,
		validate:    validate,
		activity:    activity,
		cache:       cache,
		emailDomain: emailDomain,
		logger:      logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Create(ctx context.Context, req dto.StudentCreateRequest, actorID uint) (dto.StudentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.buildStudent(ctx, req)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	if err := s.students.Create(ctx, &student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.StudentResponse{}, ErrStudentExists
		}
		return dto.StudentResponse{}, err
	}

	s.cache.Bump(ctx)
	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actorID,
		Action:     "student.create",
		EntityType: "student",
		EntityID:   &student.ID,
		Metadata:   map[string]interface{}{"student_id_number": student.StudentIDNumber},
	})

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) BulkImport(ctx context.Context, req dto.StudentBulkImportRequest, actorID uint) (dto.StudentBulkImportResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.StudentBulkImportResponse{}, err
	}

	students := make([]models.Student, 0, len(req.Students))
	for _, row := range req.Students {
		student, err := s.buildStudent(ctx, row)
		if err != nil {
			return dto.StudentBulkImportResponse{}, fmt.Errorf("row %q: %w", row.StudentIDNumber, err)
		}
		students = append(students, student)
	}

	created, err := s.students.CreateBatch(ctx, students)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.StudentBulkImportResponse{}, ErrStudentExists
		}
		return dto.StudentBulkImportResponse{}, err
	}

	s.cache.Bump(ctx)
	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actorID,
		Action:     "student.bulk_import",
		EntityType: "student",
		Metadata:   map[string]interface{}{"created_count": created},
	})

	return dto.StudentBulkImportResponse{CreatedCount: created}, nil
}

// buildStudent validates domain rules shared by create and import and
// derives a unique email from the name when none was supplied.
func (s *studentService) buildStudent(ctx context.Context, req dto.StudentCreateRequest) (models.Student, error) {
	if _, err := s.programs.GetByName(ctx, req.Program); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, fmt.Errorf("%w: %s", ErrUnknownProgram, req.Program)
		}
		return models.Student{}, err
	}

	if req.YearLevel > models.MaxYearLevelFor(req.Program) {
		return models.Student{}, fmt.Errorf("%w: %s allows years 1-%d", ErrYearLevelOutOfRange, req.Program, models.MaxYearLevelFor(req.Program))
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		email = deriveEmail(req.Name, s.emailDomain)
	}

	var emailPtr *string
	if email != "" {
		emailPtr = &email
	}

	return models.Student{
		StudentIDNumber: strings.TrimSpace(req.StudentIDNumber),
		Name:            strings.TrimSpace(req.Name),
		Program:         req.Program,
		YearLevel:       req.YearLevel,
		Section:         strings.TrimSpace(req.Section),
		Email:           emailPtr,
	}, nil
}

func (s *studentService) Get(ctx context.Context, id uint) (dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) List(ctx context.Context, req dto.StudentListRequest) (dto.StudentListResponse, error) {
	students, total, err := s.students.List(ctx, repository.StudentFilter{
		Search:    req.Search,
		Program:   req.Program,
		YearLevel: req.YearLevel,
		Section:   req.Section,
		Sort:      req.Sort,
		Page:      req.Page,
		PageSize:  req.PageSize,
	})
	if err != nil {
		return dto.StudentListResponse{}, err
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		items = append(items, dto.NewStudentResponse(student))
	}

	return dto.StudentListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *studentService) Update(ctx context.Context, id uint, req dto.StudentUpdateRequest, actorID uint) (dto.StudentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	existing, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	program := existing.Program
	if req.Program != nil {
		program = *req.Program
		if _, err := s.programs.GetByName(ctx, program); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.StudentResponse{}, fmt.Errorf("%w: %s", ErrUnknownProgram, program)
			}
			return dto.StudentResponse{}, err
		}
	}

	yearLevel := existing.YearLevel
	if req.YearLevel != nil {
		yearLevel = *req.YearLevel
	}
	if yearLevel > models.MaxYearLevelFor(program) {
		return dto.StudentResponse{}, fmt.Errorf("%w: %s allows years 1-%d", ErrYearLevelOutOfRange, program, models.MaxYearLevelFor(program))
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Program != nil {
		updates["program"] = program
	}
	if req.YearLevel != nil {
		updates["year_level"] = yearLevel
	}
	if req.Section != nil {
		updates["section"] = strings.TrimSpace(*req.Section)
	}
	if req.Email != nil {
		updates["email"] = strings.TrimSpace(strings.ToLower(*req.Email))
	}
	if len(updates) == 0 {
		return dto.NewStudentResponse(existing), nil
	}

	student, err := s.students.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.StudentResponse{}, ErrStudentExists
		}
		return dto.StudentResponse{}, err
	}

	s.cache.Bump(ctx)
	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actorID,
		Action:     "student.update",
		EntityType: "student",
		EntityID:   &id,
		Metadata:   map[string]interface{}{"fields": updateKeys(updates)},
	})

	return dto.NewStudentResponse(student), nil
}

// Delete soft-deletes the student. Meal records keep their denormalized
// program and year level, so history survives the deletion.
func (s *studentService) Delete(ctx context.Context, id uint, actorID uint) error {
	if err := s.students.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	s.cache.Bump(ctx)
	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actorID,
		Action:     "student.delete",
		EntityType: "student",
		EntityID:   &id,
	})

	return nil
}

func (s *studentService) SetProfilePicture(ctx context.Context, id uint, url string) (dto.StudentResponse, error) {
	student, err := s.students.Update(ctx, id, map[string]interface{}{"profile_picture_url": url})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}
	return dto.NewStudentResponse(student), nil
}

// deriveEmail builds a deterministic address from the student's name, e.g.
// "Juan Dela Cruz" -> "juan.delacruz@<domain>".
func deriveEmail(name, domain string) string {
	if domain == "" {
		return ""
	}

	parts := strings.Fields(strings.ToLower(name))
	if len(parts) == 0 {
		return ""
	}

	first := sanitizeEmailPart(parts[0])
	last := sanitizeEmailPart(strings.Join(parts[1:], ""))

	local := first
	if last != "" {
		local = first + "." + last
	}
	if local == "" {
		return ""
	}

	return local + "@" + domain
}

func sanitizeEmailPart(part string) string {
	var b strings.Builder
	for _, r := range part {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func updateKeys(updates map[string]interface{}) []string {
	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}
	return keys
}
