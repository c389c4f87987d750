package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/models"
	"github.com/noah-isme/mealtrack-go-api/internal/observability"
	"github.com/noah-isme/mealtrack-go-api/internal/repository"
)

// ErrStudentNotFound indicates the scanned ID number matches no student. The
// failed lookup is still recorded as an audit event before this is returned.
var ErrStudentNotFound = errors.New("student not found")

const placeholderAvatarURL = "/assets/avatar-placeholder.png"

// ScheduleDecision is the tri-state answer of a schedule lookup. An absent
// row is Unconfigured rather than NotEligible so admins can tell a forgotten
// schedule from a deliberate exclusion.
type ScheduleDecision int

const (
	ScheduleUnconfigured ScheduleDecision = iota
	ScheduleNotEligible
	ScheduleEligible
)

// ScheduleLookup answers whether a cohort is scheduled to eat on a weekday.
type ScheduleLookup interface {
	Decide(ctx context.Context, program string, yearLevel int, dayOfWeek string) (ScheduleDecision, error)
}

type scheduleLookup struct {
	repo repository.ScheduleRepository
}

// NewScheduleLookup builds a ScheduleLookup over the schedule table.
func NewScheduleLookup(repo repository.ScheduleRepository) ScheduleLookup {
	return &scheduleLookup{repo: repo}
}

func (l *scheduleLookup) Decide(ctx context.Context, program string, yearLevel int, dayOfWeek string) (ScheduleDecision, error) {
	row, err := l.repo.Find(ctx, program, yearLevel, dayOfWeek)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ScheduleUnconfigured, nil
		}
		return ScheduleUnconfigured, err
	}
	if row.IsEligible {
		return ScheduleEligible, nil
	}
	return ScheduleNotEligible, nil
}

// AvatarResolver looks up a student's profile photo from external storage.
// Lookups are best-effort: any failure degrades to the stored URL or a
// placeholder and never fails the eligibility check.
type AvatarResolver interface {
	ResolveAvatar(ctx context.Context, studentIDNumber string) (string, error)
}

// ClaimPublisher fans a claim event out to live dashboards and brokers.
type ClaimPublisher interface {
	PublishClaim(ctx context.Context, event dto.ClaimEvent)
}

// EligibilityService decides whether a scanned student receives a meal and
// appends exactly one record per decision. A re-scan on a day already claimed
// writes nothing.
type EligibilityService interface {
	Check(ctx context.Context, studentIDNumber string) (dto.EligibilityCheckResponse, error)
}

type eligibilityService struct {
	students repository.StudentRepository
	meals    repository.MealRecordRepository
	lookup   ScheduleLookup
	avatars  AvatarResolver
	feed     ClaimPublisher
	cache    *AnalyticsCache
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewEligibilityService constructs the eligibility evaluator. avatars and
// feed may be nil.
func NewEligibilityService(
	students repository.StudentRepository,
	meals repository.MealRecordRepository,
	lookup ScheduleLookup,
	avatars AvatarResolver,
	feed ClaimPublisher,
	cache *AnalyticsCache,
	logger zerolog.Logger,
) EligibilityService {
	return &eligibilityService{
		students: students,
		meals:    meals,
		lookup:   lookup,
		avatars:  avatars,
		feed:     feed,
		cache:    cache,
		logger:   logger.With().Str("component", "eligibility_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/mealtrack-go-api/internal/service/eligibility"),
		now:      time.Now,
	}
}

func (s *eligibilityService) Check(ctx context.Context, studentIDNumber string) (dto.EligibilityCheckResponse, error) {
	now := s.now().UTC()
	weekday := now.Weekday().String()

	ctx, span := s.tracer.Start(ctx, "eligibility.check", trace.WithAttributes(
		attribute.String("checkin.student_id_number", studentIDNumber),
		attribute.String("checkin.weekday", weekday),
	))
	defer span.End()

	student, err := s.students.GetByStudentIDNumber(ctx, studentIDNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.recordUnknownStudent(ctx, studentIDNumber, now)
		}
		span.RecordError(err)
		return dto.EligibilityCheckResponse{}, err
	}

	info := s.studentInfo(ctx, student)

	decision, err := s.lookup.Decide(ctx, student.Program, student.YearLevel, weekday)
	if err != nil {
		span.RecordError(err)
		return dto.EligibilityCheckResponse{}, err
	}

	if decision == ScheduleEligible {
		return s.recordClaim(ctx, student, info, now)
	}

	reason := fmt.Sprintf("%s year %d is not scheduled for meals on %s", student.Program, student.YearLevel, weekday)
	if decision == ScheduleUnconfigured {
		reason = fmt.Sprintf("no meal schedule configured for %s year %d on %s", student.Program, student.YearLevel, weekday)
	}

	record := models.MealRecord{
		StudentID:               &student.ID,
		StudentIDNumber:         student.StudentIDNumber,
		ProgramAtTimeOfRecord:   student.Program,
		YearLevelAtTimeOfRecord: student.YearLevel,
		DateChecked:             now,
		Status:                  models.MealStatusNotScheduled,
	}
	if err := s.meals.Insert(ctx, &record); err != nil {
		span.RecordError(err)
		return dto.EligibilityCheckResponse{}, err
	}

	observability.Checkins().WithLabelValues(models.MealStatusNotScheduled).Inc()
	span.SetAttributes(attribute.String("checkin.status", models.MealStatusNotScheduled))

	return dto.EligibilityCheckResponse{
		Status:  dto.CheckStatusNotScheduled,
		Student: &info,
		Reason:  reason,
	}, nil
}

// recordUnknownStudent is the one place failed lookups are logged as data for
// audit purposes.
func (s *eligibilityService) recordUnknownStudent(ctx context.Context, studentIDNumber string, now time.Time) (dto.EligibilityCheckResponse, error) {
	record := models.MealRecord{
		StudentIDNumber: studentIDNumber,
		DateChecked:     now,
		Status:          models.MealStatusStudentNotFound,
	}
	if err := s.meals.Insert(ctx, &record); err != nil {
		s.logger.Warn().Err(err).Str("student_id_number", studentIDNumber).Msg("failed to record unknown-student check")
	}

	observability.Checkins().WithLabelValues(models.MealStatusStudentNotFound).Inc()
	s.logger.Info().Str("student_id_number", studentIDNumber).Msg("check-in for unknown student id")

	return dto.EligibilityCheckResponse{}, ErrStudentNotFound
}

func (s *eligibilityService) recordClaim(ctx context.Context, student models.Student, info dto.StudentInfo, now time.Time) (dto.EligibilityCheckResponse, error) {
	record := models.MealRecord{
		StudentID:               &student.ID,
		StudentIDNumber:         student.StudentIDNumber,
		ProgramAtTimeOfRecord:   student.Program,
		YearLevelAtTimeOfRecord: student.YearLevel,
		DateChecked:             now,
		Status:                  models.MealStatusClaimed,
	}

	created, err := s.meals.InsertClaim(ctx, &record)
	if err != nil {
		return dto.EligibilityCheckResponse{}, err
	}

	if !created {
		// The unique (student, day) index rejected the insert: the student
		// already claimed today, possibly from a racing re-scan.
		observability.Checkins().WithLabelValues("ALREADY_CLAIMED").Inc()
		return dto.EligibilityCheckResponse{
			Status:  dto.CheckStatusAlreadyClaimed,
			Student: &info,
			Reason:  "meal already claimed today",
		}, nil
	}

	observability.Checkins().WithLabelValues(models.MealStatusClaimed).Inc()
	s.cache.Bump(ctx)

	if s.feed != nil {
		s.feed.PublishClaim(ctx, dto.ClaimEvent{
			StudentIDNumber: student.StudentIDNumber,
			Name:            student.Name,
			Program:         student.Program,
			YearLevel:       student.YearLevel,
			ClaimedAt:       now.Format(time.RFC3339),
		})
	}

	return dto.EligibilityCheckResponse{
		Status:  dto.CheckStatusClaimed,
		Student: &info,
	}, nil
}

func (s *eligibilityService) studentInfo(ctx context.Context, student models.Student) dto.StudentInfo {
	avatar := student.ProfilePictureURL
	if s.avatars != nil {
		resolved, err := s.avatars.ResolveAvatar(ctx, student.StudentIDNumber)
		if err != nil {
			s.logger.Debug().Err(err).Str("student_id_number", student.StudentIDNumber).Msg("avatar lookup failed, using fallback")
		} else if resolved != "" {
			avatar = resolved
		}
	}
	if avatar == "" {
		avatar = placeholderAvatarURL
	}

	return dto.StudentInfo{
		StudentIDNumber: student.StudentIDNumber,
		Name:            student.Name,
		Program:         student.Program,
		YearLevel:       student.YearLevel,
		Section:         student.Section,
		AvatarURL:       avatar,
	}
}
