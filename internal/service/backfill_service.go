package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/models"
	"github.com/noah-isme/mealtrack-go-api/internal/period"
	"github.com/noah-isme/mealtrack-go-api/internal/repository"
)

// BackfillService creates ELIGIBLE_BUT_NOT_CLAIMED records for students whose
// cohort was scheduled on a date but who never checked in. Safe to re-run:
// students with any record that day are excluded.
type BackfillService interface {
	GenerateUnclaimed(ctx context.Context, date string) (dto.BackfillResponse, error)
}

type backfillService struct {
	students  repository.StudentRepository
	schedules repository.ScheduleRepository
	meals     repository.MealRecordRepository
	cache     *AnalyticsCache
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewBackfillService constructs the unclaimed backfill job.
func NewBackfillService(
	students repository.StudentRepository,
	schedules repository.ScheduleRepository,
	meals repository.MealRecordRepository,
	cache *AnalyticsCache,
	logger zerolog.Logger,
) BackfillService {
	return &backfillService{
		students:  students,
		schedules: schedules,
		meals:     meals,
		cache:     cache,
		logger:    logger.With().Str("component", "backfill_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/mealtrack-go-api/internal/service/backfill"),
	}
}

func (s *backfillService) GenerateUnclaimed(ctx context.Context, date string) (dto.BackfillResponse, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return dto.BackfillResponse{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", period.ErrInvalidPeriod, date)
	}

	dayRange := period.DayOf(day)
	weekday := dayRange.Start.Weekday().String()

	ctx, span := s.tracer.Start(ctx, "backfill.generate", trace.WithAttributes(
		attribute.String("backfill.date", date),
		attribute.String("backfill.weekday", weekday),
	))
	defer span.End()

	cohorts, err := s.schedules.ListEligibleByDay(ctx, weekday)
	if err != nil {
		span.RecordError(err)
		return dto.BackfillResponse{}, err
	}
	if len(cohorts) == 0 {
		return dto.BackfillResponse{
			CreatedCount: 0,
			Message:      fmt.Sprintf("no cohorts were scheduled eligible on %s (%s)", date, weekday),
		}, nil
	}

	eligible, err := s.students.ListByCohorts(ctx, cohorts)
	if err != nil {
		span.RecordError(err)
		return dto.BackfillResponse{}, err
	}

	recorded, err := s.meals.StudentIDsWithRecordBetween(ctx, dayRange.Start, dayRange.End)
	if err != nil {
		span.RecordError(err)
		return dto.BackfillResponse{}, err
	}
	seen := make(map[uint]struct{}, len(recorded))
	for _, id := range recorded {
		seen[id] = struct{}{}
	}

	var records []models.MealRecord
	for _, student := range eligible {
		if _, ok := seen[student.ID]; ok {
			continue
		}
		id := student.ID
		records = append(records, models.MealRecord{
			StudentID:               &id,
			StudentIDNumber:         student.StudentIDNumber,
			ProgramAtTimeOfRecord:   student.Program,
			YearLevelAtTimeOfRecord: student.YearLevel,
			DateChecked:             dayRange.Start,
			Status:                  models.MealStatusUnclaimed,
		})
	}

	created, err := s.meals.InsertBatch(ctx, records)
	if err != nil {
		span.RecordError(err)
		return dto.BackfillResponse{}, err
	}

	if created > 0 {
		s.cache.Bump(ctx)
	}

	span.SetAttributes(attribute.Int64("backfill.created", created))
	s.logger.Info().Str("date", date).Int64("created", created).Int("eligible_students", len(eligible)).Msg("unclaimed backfill completed")

	return dto.BackfillResponse{
		CreatedCount: created,
		Message:      fmt.Sprintf("created %d unclaimed records for %s", created, date),
	}, nil
}
