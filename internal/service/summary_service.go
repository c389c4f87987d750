package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/period"
	"github.com/noah-isme/mealtrack-go-api/internal/repository"
)

// SummaryService produces the dashboard's time-bucketed claimed/unclaimed
// series for a filter period.
type SummaryService interface {
	Summarize(ctx context.Context, filterPeriod, value string) (dto.SummaryResponse, error)
}

type summaryService struct {
	meals  repository.MealRecordRepository
	cache  *AnalyticsCache
	logger zerolog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewSummaryService constructs the performance summary aggregator.
func NewSummaryService(meals repository.MealRecordRepository, cache *AnalyticsCache, logger zerolog.Logger) SummaryService {
	return &summaryService{
		meals:  meals,
		cache:  cache,
		logger: logger.With().Str("component", "summary_service").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/mealtrack-go-api/internal/service/summary"),
		now:    time.Now,
	}
}

func (s *summaryService) Summarize(ctx context.Context, filterPeriod, value string) (dto.SummaryResponse, error) {
	filterPeriod = strings.ToLower(strings.TrimSpace(filterPeriod))
	now := s.now().UTC()

	ctx, span := s.tracer.Start(ctx, "summary.aggregate", trace.WithAttributes(
		attribute.String("summary.filter", filterPeriod),
		attribute.String("summary.value", value),
	))
	defer span.End()

	cacheKey := fmt.Sprintf("summary:%s:%s:%s", filterPeriod, value, now.Format("2006-01-02"))
	var cached dto.SummaryResponse
	if s.cache.Get(ctx, cacheKey, &cached) {
		cached.CacheHit = true
		span.SetAttributes(attribute.Bool("summary.cache_hit", true))
		return cached, nil
	}

	buckets, err := s.buildBuckets(ctx, filterPeriod, value, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "summary_aggregation_failed")
		return dto.SummaryResponse{}, err
	}

	response := dto.SummaryResponse{
		FilterPeriod: filterPeriod,
		Value:        value,
		Buckets:      buckets,
	}
	s.cache.Set(ctx, cacheKey, response)

	return response, nil
}

func (s *summaryService) buildBuckets(ctx context.Context, filterPeriod, value string, now time.Time) ([]dto.SummaryBucket, error) {
	switch filterPeriod {
	case period.FilterDaily:
		r, err := period.Resolve(period.FilterDaily, value, now)
		if err != nil {
			return nil, err
		}
		bucket, err := s.bucketFor(ctx, r, r.Start.Format("2006-01-02"), r.Start.Format("January 2, 2006"))
		if err != nil {
			return nil, err
		}
		return []dto.SummaryBucket{bucket}, nil

	case period.FilterWeekly:
		r, err := period.Resolve(period.FilterWeekly, value, now)
		if err != nil {
			return nil, err
		}
		var buckets []dto.SummaryBucket
		for _, day := range period.Days(r) {
			bucket, err := s.bucketFor(ctx, day, day.Start.Format("2006-01-02"), day.Start.Weekday().String())
			if err != nil {
				return nil, err
			}
			buckets = append(buckets, bucket)
		}
		return buckets, nil

	case period.FilterMonthly:
		r, err := period.Resolve(period.FilterMonthly, value, now)
		if err != nil {
			return nil, err
		}
		var buckets []dto.SummaryBucket
		for i, week := range period.WeeksClipped(r) {
			bucket, err := s.bucketFor(ctx, week, fmt.Sprintf("week-%d", i+1), fmt.Sprintf("Week %d", i+1))
			if err != nil {
				return nil, err
			}
			buckets = append(buckets, bucket)
		}
		return buckets, nil

	case period.FilterSemestral:
		if value == "" {
			return s.semesterOverview(ctx, now)
		}
		r, err := period.SemesterOf(value, now)
		if err != nil {
			return nil, err
		}
		var buckets []dto.SummaryBucket
		for _, month := range period.Months(r) {
			bucket, err := s.bucketFor(ctx, month, month.Start.Format("2006-01"), month.Start.Format("January 2006"))
			if err != nil {
				return nil, err
			}
			buckets = append(buckets, bucket)
		}
		return buckets, nil

	default:
		return nil, fmt.Errorf("%w: unknown period type %q", period.ErrInvalidPeriod, filterPeriod)
	}
}

// semesterOverview returns one bucket per semester of the current academic
// year.
func (s *summaryService) semesterOverview(ctx context.Context, now time.Time) ([]dto.SummaryBucket, error) {
	var buckets []dto.SummaryBucket
	for _, semester := range []string{period.SemesterFirst, period.SemesterSecond} {
		r, err := period.SemesterOf(semester, now)
		if err != nil {
			return nil, err
		}
		bucket, err := s.bucketFor(ctx, r, semester, semester+" Semester")
		if err != nil {
			return nil, err
		}
		buckets = append(buckets, bucket)
	}
	return buckets, nil
}

func (s *summaryService) bucketFor(ctx context.Context, r period.Range, id, name string) (dto.SummaryBucket, error) {
	counts, err := s.meals.CountStatuses(ctx, r.Start, r.End)
	if err != nil {
		return dto.SummaryBucket{}, err
	}
	return dto.SummaryBucket{
		ID:        id,
		Name:      name,
		Claimed:   counts.Claimed,
		Unclaimed: counts.Unclaimed,
		Allotted:  counts.Claimed + counts.Unclaimed,
	}, nil
}
