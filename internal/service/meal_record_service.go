package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/period"
	"github.com/noah-isme/mealtrack-go-api/internal/repository"
)

// MealRecordService exposes read-only access to the meal ledger for the
// admin console. The ledger itself is append-only; nothing here mutates it.
type MealRecordService interface {
	List(ctx context.Context, req dto.MealRecordListRequest) (dto.MealRecordListResponse, error)
}

type mealRecordService struct {
	meals  repository.MealRecordRepository
	logger zerolog.Logger
}

// NewMealRecordService constructs the ledger query service.
func NewMealRecordService(meals repository.MealRecordRepository, logger zerolog.Logger) MealRecordService {
	return &mealRecordService{
		meals:  meals,
		logger: logger.With().Str("component", "meal_record_service").Logger(),
	}
}

func (s *mealRecordService) List(ctx context.Context, req dto.MealRecordListRequest) (dto.MealRecordListResponse, error) {
	filter := repository.MealRecordFilter{
		StudentIDNumber: req.StudentIDNumber,
		Status:          req.Status,
		Page:            req.Page,
		PageSize:        req.PageSize,
	}

	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return dto.MealRecordListResponse{}, fmt.Errorf("%w: invalid from date %q", period.ErrInvalidPeriod, req.From)
		}
		start := period.StartOfDay(from)
		filter.From = &start
	}
	if req.To != "" {
		to, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return dto.MealRecordListResponse{}, fmt.Errorf("%w: invalid to date %q", period.ErrInvalidPeriod, req.To)
		}
		end := period.EndOfDay(to)
		filter.To = &end
	}

	records, total, err := s.meals.List(ctx, filter)
	if err != nil {
		return dto.MealRecordListResponse{}, err
	}

	items := make([]dto.MealRecordResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.NewMealRecordResponse(record))
	}

	return dto.MealRecordListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}
