package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/period"
	"github.com/noah-isme/mealtrack-go-api/internal/repository"
)

// Grouping modes for the program breakdown.
const (
	GroupByProgram   = "program"
	GroupByYearLevel = "yearLevel"
)

// BreakdownService groups one resolved period's claimed/unclaimed outcomes by
// program, or by year level within a single program.
type BreakdownService interface {
	Breakdown(ctx context.Context, filterPeriod, value, program, groupBy string) (dto.BreakdownResponse, error)
}

type breakdownService struct {
	meals  repository.MealRecordRepository
	logger zerolog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewBreakdownService constructs the program breakdown aggregator.
func NewBreakdownService(meals repository.MealRecordRepository, logger zerolog.Logger) BreakdownService {
	return &breakdownService{
		meals:  meals,
		logger: logger.With().Str("component", "breakdown_service").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/mealtrack-go-api/internal/service/breakdown"),
		now:    time.Now,
	}
}

func (s *breakdownService) Breakdown(ctx context.Context, filterPeriod, value, program, groupBy string) (dto.BreakdownResponse, error) {
	if groupBy == "" {
		groupBy = GroupByProgram
	}
	if groupBy != GroupByProgram && groupBy != GroupByYearLevel {
		return dto.BreakdownResponse{}, fmt.Errorf("%w: groupBy must be %q or %q", period.ErrInvalidPeriod, GroupByProgram, GroupByYearLevel)
	}
	if groupBy == GroupByYearLevel && program == "" {
		return dto.BreakdownResponse{}, fmt.Errorf("%w: grouping by year level requires a program", period.ErrInvalidPeriod)
	}

	r, err := period.Resolve(filterPeriod, value, s.now().UTC())
	if err != nil {
		return dto.BreakdownResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "breakdown.aggregate", trace.WithAttributes(
		attribute.String("breakdown.filter", filterPeriod),
		attribute.String("breakdown.group_by", groupBy),
	))
	defer span.End()

	var groups []repository.CohortCounts
	if groupBy == GroupByYearLevel {
		groups, err = s.meals.GroupByYearLevel(ctx, r.Start, r.End, program)
	} else {
		groups, err = s.meals.GroupByProgram(ctx, r.Start, r.End)
		if program != "" {
			filtered := groups[:0]
			for _, group := range groups {
				if group.Name == program {
					filtered = append(filtered, group)
				}
			}
			groups = filtered
		}
	}
	if err != nil {
		span.RecordError(err)
		return dto.BreakdownResponse{}, err
	}

	rows := make([]dto.BreakdownRow, 0, len(groups))
	for _, group := range groups {
		name := group.Name
		if groupBy == GroupByYearLevel {
			name = "Year " + strings.TrimSpace(name)
		}
		rows = append(rows, dto.BreakdownRow{
			Name:      name,
			Claimed:   group.Claimed,
			Unclaimed: group.Unclaimed,
			Allotted:  group.Claimed + group.Unclaimed,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	span.SetAttributes(attribute.Int("breakdown.groups", len(rows)))

	return dto.BreakdownResponse{
		FilterPeriod: filterPeriod,
		Value:        value,
		Program:      program,
		GroupBy:      groupBy,
		Rows:         rows,
	}, nil
}
