package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/mealtrack-go-api/internal/models"
	"github.com/noah-isme/mealtrack-go-api/internal/repository"
)

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	ActorID    uint
	Action     string
	EntityType string
	EntityID   *uint
	Metadata   map[string]interface{}
}

// ActivityRecorder records admin-console mutations. Recording is best-effort:
// a failed audit write never fails the mutation it describes.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry)
}

// ActivityService records and lists the admin audit trail.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the audit trail service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) {
	if entry.ActorID == 0 || entry.Action == "" {
		return
	}

	model := models.ActivityLog{
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   datatypes.JSONMap(entry.Metadata),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Warn().Err(err).Str("action", entry.Action).Msg("failed to record activity entry")
	}
}

func (s *activityService) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	return s.repo.List(ctx, filter)
}
