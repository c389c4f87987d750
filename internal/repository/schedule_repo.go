package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/mealtrack-go-api/internal/models"
)

// ScheduleRepository manages the weekly eligibility calendar.
type ScheduleRepository interface {
	// Upsert creates or replaces the row for the (program, yearLevel,
	// dayOfWeek) triple. A conflict on the unique triple updates the
	// eligibility flag in place.
	Upsert(ctx context.Context, schedule *models.Schedule) error
	// Find returns the unique row for the triple, or gorm.ErrRecordNotFound
	// when the cohort was never configured for that day.
	Find(ctx context.Context, program string, yearLevel int, dayOfWeek string) (models.Schedule, error)
	List(ctx context.Context, program string) ([]models.Schedule, error)
	ListEligibleByDay(ctx context.Context, dayOfWeek string) ([]models.Schedule, error)
	Delete(ctx context.Context, id uint) error
}

type scheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository constructs a schedule repository.
func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) Upsert(ctx context.Context, schedule *models.Schedule) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "program"}, {Name: "year_level"}, {Name: "day_of_week"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_eligible", "updated_at"}),
	}).Create(schedule).Error
}

func (r *scheduleRepository) Find(ctx context.Context, program string, yearLevel int, dayOfWeek string) (models.Schedule, error) {
	var schedule models.Schedule
	err := r.db.WithContext(ctx).
		Where("program = ? AND year_level = ? AND day_of_week = ?", program, yearLevel, dayOfWeek).
		First(&schedule).Error
	if err != nil {
		return models.Schedule{}, err
	}
	return schedule, nil
}

func (r *scheduleRepository) List(ctx context.Context, program string) ([]models.Schedule, error) {
	query := r.db.WithContext(ctx).Model(&models.Schedule{})
	if program != "" {
		query = query.Where("program = ?", program)
	}

	var schedules []models.Schedule
	if err := query.Order("program ASC, year_level ASC").Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *scheduleRepository) ListEligibleByDay(ctx context.Context, dayOfWeek string) ([]models.Schedule, error) {
	var schedules []models.Schedule
	err := r.db.WithContext(ctx).
		Where("day_of_week = ? AND is_eligible = ?", dayOfWeek, true).
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *scheduleRepository) Delete(ctx context.Context, id uint) error {
	tx := r.db.WithContext(ctx).Delete(&models.Schedule{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
