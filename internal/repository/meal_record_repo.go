package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/mealtrack-go-api/internal/models"
)

// StatusCounts carries claimed/unclaimed tallies for one range. INELIGIBLE_*
// records are excluded on the query side.
type StatusCounts struct {
	Claimed   int64
	Unclaimed int64
}

// CohortCounts carries tallies for one breakdown group (a program, or a year
// level within one program).
type CohortCounts struct {
	Name      string
	Claimed   int64
	Unclaimed int64
}

// MealRecordFilter narrows record listings for the admin console.
type MealRecordFilter struct {
	StudentIDNumber string
	Status          string
	From            *time.Time
	To              *time.Time
	Page            int
	PageSize        int
}

// MealRecordRepository persists and aggregates the append-only meal ledger.
// Records are never updated or deleted.
type MealRecordRepository interface {
	Insert(ctx context.Context, record *models.MealRecord) error
	// InsertClaim appends a CLAIMED record guarded by the unique
	// (student_id, claim_day) index. It reports false when the row already
	// existed, meaning the student had claimed earlier that day.
	InsertClaim(ctx context.Context, record *models.MealRecord) (bool, error)
	// InsertBatch appends records in unordered batches and returns how many
	// rows were written.
	InsertBatch(ctx context.Context, records []models.MealRecord) (int64, error)
	List(ctx context.Context, filter MealRecordFilter) ([]models.MealRecord, int64, error)
	// StudentIDsWithRecordBetween returns the distinct students having any
	// record, of any status, within the range.
	StudentIDsWithRecordBetween(ctx context.Context, start, end time.Time) ([]uint, error)
	CountStatuses(ctx context.Context, start, end time.Time) (StatusCounts, error)
	// GroupByProgram tallies claimed/unclaimed per program within the range.
	GroupByProgram(ctx context.Context, start, end time.Time) ([]CohortCounts, error)
	// GroupByYearLevel tallies claimed/unclaimed per year level within one
	// program for the range.
	GroupByYearLevel(ctx context.Context, start, end time.Time, program string) ([]CohortCounts, error)
}

type mealRecordRepository struct {
	db *gorm.DB
}

// NewMealRecordRepository constructs a meal record repository.
func NewMealRecordRepository(db *gorm.DB) MealRecordRepository {
	return &mealRecordRepository{db: db}
}

func (r *mealRecordRepository) Insert(ctx context.Context, record *models.MealRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *mealRecordRepository) InsertClaim(ctx context.Context, record *models.MealRecord) (bool, error) {
	day := models.ClaimDayKey(record.DateChecked)
	record.ClaimDay = &day

	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "claim_day"}},
		DoNothing: true,
	}).Create(record)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *mealRecordRepository) InsertBatch(ctx context.Context, records []models.MealRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).CreateInBatches(records, 200)
	return tx.RowsAffected, tx.Error
}

func (r *mealRecordRepository) List(ctx context.Context, filter MealRecordFilter) ([]models.MealRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MealRecord{})

	if filter.StudentIDNumber != "" {
		query = query.Where("student_id_number = ?", filter.StudentIDNumber)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("date_checked >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date_checked <= ?", *filter.To)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("date_checked DESC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Limit(filter.PageSize).Offset((page - 1) * filter.PageSize)
	}

	var records []models.MealRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *mealRecordRepository) StudentIDsWithRecordBetween(ctx context.Context, start, end time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.MealRecord{}).
		Distinct("student_id").
		Where("student_id IS NOT NULL").
		Where("date_checked BETWEEN ? AND ?", start, end).
		Pluck("student_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

type statusRow struct {
	Status string
	Total  int64
}

func (r *mealRecordRepository) CountStatuses(ctx context.Context, start, end time.Time) (StatusCounts, error) {
	var rows []statusRow
	err := r.db.WithContext(ctx).
		Model(&models.MealRecord{}).
		Select("status, COUNT(*) AS total").
		Where("date_checked BETWEEN ? AND ?", start, end).
		Where("status IN ?", []string{models.MealStatusClaimed, models.MealStatusUnclaimed}).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return StatusCounts{}, err
	}

	return foldStatusRows(rows), nil
}

func foldStatusRows(rows []statusRow) StatusCounts {
	var counts StatusCounts
	for _, row := range rows {
		switch row.Status {
		case models.MealStatusClaimed:
			counts.Claimed = row.Total
		case models.MealStatusUnclaimed:
			counts.Unclaimed = row.Total
		}
	}
	return counts
}

type cohortRow struct {
	Name   string
	Status string
	Total  int64
}

func (r *mealRecordRepository) GroupByProgram(ctx context.Context, start, end time.Time) ([]CohortCounts, error) {
	var rows []cohortRow
	err := r.db.WithContext(ctx).
		Model(&models.MealRecord{}).
		Select("program_at_time_of_record AS name, status, COUNT(*) AS total").
		Where("date_checked BETWEEN ? AND ?", start, end).
		Where("status IN ?", []string{models.MealStatusClaimed, models.MealStatusUnclaimed}).
		Group("program_at_time_of_record, status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return foldCohortRows(rows), nil
}

func (r *mealRecordRepository) GroupByYearLevel(ctx context.Context, start, end time.Time, program string) ([]CohortCounts, error) {
	var rows []cohortRow
	err := r.db.WithContext(ctx).
		Model(&models.MealRecord{}).
		Select("CAST(year_level_at_time_of_record AS TEXT) AS name, status, COUNT(*) AS total").
		Where("program_at_time_of_record = ?", program).
		Where("date_checked BETWEEN ? AND ?", start, end).
		Where("status IN ?", []string{models.MealStatusClaimed, models.MealStatusUnclaimed}).
		Group("year_level_at_time_of_record, status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return foldCohortRows(rows), nil
}

func foldCohortRows(rows []cohortRow) []CohortCounts {
	index := map[string]int{}
	var groups []CohortCounts
	for _, row := range rows {
		i, ok := index[row.Name]
		if !ok {
			i = len(groups)
			index[row.Name] = i
			groups = append(groups, CohortCounts{Name: row.Name})
		}
		switch row.Status {
		case models.MealStatusClaimed:
			groups[i].Claimed = row.Total
		case models.MealStatusUnclaimed:
			groups[i].Unclaimed = row.Total
		}
	}
	return groups
}
