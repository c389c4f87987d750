package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/mealtrack-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Student{}, &models.Program{}, &models.Schedule{}, &models.MealRecord{}, &models.Admin{}, &models.ActivityLog{}))
	return db
}

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInsertClaimEnforcesOnePerDay(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMealRecordRepository(db)
	ctx := context.Background()

	studentID := uint(7)
	checked := time.Date(2024, time.October, 14, 11, 30, 0, 0, time.UTC)

	first := models.MealRecord{
		StudentID:               &studentID,
		StudentIDNumber:         "2024-0007",
		ProgramAtTimeOfRecord:   "BSIS",
		YearLevelAtTimeOfRecord: 1,
		DateChecked:             checked,
		Status:                  models.MealStatusClaimed,
	}
	created, err := repo.InsertClaim(ctx, &first)
	require.NoError(t, err)
	require.True(t, created)

	second := first
	second.ID = 0
	second.DateChecked = checked.Add(3 * time.Hour)
	created, err = repo.InsertClaim(ctx, &second)
	require.NoError(t, err)
	require.False(t, created, "same student, same UTC day must not claim twice")

	var total int64
	require.NoError(t, db.Model(&models.MealRecord{}).Count(&total).Error)
	require.Equal(t, int64(1), total)

	// A different day claims normally.
	third := first
	third.ID = 0
	third.ClaimDay = nil
	third.DateChecked = checked.AddDate(0, 0, 1)
	created, err = repo.InsertClaim(ctx, &third)
	require.NoError(t, err)
	require.True(t, created)
}

func TestCountStatusesExcludesIneligibleRecords(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMealRecordRepository(db)
	ctx := context.Background()

	day := utcDay(2024, time.October, 14)
	statuses := []string{
		models.MealStatusClaimed,
		models.MealStatusClaimed,
		models.MealStatusUnclaimed,
		models.MealStatusNotScheduled,
		models.MealStatusStudentNotFound,
	}
	for i, status := range statuses {
		id := uint(i + 1)
		require.NoError(t, repo.Insert(ctx, &models.MealRecord{
			StudentID:               &id,
			StudentIDNumber:         "x",
			ProgramAtTimeOfRecord:   "BSIS",
			YearLevelAtTimeOfRecord: 1,
			DateChecked:             day.Add(time.Duration(i) * time.Hour),
			Status:                  status,
		}))
	}

	counts, err := repo.CountStatuses(ctx, day, day.Add(24*time.Hour-time.Millisecond))
	require.NoError(t, err)
	require.Equal(t, int64(2), counts.Claimed)
	require.Equal(t, int64(1), counts.Unclaimed)
}

func TestGroupByProgramAndYearLevel(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMealRecordRepository(db)
	ctx := context.Background()

	day := utcDay(2024, time.October, 14)
	seed := []struct {
		program string
		year    int
		status  string
	}{
		{"BSIS", 1, models.MealStatusClaimed},
		{"BSIS", 1, models.MealStatusUnclaimed},
		{"BSIS", 2, models.MealStatusClaimed},
		{"BSA", 3, models.MealStatusClaimed},
		{"BSA", 3, models.MealStatusStudentNotFound},
	}
	for i, row := range seed {
		id := uint(i + 1)
		require.NoError(t, repo.Insert(ctx, &models.MealRecord{
			StudentID:               &id,
			ProgramAtTimeOfRecord:   row.program,
			YearLevelAtTimeOfRecord: row.year,
			DateChecked:             day,
			Status:                  row.status,
		}))
	}

	end := day.Add(24*time.Hour - time.Millisecond)

	byProgram, err := repo.GroupByProgram(ctx, day, end)
	require.NoError(t, err)
	require.Len(t, byProgram, 2)

	tally := map[string]CohortCounts{}
	for _, group := range byProgram {
		tally[group.Name] = group
	}
	require.Equal(t, int64(2), tally["BSIS"].Claimed)
	require.Equal(t, int64(1), tally["BSIS"].Unclaimed)
	require.Equal(t, int64(1), tally["BSA"].Claimed)
	require.Equal(t, int64(0), tally["BSA"].Unclaimed)

	byYear, err := repo.GroupByYearLevel(ctx, day, end, "BSIS")
	require.NoError(t, err)
	require.Len(t, byYear, 2)
}

func TestStudentIDsWithRecordBetween(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMealRecordRepository(db)
	ctx := context.Background()

	day := utcDay(2024, time.October, 14)
	one, two := uint(1), uint(2)
	require.NoError(t, repo.Insert(ctx, &models.MealRecord{StudentID: &one, DateChecked: day, Status: models.MealStatusClaimed}))
	require.NoError(t, repo.Insert(ctx, &models.MealRecord{StudentID: &one, DateChecked: day.Add(time.Hour), Status: models.MealStatusNotScheduled}))
	require.NoError(t, repo.Insert(ctx, &models.MealRecord{StudentID: &two, DateChecked: day.AddDate(0, 0, 1), Status: models.MealStatusClaimed}))
	require.NoError(t, repo.Insert(ctx, &models.MealRecord{DateChecked: day, Status: models.MealStatusStudentNotFound}))

	ids, err := repo.StudentIDsWithRecordBetween(ctx, day, day.Add(24*time.Hour-time.Millisecond))
	require.NoError(t, err)
	require.ElementsMatch(t, []uint{one}, ids)
}
