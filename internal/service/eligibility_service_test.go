package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/models"
)

// tuesdayNoon is a fixed Tuesday used so schedule rows in the fixtures line up
// with the evaluated weekday.
var tuesdayNoon = time.Date(2024, 10, 8, 12, 0, 0, 0, time.UTC)

func newEligibilityFixture(schedules []models.Schedule) (*eligibilityService, *fakeStudentRepo, *fakeMealRepo) {
	students := &fakeStudentRepo{students: []models.Student{
		{ID: 1, StudentIDNumber: "2024-0001", Name: "Juan Dela Cruz", Program: "BSIT", YearLevel: 2, Section: "A"},
	}}
	meals := &fakeMealRepo{}
	scheduleRepo := &fakeScheduleRepo{rows: schedules}

	svc := NewEligibilityService(students, meals, NewScheduleLookup(scheduleRepo), nil, nil, nil, testLogger()).(*eligibilityService)
	svc.now = func() time.Time { return tuesdayNoon }
	return svc, students, meals
}

func TestCheckRecordsClaimForScheduledStudent(t *testing.T) {
	svc, _, meals := newEligibilityFixture([]models.Schedule{
		{ID: 1, Program: "BSIT", YearLevel: 2, DayOfWeek: "Tuesday", IsEligible: true},
	})

	response, err := svc.Check(context.Background(), "2024-0001")
	require.NoError(t, err)
	require.Equal(t, dto.CheckStatusClaimed, response.Status)
	require.NotNil(t, response.Student)
	require.Equal(t, "Juan Dela Cruz", response.Student.Name)
	require.Equal(t, placeholderAvatarURL, response.Student.AvatarURL)

	require.Len(t, meals.records, 1)
	require.Equal(t, models.MealStatusClaimed, meals.records[0].Status)
	require.NotNil(t, meals.records[0].ClaimDay)
	require.Equal(t, "2024-10-08", *meals.records[0].ClaimDay)
}

func TestCheckSecondScanSameDayWritesNothing(t *testing.T) {
	svc, _, meals := newEligibilityFixture([]models.Schedule{
		{ID: 1, Program: "BSIT", YearLevel: 2, DayOfWeek: "Tuesday", IsEligible: true},
	})

	first, err := svc.Check(context.Background(), "2024-0001")
	require.NoError(t, err)
	require.Equal(t, dto.CheckStatusClaimed, first.Status)

	second, err := svc.Check(context.Background(), "2024-0001")
	require.NoError(t, err)
	require.Equal(t, dto.CheckStatusAlreadyClaimed, second.Status)
	require.NotNil(t, second.Student)

	// Only the original claim exists; the re-scan appended nothing.
	require.Len(t, meals.records, 1)
}

func TestCheckNotScheduledCohort(t *testing.T) {
	svc, _, meals := newEligibilityFixture([]models.Schedule{
		{ID: 1, Program: "BSIT", YearLevel: 2, DayOfWeek: "Tuesday", IsEligible: false},
	})

	response, err := svc.Check(context.Background(), "2024-0001")
	require.NoError(t, err)
	require.Equal(t, dto.CheckStatusNotScheduled, response.Status)
	require.Contains(t, response.Reason, "not scheduled")

	require.Len(t, meals.records, 1)
	require.Equal(t, models.MealStatusNotScheduled, meals.records[0].Status)
}

func TestCheckUnconfiguredCohortDistinguishedInReason(t *testing.T) {
	svc, _, meals := newEligibilityFixture(nil)

	response, err := svc.Check(context.Background(), "2024-0001")
	require.NoError(t, err)
	require.Equal(t, dto.CheckStatusNotScheduled, response.Status)
	require.Contains(t, response.Reason, "no meal schedule configured")

	// Absent schedule rows still record the same ineligible status.
	require.Len(t, meals.records, 1)
	require.Equal(t, models.MealStatusNotScheduled, meals.records[0].Status)
}

func TestCheckUnknownStudentRecordsAuditEvent(t *testing.T) {
	svc, _, meals := newEligibilityFixture(nil)

	_, err := svc.Check(context.Background(), "9999-9999")
	require.ErrorIs(t, err, ErrStudentNotFound)

	require.Len(t, meals.records, 1)
	require.Equal(t, models.MealStatusStudentNotFound, meals.records[0].Status)
	require.Equal(t, "9999-9999", meals.records[0].StudentIDNumber)
	require.Nil(t, meals.records[0].StudentID)
}

func TestCheckPublishesClaimEvent(t *testing.T) {
	svc, _, _ := newEligibilityFixture([]models.Schedule{
		{ID: 1, Program: "BSIT", YearLevel: 2, DayOfWeek: "Tuesday", IsEligible: true},
	})

	var published []dto.ClaimEvent
	svc.feed = claimPublisherFunc(func(_ context.Context, event dto.ClaimEvent) {
		published = append(published, event)
	})

	_, err := svc.Check(context.Background(), "2024-0001")
	require.NoError(t, err)
	require.Len(t, published, 1)
	require.Equal(t, "2024-0001", published[0].StudentIDNumber)

	// A re-scan claims nothing, so nothing further is published.
	_, err = svc.Check(context.Background(), "2024-0001")
	require.NoError(t, err)
	require.Len(t, published, 1)
}

type claimPublisherFunc func(ctx context.Context, event dto.ClaimEvent)

func (f claimPublisherFunc) PublishClaim(ctx context.Context, event dto.ClaimEvent) {
	f(ctx, event)
}
