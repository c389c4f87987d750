package dto

import (
	"time"

	"github.com/noah-isme/mealtrack-go-api/internal/models"
)

// ScheduleUpsertRequest creates or replaces one eligibility row. Upsert
// semantics: a conflict on the (program, yearLevel, dayOfWeek) triple is
// success, not an error.
type ScheduleUpsertRequest struct {
	Program    string `json:"program" validate:"required"`
	YearLevel  int    `json:"year_level" validate:"required,min=1,max=4"`
	DayOfWeek  string `json:"day_of_week" validate:"required,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	IsEligible bool   `json:"is_eligible"`
}

// ScheduleResponse serializes one eligibility row.
type ScheduleResponse struct {
	ID         uint      `json:"id"`
	Program    string    `json:"program"`
	YearLevel  int       `json:"year_level"`
	DayOfWeek  string    `json:"day_of_week"`
	IsEligible bool      `json:"is_eligible"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewScheduleResponse converts a schedule model into a DTO.
func NewScheduleResponse(schedule models.Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:         schedule.ID,
		Program:    schedule.Program,
		YearLevel:  schedule.YearLevel,
		DayOfWeek:  schedule.DayOfWeek,
		IsEligible: schedule.IsEligible,
		UpdatedAt:  schedule.UpdatedAt,
	}
}
