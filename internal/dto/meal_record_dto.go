package dto

import (
	"time"

	"github.com/noah-isme/mealtrack-go-api/internal/models"
)

// MealRecordListRequest defines filters for listing meal records.
type MealRecordListRequest struct {
	Page            int
	PageSize        int
	StudentIDNumber string
	Status          string
	From            string
	To              string
}

// MealRecordResponse serializes one ledger entry. Program and year level are
// the values frozen at write time, not the student's current ones.
type MealRecordResponse struct {
	ID                      uint      `json:"id"`
	StudentID               *uint     `json:"student_id"`
	StudentIDNumber         string    `json:"student_id_number"`
	ProgramAtTimeOfRecord   string    `json:"program_at_time_of_record"`
	YearLevelAtTimeOfRecord int       `json:"year_level_at_time_of_record"`
	DateChecked             time.Time `json:"date_checked"`
	Status                  string    `json:"status"`
}

// MealRecordListResponse wraps a paginated ledger listing.
type MealRecordListResponse struct {
	Items      []MealRecordResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// NewMealRecordResponse converts a meal record model into a DTO.
func NewMealRecordResponse(record models.MealRecord) MealRecordResponse {
	return MealRecordResponse{
		ID:                      record.ID,
		StudentID:               record.StudentID,
		StudentIDNumber:         record.StudentIDNumber,
		ProgramAtTimeOfRecord:   record.ProgramAtTimeOfRecord,
		YearLevelAtTimeOfRecord: record.YearLevelAtTimeOfRecord,
		DateChecked:             record.DateChecked,
		Status:                  record.Status,
	}
}
