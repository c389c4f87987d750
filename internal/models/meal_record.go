package models

import "time"

// Meal record statuses. INELIGIBLE_* statuses are audit events and are
// excluded from claimed/unclaimed analytics.
const (
	MealStatusClaimed         = "CLAIMED"
	MealStatusNotScheduled    = "INELIGIBLE_NOT_SCHEDULED"
	MealStatusStudentNotFound = "INELIGIBLE_STUDENT_NOT_FOUND"
	MealStatusUnclaimed       = "ELIGIBLE_BUT_NOT_CLAIMED"
)

// MealRecord is an append-only event written once per eligibility check or
// backfilled non-claim. Program and year level are frozen at write time so
// later student edits never rewrite history. There is no update path.
//
// ClaimDay is set only for CLAIMED records (UTC calendar day, YYYY-MM-DD);
// the partial unique index on (student_id, claim_day) lets the database
// enforce one claim per student per day, closing the race a read-then-write
// guard would leave open.
type MealRecord struct {
	ID                      uint      `gorm:"primaryKey" json:"id"`
	StudentID               *uint     `gorm:"index;uniqueIndex:idx_meal_claim_day" json:"student_id"`
	StudentIDNumber         string    `gorm:"size:32;index" json:"student_id_number"`
	ProgramAtTimeOfRecord   string    `gorm:"size:32;index" json:"program_at_time_of_record"`
	YearLevelAtTimeOfRecord int       `json:"year_level_at_time_of_record"`
	DateChecked             time.Time `gorm:"index;not null" json:"date_checked"`
	Status                  string    `gorm:"size:32;index;not null" json:"status"`
	ClaimDay                *string   `gorm:"size:10;uniqueIndex:idx_meal_claim_day" json:"-"`
	CreatedAt               time.Time `json:"created_at"`
}

// ClaimDayKey formats t as the UTC calendar-day key used by the
// one-claim-per-day unique index.
func ClaimDayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
