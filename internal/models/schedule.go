package models

import "time"

// Weekday names accepted by the schedule table, matching time.Weekday.String().
var Weekdays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// IsValidWeekday reports whether name is one of the seven weekday names.
func IsValidWeekday(name string) bool {
	for _, day := range Weekdays {
		if day == name {
			return true
		}
	}
	return false
}

// Schedule is one row of the sparse weekly eligibility calendar. At most one
// row exists per (program, year level, day of week) triple; absence of a row
// means the cohort was never configured for that day.
type Schedule struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Program    string    `gorm:"size:32;not null;uniqueIndex:idx_schedule_cohort_day" json:"program"`
	YearLevel  int       `gorm:"not null;uniqueIndex:idx_schedule_cohort_day" json:"year_level"`
	DayOfWeek  string    `gorm:"size:16;not null;uniqueIndex:idx_schedule_cohort_day" json:"day_of_week"`
	IsEligible bool      `gorm:"not null;default:false" json:"is_eligible"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
