package models

import (
	"time"

	"gorm.io/gorm"
)

// ProgramACT is the two-year Associate in Computer Technology track. Students
// enrolled in it can only be in year levels 1 and 2.
const ProgramACT = "ACT"

// MaxYearLevelFor returns the highest valid year level for the given program.
func MaxYearLevelFor(program string) int {
	if program == ProgramACT {
		return 2
	}
	return 4
}

// Student represents a learner that can claim meals at the kitchen terminal.
type Student struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	StudentIDNumber   string         `gorm:"size:32;uniqueIndex;not null" json:"student_id_number"`
	Name              string         `gorm:"size:255;not null" json:"name"`
	Program           string         `gorm:"size:32;index;not null" json:"program"`
	YearLevel         int            `gorm:"not null" json:"year_level"`
	Section           string         `gorm:"size:32" json:"section"`
	Email             *string        `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	ProfilePictureURL string         `gorm:"size:512" json:"profile_picture_url"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}
