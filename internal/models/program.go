package models

import "time"

// Program is reference data describing an academic program. Student.Program
// and Schedule.Program are validated against this registry.
type Program struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:32;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Color       string    `gorm:"size:16" json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
