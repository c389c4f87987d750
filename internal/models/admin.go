package models

import "time"

// Admin is an operator account for the admin console. Accounts are created by
// seed tooling or other admins; there is no self-registration.
type Admin struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Name                 string     `gorm:"size:255;not null" json:"name"`
	Email                string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password             string     `gorm:"size:255;not null" json:"-"`
	PasswordResetToken   *string    `gorm:"size:64;index" json:"-"`
	PasswordResetExpires *time.Time `json:"-"`
	ProfilePictureURL    string     `gorm:"size:512" json:"profile_picture_url"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
