// Package models contains data structures for the application's domain models.
package models

import "time"

// User is an account on the platform.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Username          string    `gorm:"size:18;uniqueIndex;not null" json:"username"`
	Email             string    `gorm:"size:254;uniqueIndex;not null" json:"email,omitempty"`
	Password          string    `gorm:"not null" json:"-"`
	Bio               string    `gorm:"size:50" json:"bio"`
	ProfileVisibility bool      `gorm:"not null" json:"profile_visibility"`
	AllowDM           bool      `gorm:"column:allow_dm;not null" json:"allow_dm"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// UserSummary is the public projection of a user embedded in other payloads.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Bio      string `json:"bio,omitempty"`
}

// Summary returns the public projection of u.
func (u *User) Summary() UserSummary {
	if u == nil {
		return UserSummary{}
	}
	return UserSummary{ID: u.ID, Username: u.Username, Bio: u.Bio}
}
