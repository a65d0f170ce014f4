package models

import (
	"time"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCoach   = "coach"
	RoleStaff   = "staff"
	RoleAthlete = "athlete"
)

// User is the authentication-bearing identity record. Email is stored
// lowercased so the unique index enforces case-insensitive uniqueness.
type User struct {
	ID           string `json:"id" gorm:"primaryKey"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	Role         string `json:"role" gorm:"type:varchar(16);not null;default:'athlete'"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone" gorm:"type:varchar(8)"` // normalized, digits only
	PhotoURL     string `json:"photo_url,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
