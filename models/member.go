package models

import (
	"time"
)

// MemberProfile is the flat, role-conditional storage row attached 1:1 to a
// User. Which columns are populated depends on the user's role:
//
//	athlete: DateOfBirth, Sports, WeightKG, HeightCM, StrongPoint, WeakPoint,
//	         EmergencyContact, TeamID
//	coach:   Sports (specialties), StrongPoint (certifications),
//	         WeakPoint (experience years)
//	staff:   Address (department / position / hire date, folded)
//
// Columns that do not apply to the current role stay NULL. Business logic
// works on the ProfileDetails union in the services package and only the
// persistence boundary touches this shape.
type MemberProfile struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"uniqueIndex;not null"`

	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	Sports           *string    `json:"sports,omitempty"` // comma-separated list
	WeightKG         *float64   `json:"weight_kg,omitempty"`
	HeightCM         *float64   `json:"height_cm,omitempty"`
	StrongPoint      *string    `json:"strong_point,omitempty"`
	WeakPoint        *string    `json:"weak_point,omitempty"`
	EmergencyContact *string    `json:"emergency_contact,omitempty"`
	Address          *string    `json:"address,omitempty"`
	TeamID           *string    `json:"team_id,omitempty" gorm:"index"`

	User User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Team *Team `json:"team,omitempty" gorm:"foreignKey:TeamID"`

	Timestamps
}

// Salary is a monthly compensation record, at most one per user per calendar
// month. Month uses the "YYYY-MM" form.
type Salary struct {
	ID     string  `json:"id" gorm:"primaryKey"`
	UserID string  `json:"user_id" gorm:"not null;uniqueIndex:idx_salaries_user_month"`
	Month  string  `json:"month" gorm:"type:varchar(7);not null;uniqueIndex:idx_salaries_user_month"`
	Amount float64 `json:"amount" gorm:"not null"`
	Type   string  `json:"type" gorm:"type:varchar(16);not null"` // player, coach, staff, manager
	Status string  `json:"status" gorm:"type:varchar(16);default:'pending'"`

	Timestamps
}

const (
	SalaryTypePlayer  = "player"
	SalaryTypeCoach   = "coach"
	SalaryTypeStaff   = "staff"
	SalaryTypeManager = "manager"

	SalaryStatusPending = "pending"
	SalaryStatusPaid    = "paid"
)
