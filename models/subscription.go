package models

import (
	"time"
)

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusInactive = "inactive"
	SubscriptionStatusPending  = "pending"

	SubscriptionTypeStandard = "standard"
)

// Subscription is one membership period for a user. Rows are append-or-update:
// the most recently created row is the member's current subscription, earlier
// rows are history and never touched.
type Subscription struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;index"`
	Status    string    `json:"status" gorm:"type:varchar(16);not null;default:'pending'"`
	Type      string    `json:"type" gorm:"type:varchar(32);not null;default:'standard'"`
	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`
	Price     float64   `json:"price" gorm:"default:0"`

	Timestamps
}
