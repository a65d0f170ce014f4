package models

import (
	"time"
)

// Event is a capacity-bounded club event (competition, gathering, seminar).
type Event struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"start_time" gorm:"not null"`
	EndTime     time.Time `json:"end_time"`
	Capacity    int       `json:"capacity" gorm:"not null"`

	Participants []EventParticipant `json:"participants,omitempty" gorm:"foreignKey:EventID"`

	// Calculated at read time, not stored
	ParticipantCount int64 `json:"participant_count" gorm:"-"`
	AvailableSlots   int64 `json:"available_slots" gorm:"-"`

	Timestamps
}

// EventParticipant is a registration row, unique per (event, user).
type EventParticipant struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	EventID      string    `json:"event_id" gorm:"not null;uniqueIndex:idx_event_participants_event_user"`
	UserID       string    `json:"user_id" gorm:"not null;uniqueIndex:idx_event_participants_event_user"`
	RegisteredAt time.Time `json:"registered_at" gorm:"autoCreateTime"`
	Result       *string   `json:"result,omitempty"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
