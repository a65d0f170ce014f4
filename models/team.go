package models

import (
	"time"
)

// Team represents a club team for a single discipline. CoachID is advisory:
// at most one team per coach, enforced by the TeamService check, not by a
// database constraint.
type Team struct {
	ID         string  `json:"id" gorm:"primaryKey"`
	Name       string  `json:"name" gorm:"not null"`
	Slug       string  `json:"slug" gorm:"index"`
	Discipline string  `json:"discipline"`
	CoachID    *string `json:"coach_id,omitempty" gorm:"index"`
	LogoURL    string  `json:"logo_url,omitempty"`

	Coach   *User        `json:"coach,omitempty" gorm:"foreignKey:CoachID"`
	Members []TeamMember `json:"members,omitempty" gorm:"foreignKey:TeamID"`

	// Calculated at read time, not stored
	MemberCount int `json:"member_count" gorm:"-"`

	Timestamps
}

// TeamMember is a roster join row, unique per (team, user). Virtual marks a
// synthesized coach entry that only exists in the read projection.
type TeamMember struct {
	ID       string    `json:"id" gorm:"primaryKey"`
	TeamID   string    `json:"team_id" gorm:"not null;uniqueIndex:idx_team_members_team_user"`
	UserID   string    `json:"user_id" gorm:"not null;uniqueIndex:idx_team_members_team_user"`
	JoinedAt time.Time `json:"joined_at" gorm:"autoCreateTime"`

	Virtual bool `json:"virtual,omitempty" gorm:"-"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
