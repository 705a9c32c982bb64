package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionStatus is the lifecycle state of an immediate booking.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// Session is an immediate "book now" occupancy of a booth.
// CostPerMinute is captured when the session starts and never re-read from the booth.
type Session struct {
	ID                 string        `gorm:"primaryKey;size:36" json:"id"`
	BoothID            string        `gorm:"size:36;not null;index" json:"booth_id"`
	UserID             string        `gorm:"size:36;not null;index" json:"user_id"`
	BoothName          string        `gorm:"size:256" json:"booth_name"`
	BoothAddress       string        `gorm:"size:512" json:"booth_address"`
	StartTime          time.Time     `gorm:"not null" json:"start_time"`
	EndTime            *time.Time    `json:"end_time"`
	Status             SessionStatus `gorm:"size:16;not null;index" json:"status"`
	MaxDurationMinutes int           `gorm:"not null" json:"max_duration_minutes"`
	TotalMinutes       int           `gorm:"not null;default:0" json:"total_minutes"`
	TotalCost          float64       `gorm:"not null;default:0" json:"total_cost"`
	CostPerMinute      float64       `gorm:"not null" json:"cost_per_minute"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not supply one.
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Deadline is the instant the session runs out of its booked duration.
func (s *Session) Deadline() time.Time {
	return s.StartTime.Add(time.Duration(s.MaxDurationMinutes) * time.Minute)
}
