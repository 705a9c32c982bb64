package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReservationStatus is the lifecycle state of a scheduled booking.
type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation is a scheduled "pre-book" occupancy of a booth over [StartTime, EndTime).
type Reservation struct {
	ID              string            `gorm:"primaryKey;size:36" json:"id"`
	BoothID         string            `gorm:"size:36;not null;index:idx_reservation_booth_window" json:"booth_id"`
	UserID          string            `gorm:"size:36;not null;index" json:"user_id"`
	StartTime       time.Time         `gorm:"not null;index:idx_reservation_booth_window" json:"start_time"`
	EndTime         time.Time         `gorm:"not null" json:"end_time"`
	DurationMinutes int               `gorm:"not null" json:"duration_minutes"`
	Status          ReservationStatus `gorm:"size:16;not null;index" json:"status"`
	CancelledAt     *time.Time        `json:"cancelled_at"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not supply one.
func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Overlaps reports whether the reservation window intersects [start, end).
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && start.Before(r.EndTime)
}
