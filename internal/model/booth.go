package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OccupancyStatus is the raw, persisted occupancy state of a booth.
type OccupancyStatus string

const (
	OccupancyAvailable   OccupancyStatus = "available"
	OccupancyBusy        OccupancyStatus = "busy"
	OccupancyPrebooked   OccupancyStatus = "prebooked"
	OccupancyMaintenance OccupancyStatus = "maintenance"
)

// Booth represents a partner-hosted work booth.
// OccupiedUntil is the end of the current busy period when busy, or the start
// of the next reserved window when prebooked. It is nil otherwise.
// Version is bumped on every occupancy write and guards conditional claims.
type Booth struct {
	ID                string          `gorm:"primaryKey;size:36" json:"id"`
	Name              string          `gorm:"size:256;not null" json:"name"`
	Partner           string          `gorm:"size:128;not null" json:"partner"`
	Address           string          `gorm:"size:512;not null" json:"address"`
	Lat               float64         `gorm:"not null" json:"lat"`
	Lng               float64         `gorm:"not null" json:"lng"`
	OccupancyStatus   OccupancyStatus `gorm:"size:16;not null;default:available;index" json:"occupancy_status"`
	OccupiedUntil     *time.Time      `json:"occupied_until"`
	SlotLengthMinutes int             `gorm:"not null;default:60" json:"slot_length_minutes"`
	CostPerMinute     float64         `gorm:"not null;default:0.5" json:"cost_per_minute"`
	Version           int64           `gorm:"not null;default:0" json:"-"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not supply one.
func (b *Booth) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
