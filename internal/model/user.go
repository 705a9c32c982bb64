package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User maps an identity-provider subject to an internal user row.
type User struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ExternalID string    `gorm:"uniqueIndex;size:128;not null" json:"external_id"`
	Email      string    `gorm:"size:256" json:"email"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
