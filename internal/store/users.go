package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"boothnow-backend/internal/model"
)

// EnsureUser finds the user row for an identity-provider subject, creating it on first sight.
func (s *gormStore) EnsureUser(ctx context.Context, externalID, email string) (*model.User, error) {
	candidate := model.User{ExternalID: externalID, Email: email}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(&candidate).Error; err != nil {
		return nil, fmt.Errorf("failed to upsert user %s: %w", externalID, err)
	}

	var user model.User
	if err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", externalID, err)
	}
	return &user, nil
}
