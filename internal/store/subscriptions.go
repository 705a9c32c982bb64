package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"boothnow-backend/internal/model"
)

// UpsertSubscription creates or replaces a push subscription and the booths it follows.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub model.PushSubscription, boothIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Omit("Booths").Create(&sub).Error; err != nil {
			return err
		}

		var booths []model.Booth
		if len(boothIDs) > 0 {
			if err := tx.Where("id IN ?", boothIDs).Find(&booths).Error; err != nil {
				return err
			}
		}

		return tx.Model(&sub).Association("Booths").Replace(&booths)
	})
}

// GetSubscriptionBooths returns the booth ids a subscription follows.
func (s *gormStore) GetSubscriptionBooths(ctx context.Context, endpoint string) ([]string, error) {
	var subscription model.PushSubscription
	if err := s.db.WithContext(ctx).Preload("Booths").First(&subscription, "endpoint = ?", endpoint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	boothIDs := make([]string, len(subscription.Booths))
	for i, booth := range subscription.Booths {
		boothIDs[i] = booth.ID
	}
	return boothIDs, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := model.PushSubscription{Endpoint: endpoint}
		if err := tx.Model(&sub).Association("Booths").Clear(); err != nil {
			return err
		}
		return tx.Delete(&sub).Error
	})
}
