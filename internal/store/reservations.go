package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"boothnow-backend/internal/model"
)

var claimingReservation = []model.ReservationStatus{model.ReservationConfirmed, model.ReservationActive}

func (s *gormStore) CreateReservation(ctx context.Context, reservation *model.Reservation) error {
	if err := s.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return fmt.Errorf("failed to create reservation for booth %s: %w", reservation.BoothID, err)
	}
	return nil
}

func (s *gormStore) GetReservation(ctx context.Context, id string) (*model.Reservation, error) {
	var reservation model.Reservation
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load reservation %s: %w", id, err)
	}
	return &reservation, nil
}

// TransitionReservation moves a reservation from one status to another,
// reporting false when it was not in the expected status.
func (s *gormStore) TransitionReservation(ctx context.Context, id string, from, to model.ReservationStatus, at time.Time) (bool, error) {
	updates := map[string]any{"status": to}
	if to == model.ReservationCancelled {
		updates["cancelled_at"] = at
	}

	res := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to move reservation %s to %s: %w", id, to, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ListReservations returns a user's reservations, latest start first. An empty status lists all.
func (s *gormStore) ListReservations(ctx context.Context, userID string, status model.ReservationStatus) ([]model.Reservation, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var reservations []model.Reservation
	if err := q.Order("start_time DESC").Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations for user %s: %w", userID, err)
	}
	return reservations, nil
}

// ListReservationsStartingBy returns confirmed reservations whose window has opened.
func (s *gormStore) ListReservationsStartingBy(ctx context.Context, now time.Time) ([]model.Reservation, error) {
	var reservations []model.Reservation
	if err := s.db.WithContext(ctx).
		Where("status = ? AND start_time <= ?", model.ReservationConfirmed, now).
		Order("start_time ASC").
		Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to list starting reservations: %w", err)
	}
	return reservations, nil
}

// ListReservationsEndingBy returns active reservations whose window has closed.
func (s *gormStore) ListReservationsEndingBy(ctx context.Context, now time.Time) ([]model.Reservation, error) {
	var reservations []model.Reservation
	if err := s.db.WithContext(ctx).
		Where("status = ? AND end_time <= ?", model.ReservationActive, now).
		Order("end_time ASC").
		Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to list ending reservations: %w", err)
	}
	return reservations, nil
}

// HasOverlappingReservation reports whether a confirmed or active reservation
// on the booth intersects [start, end).
func (s *gormStore) HasOverlappingReservation(ctx context.Context, boothID string, start, end time.Time) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("booth_id = ? AND status IN ? AND start_time < ? AND end_time > ?", boothID, claimingReservation, end, start).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check overlapping reservations on booth %s: %w", boothID, err)
	}
	return count > 0, nil
}
