package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"boothnow-backend/internal/model"
)

func (s *gormStore) CreateSession(ctx context.Context, session *model.Session) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session for booth %s: %w", session.BoothID, err)
	}
	return nil
}

func (s *gormStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return &session, nil
}

// CompleteSession settles an active session. It reports false if the session
// was no longer active, leaving the stored totals untouched.
func (s *gormStore) CompleteSession(ctx context.Context, id string, end time.Time, totalMinutes int, totalCost float64) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND status = ?", id, model.SessionActive).
		Updates(map[string]any{
			"status":        model.SessionCompleted,
			"end_time":      end,
			"total_minutes": totalMinutes,
			"total_cost":    totalCost,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to complete session %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *gormStore) CancelSession(ctx context.Context, id string, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND status = ?", id, model.SessionActive).
		Updates(map[string]any{
			"status":   model.SessionCancelled,
			"end_time": at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to cancel session %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ListSessions returns a user's sessions, newest first. An empty status lists all.
func (s *gormStore) ListSessions(ctx context.Context, userID string, status model.SessionStatus) ([]model.Session, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var sessions []model.Session
	if err := q.Order("start_time DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions for user %s: %w", userID, err)
	}
	return sessions, nil
}

// ListOverdueSessions returns active sessions that have run past their booked duration.
func (s *gormStore) ListOverdueSessions(ctx context.Context, now time.Time) ([]model.Session, error) {
	var active []model.Session
	if err := s.db.WithContext(ctx).
		Where("status = ? AND start_time <= ?", model.SessionActive, now).
		Find(&active).Error; err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}

	overdue := active[:0]
	for _, session := range active {
		if !session.Deadline().After(now) {
			overdue = append(overdue, session)
		}
	}
	return overdue, nil
}
