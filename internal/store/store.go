package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"boothnow-backend/internal/model"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("store: record not found")

// BoothFilter narrows ListBooths.
type BoothFilter struct {
	Query    string
	Statuses []model.OccupancyStatus
}

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB
	Transaction(ctx context.Context, fn func(tx Store) error) error

	GetBooth(ctx context.Context, id string) (*model.Booth, error)
	ListBooths(ctx context.Context, filter BoothFilter) ([]model.Booth, error)
	ClaimBooth(ctx context.Context, expected model.Booth, to model.OccupancyStatus, until *time.Time) (bool, error)
	ReleaseBooth(ctx context.Context, boothID string, now time.Time) (*model.Booth, error)

	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	CompleteSession(ctx context.Context, id string, end time.Time, totalMinutes int, totalCost float64) (bool, error)
	CancelSession(ctx context.Context, id string, at time.Time) (bool, error)
	ListSessions(ctx context.Context, userID string, status model.SessionStatus) ([]model.Session, error)
	ListOverdueSessions(ctx context.Context, now time.Time) ([]model.Session, error)

	CreateReservation(ctx context.Context, reservation *model.Reservation) error
	GetReservation(ctx context.Context, id string) (*model.Reservation, error)
	TransitionReservation(ctx context.Context, id string, from, to model.ReservationStatus, at time.Time) (bool, error)
	ListReservations(ctx context.Context, userID string, status model.ReservationStatus) ([]model.Reservation, error)
	ListReservationsStartingBy(ctx context.Context, now time.Time) ([]model.Reservation, error)
	ListReservationsEndingBy(ctx context.Context, now time.Time) ([]model.Reservation, error)
	HasOverlappingReservation(ctx context.Context, boothID string, start, end time.Time) (bool, error)

	EnsureUser(ctx context.Context, externalID, email string) (*model.User, error)

	UpsertSubscription(ctx context.Context, sub model.PushSubscription, boothIDs []string) error
	GetSubscriptionBooths(ctx context.Context, endpoint string) ([]string, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn against a store bound to a single database transaction.
func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// GetBooth loads a booth by id.
func (s *gormStore) GetBooth(ctx context.Context, id string) (*model.Booth, error) {
	var booth model.Booth
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&booth).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load booth %s: %w", id, err)
	}
	return &booth, nil
}

// ListBooths returns booths matching filter ordered by name.
func (s *gormStore) ListBooths(ctx context.Context, filter BoothFilter) ([]model.Booth, error) {
	q := s.db.WithContext(ctx).Model(&model.Booth{})
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(partner) LIKE ? OR LOWER(address) LIKE ?", like, like, like)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("occupancy_status IN ?", filter.Statuses)
	}

	var booths []model.Booth
	if err := q.Order("name ASC").Find(&booths).Error; err != nil {
		return nil, fmt.Errorf("failed to list booths: %w", err)
	}
	return booths, nil
}

// ClaimBooth moves a booth to a new occupancy state only if it still matches
// the expected snapshot (same status and version). It reports whether the row
// was updated; false means another writer got there first.
func (s *gormStore) ClaimBooth(ctx context.Context, expected model.Booth, to model.OccupancyStatus, until *time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Booth{}).
		Where("id = ? AND occupancy_status = ? AND version = ?", expected.ID, expected.OccupancyStatus, expected.Version).
		Updates(map[string]any{
			"occupancy_status": to,
			"occupied_until":   until,
			"version":          gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to claim booth %s: %w", expected.ID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ReleaseBooth recomputes a booth's raw occupancy from the sessions and
// reservations that still hold it. Maintenance booths are left alone.
func (s *gormStore) ReleaseBooth(ctx context.Context, boothID string, now time.Time) (*model.Booth, error) {
	booth, err := s.GetBooth(ctx, boothID)
	if err != nil {
		return nil, err
	}
	if booth.OccupancyStatus == model.OccupancyMaintenance {
		return booth, nil
	}

	status, until, err := s.occupancyAt(ctx, booth.ID, now)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Model(&model.Booth{}).
		Where("id = ?", booth.ID).
		Updates(map[string]any{
			"occupancy_status": status,
			"occupied_until":   until,
			"version":          gorm.Expr("version + 1"),
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to release booth %s: %w", booth.ID, err)
	}

	booth.OccupancyStatus = status
	booth.OccupiedUntil = until
	booth.Version++
	return booth, nil
}

// occupancyAt works out what still claims a booth at now.
func (s *gormStore) occupancyAt(ctx context.Context, boothID string, now time.Time) (model.OccupancyStatus, *time.Time, error) {
	var session model.Session
	err := s.db.WithContext(ctx).
		Where("booth_id = ? AND status = ?", boothID, model.SessionActive).
		Order("start_time DESC").
		First(&session).Error
	if err == nil {
		deadline := session.Deadline()
		return model.OccupancyBusy, &deadline, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, fmt.Errorf("failed to check active session on booth %s: %w", boothID, err)
	}

	var current model.Reservation
	err = s.db.WithContext(ctx).
		Where("booth_id = ? AND status IN ? AND start_time <= ? AND end_time > ?", boothID,
			[]model.ReservationStatus{model.ReservationConfirmed, model.ReservationActive}, now, now).
		Order("end_time DESC").
		First(&current).Error
	if err == nil {
		end := current.EndTime
		return model.OccupancyBusy, &end, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, fmt.Errorf("failed to check current reservation on booth %s: %w", boothID, err)
	}

	var next model.Reservation
	err = s.db.WithContext(ctx).
		Where("booth_id = ? AND status = ? AND start_time > ?", boothID, model.ReservationConfirmed, now).
		Order("start_time ASC").
		First(&next).Error
	if err == nil {
		start := next.StartTime
		return model.OccupancyPrebooked, &start, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, fmt.Errorf("failed to check upcoming reservation on booth %s: %w", boothID, err)
	}

	return model.OccupancyAvailable, nil, nil
}
