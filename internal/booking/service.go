// Package booking owns the booth booking lifecycle: immediate sessions,
// scheduled reservations, settlement and cancellation. It is the only code
// that mutates a booth's raw occupancy.
package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"boothnow-backend/internal/billing"
	"boothnow-backend/internal/metrics"
	"boothnow-backend/internal/model"
	"boothnow-backend/internal/notification"
	"boothnow-backend/internal/store"
)

// Publisher receives best-effort booth change events.
type Publisher interface {
	Publish(ev notification.Event)
}

// Config holds booking policy.
type Config struct {
	CancellationCutoff    time.Duration
	DefaultCostPerMinute  float64
	MaxSessionMinutes     int
	MaxReservationMinutes int
}

// Service implements the booking operations.
type Service struct {
	store    store.Store
	feed     Publisher
	payments Payments
	metrics  *metrics.Metrics
	cfg      Config
	now      func() time.Time
}

// NewService creates a booking service. payments and m may be nil.
func NewService(s store.Store, feed Publisher, payments Payments, m *metrics.Metrics, cfg Config) *Service {
	if payments == nil {
		payments = NopPayments{}
	}
	if cfg.CancellationCutoff <= 0 {
		cfg.CancellationCutoff = 30 * time.Minute
	}
	if cfg.DefaultCostPerMinute <= 0 {
		cfg.DefaultCostPerMinute = 0.50
	}
	if cfg.MaxSessionMinutes <= 0 {
		cfg.MaxSessionMinutes = 240
	}
	if cfg.MaxReservationMinutes <= 0 {
		cfg.MaxReservationMinutes = 240
	}
	return &Service{
		store:    s,
		feed:     feed,
		payments: payments,
		metrics:  m,
		cfg:      cfg,
		now:      time.Now,
	}
}

// clock returns the current instant in UTC at whole-second precision.
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func (s *Service) publish(kind notification.EventKind, boothID string, status model.OccupancyStatus, at time.Time) {
	s.metrics.ObserveEvent(string(kind))
	if s.feed == nil {
		return
	}
	s.feed.Publish(notification.Event{Kind: kind, BoothID: boothID, Status: status, At: at})
}

func (s *Service) observe(operation string, err error) {
	s.metrics.ObserveOperation(operation, outcome(err))
}

// ResolveUser maps an identity-provider subject onto an internal user, creating it on first sight.
func (s *Service) ResolveUser(ctx context.Context, externalID, email string) (*model.User, error) {
	if externalID == "" {
		return nil, ErrNotAuthenticated
	}
	user, err := s.store.EnsureUser(ctx, externalID, email)
	if err != nil {
		return nil, classify(err)
	}
	return user, nil
}

// GetBooth reads a booth, retrying once on a transient failure.
func (s *Service) GetBooth(ctx context.Context, id string) (*model.Booth, error) {
	var booth *model.Booth
	err := retryRead(func() error {
		var err error
		booth, err = s.store.GetBooth(ctx, id)
		return err
	})
	return booth, err
}

// ListBooths lists booths, retrying once on a transient failure.
func (s *Service) ListBooths(ctx context.Context, filter store.BoothFilter) ([]model.Booth, error) {
	var booths []model.Booth
	err := retryRead(func() error {
		var err error
		booths, err = s.store.ListBooths(ctx, filter)
		return err
	})
	return booths, err
}

// ListSessions lists the caller's sessions.
func (s *Service) ListSessions(ctx context.Context, userID string, status model.SessionStatus) ([]model.Session, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	var sessions []model.Session
	err := retryRead(func() error {
		var err error
		sessions, err = s.store.ListSessions(ctx, userID, status)
		return err
	})
	return sessions, err
}

// ListReservations lists the caller's reservations.
func (s *Service) ListReservations(ctx context.Context, userID string, status model.ReservationStatus) ([]model.Reservation, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	var reservations []model.Reservation
	err := retryRead(func() error {
		var err error
		reservations, err = s.store.ListReservations(ctx, userID, status)
		return err
	})
	return reservations, err
}

// LiveCost returns the caller's session together with its running cost at the current instant.
func (s *Service) LiveCost(ctx context.Context, sessionID, userID string) (*model.Session, billing.LiveCost, error) {
	if userID == "" {
		return nil, billing.LiveCost{}, ErrNotAuthenticated
	}
	var session *model.Session
	err := retryRead(func() error {
		var err error
		session, err = s.store.GetSession(ctx, sessionID)
		return err
	})
	if err != nil {
		return nil, billing.LiveCost{}, err
	}
	if session.UserID != userID {
		return nil, billing.LiveCost{}, ErrUnauthorized
	}

	at := s.clock()
	if session.EndTime != nil {
		at = *session.EndTime
	}
	return session, billing.ComputeLiveCost(*session, at), nil
}

// retryRead runs fn and retries it once when the failure is transient.
func retryRead(fn func() error) error {
	err := classify(fn())
	if errors.Is(err, ErrTransient) {
		log.Printf("Transient read failure, retrying once: %v", err)
		err = classify(fn())
	}
	return err
}
