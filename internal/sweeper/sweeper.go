// Package sweeper periodically applies the time-driven booking transitions:
// overdue sessions, reservations whose window opened and reservations whose
// window closed.
package sweeper

import (
	"context"
	"log"
	"time"

	"boothnow-backend/config"
	"boothnow-backend/internal/booking"
)

// Sweeper is the part of the booking service the loop drives.
type Sweeper interface {
	Sweep(ctx context.Context) (booking.SweepResult, error)
}

// Service runs sweeps on a fixed interval.
type Service struct {
	cfg     config.SweeperConfig
	booking Sweeper
}

// NewService creates a new sweeper service.
func NewService(cfg config.SweeperConfig, b Sweeper) *Service {
	return &Service{cfg: cfg, booking: b}
}

// Run sweeps once immediately and then on every interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Sweeper is disabled. Not starting.")
		return
	}
	log.Printf("Starting sweeper service (every %s)...", s.cfg.Interval)

	s.SweepOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sweeper service shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// SweepOnce performs a single sweep and logs what changed.
func (s *Service) SweepOnce(ctx context.Context) {
	res, err := s.booking.Sweep(ctx)
	if err != nil {
		log.Printf("Error during sweep: %v", err)
		return
	}
	if res == (booking.SweepResult{}) {
		return
	}
	log.Printf("Sweep finished: %d sessions expired, %d reservations started, %d reservations finished",
		res.SessionsExpired, res.ReservationsStarted, res.ReservationsFinished)
}
