package booking

import (
	"context"
	"log"
	"time"

	"boothnow-backend/internal/model"
	"boothnow-backend/internal/notification"
	"boothnow-backend/internal/store"
)

// SweepResult counts what one sweep changed.
type SweepResult struct {
	SessionsExpired      int
	ReservationsStarted  int
	ReservationsFinished int
}

// Sweep runs every time-driven transition once.
func (s *Service) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	var err error
	if res.SessionsExpired, err = s.ExpireSessions(ctx); err != nil {
		return res, err
	}
	if res.ReservationsStarted, res.ReservationsFinished, err = s.AdvanceReservations(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// ExpireSessions settles active sessions that ran past their booked duration.
// They are billed up to their deadline, not up to the sweep.
func (s *Service) ExpireSessions(ctx context.Context) (int, error) {
	now := s.clock()
	overdue, err := s.store.ListOverdueSessions(ctx, now)
	if err != nil {
		return 0, classify(err)
	}

	expired := 0
	for i := range overdue {
		session := overdue[i]
		var released *model.Booth
		settled := false
		err := s.store.Transaction(ctx, func(tx store.Store) error {
			var err error
			settled, released, err = s.settle(ctx, tx, &session, session.Deadline(), now)
			return err
		})
		if err != nil {
			log.Printf("Failed to expire session %s: %v", session.ID, err)
			s.observe("expire_session", classify(err))
			continue
		}
		if !settled {
			continue
		}
		s.observe("expire_session", nil)
		s.afterSettle(ctx, &session, released, now)
		expired++
	}
	return expired, nil
}

// AdvanceReservations moves confirmed reservations whose window has begun to
// active, and active reservations whose window has closed to completed. The
// booth is recomputed after every transition.
func (s *Service) AdvanceReservations(ctx context.Context) (started, finished int, err error) {
	now := s.clock()

	starting, err := s.store.ListReservationsStartingBy(ctx, now)
	if err != nil {
		return 0, 0, classify(err)
	}
	for _, r := range starting {
		to := model.ReservationActive
		kind := notification.EventReservationStarted
		if !r.EndTime.After(now) {
			to = model.ReservationCompleted
			kind = notification.EventReservationEnded
		}
		booth, ok := s.transition(ctx, r, model.ReservationConfirmed, to, now)
		if !ok {
			continue
		}
		if to == model.ReservationActive {
			started++
		} else {
			finished++
		}
		s.publish(kind, booth.ID, booth.OccupancyStatus, now)
	}

	ending, err := s.store.ListReservationsEndingBy(ctx, now)
	if err != nil {
		return started, finished, classify(err)
	}
	for _, r := range ending {
		booth, ok := s.transition(ctx, r, model.ReservationActive, model.ReservationCompleted, now)
		if !ok {
			continue
		}
		finished++
		s.publish(notification.EventReservationEnded, booth.ID, booth.OccupancyStatus, now)
	}
	return started, finished, nil
}

func (s *Service) transition(ctx context.Context, r model.Reservation, from, to model.ReservationStatus, now time.Time) (*model.Booth, bool) {
	var booth *model.Booth
	moved := false
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		ok, err := tx.TransitionReservation(ctx, r.ID, from, to, now)
		if err != nil || !ok {
			return err
		}
		moved = true
		booth, err = tx.ReleaseBooth(ctx, r.BoothID, now)
		return err
	})
	if err != nil {
		log.Printf("Failed to move reservation %s from %s to %s: %v", r.ID, from, to, err)
		return nil, false
	}
	if moved {
		log.Printf("Reservation %s on booth %s is now %s", r.ID, r.BoothID, to)
	}
	return booth, moved
}
