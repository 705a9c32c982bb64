package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"boothnow-backend/internal/billing"
	"boothnow-backend/internal/model"
	"boothnow-backend/internal/notification"
	"boothnow-backend/internal/store"
)

// BookNow claims an available booth for durationMinutes starting immediately
// and opens an active session at the booth's current rate.
func (s *Service) BookNow(ctx context.Context, boothID, userID string, durationMinutes int) (session *model.Session, err error) {
	defer func() { s.observe("book_now", err) }()

	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if durationMinutes <= 0 || durationMinutes > s.cfg.MaxSessionMinutes {
		return nil, fmt.Errorf("%w: duration must be between 1 and %d minutes", ErrInvalidInput, s.cfg.MaxSessionMinutes)
	}

	now := s.clock()
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		booth, err := tx.GetBooth(ctx, boothID)
		if err != nil {
			return err
		}
		if booth.OccupancyStatus != model.OccupancyAvailable {
			return fmt.Errorf("%w: booth %s is %s", ErrNotAvailable, booth.ID, booth.OccupancyStatus)
		}

		until := now.Add(time.Duration(durationMinutes) * time.Minute)
		claimed, err := tx.ClaimBooth(ctx, *booth, model.OccupancyBusy, &until)
		if err != nil {
			return err
		}
		if !claimed {
			return fmt.Errorf("%w: booth %s", ErrConflict, booth.ID)
		}

		rate := booth.CostPerMinute
		if rate <= 0 {
			rate = s.cfg.DefaultCostPerMinute
		}

		session = &model.Session{
			BoothID:            booth.ID,
			UserID:             userID,
			BoothName:          booth.Name,
			BoothAddress:       booth.Address,
			StartTime:          now,
			Status:             model.SessionActive,
			MaxDurationMinutes: durationMinutes,
			CostPerMinute:      rate,
		}
		return tx.CreateSession(ctx, session)
	})
	if err != nil {
		return nil, classify(err)
	}

	estimate := billing.Round2(float64(durationMinutes) * session.CostPerMinute)
	if err := s.payments.Authorize(ctx, userID, session.ID, estimate); err != nil {
		log.Printf("Pre-authorisation failed for session %s: %v", session.ID, err)
		s.abandonSession(ctx, session, now)
		return nil, fmt.Errorf("%w: %v", ErrPaymentDeclined, err)
	}

	log.Printf("Session %s started on booth %s for user %s (%d min at %.2f/min)",
		session.ID, session.BoothID, userID, durationMinutes, session.CostPerMinute)
	s.publish(notification.EventSessionStarted, session.BoothID, model.OccupancyBusy, now)
	return session, nil
}

// abandonSession cancels a session that never got going and gives the booth back.
func (s *Service) abandonSession(ctx context.Context, session *model.Session, now time.Time) {
	var released *model.Booth
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.CancelSession(ctx, session.ID, now); err != nil {
			return err
		}
		var err error
		released, err = tx.ReleaseBooth(ctx, session.BoothID, now)
		return err
	})
	if err != nil {
		log.Printf("Failed to release booth %s after abandoned session %s: %v", session.BoothID, session.ID, err)
		return
	}
	s.publish(notification.EventSessionEnded, released.ID, released.OccupancyStatus, now)
}

// PreBook reserves a booth for [startTime, startTime+durationMinutes).
func (s *Service) PreBook(ctx context.Context, boothID, userID string, startTime time.Time, durationMinutes int) (reservation *model.Reservation, err error) {
	defer func() { s.observe("pre_book", err) }()

	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if durationMinutes <= 0 || durationMinutes > s.cfg.MaxReservationMinutes {
		return nil, fmt.Errorf("%w: duration must be between 1 and %d minutes", ErrInvalidInput, s.cfg.MaxReservationMinutes)
	}

	now := s.clock()
	start := startTime.UTC().Truncate(time.Second)
	if !start.After(now) {
		return nil, fmt.Errorf("%w: start time must be in the future", ErrInvalidInput)
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		booth, err := tx.GetBooth(ctx, boothID)
		if err != nil {
			return err
		}
		switch booth.OccupancyStatus {
		case model.OccupancyBusy, model.OccupancyMaintenance:
			return fmt.Errorf("%w: booth %s is %s", ErrNotAvailable, booth.ID, booth.OccupancyStatus)
		}

		overlapping, err := tx.HasOverlappingReservation(ctx, booth.ID, start, end)
		if err != nil {
			return err
		}
		if overlapping {
			return fmt.Errorf("%w: booth %s already reserved between %s and %s",
				ErrConflict, booth.ID, start.Format(time.RFC3339), end.Format(time.RFC3339))
		}

		// occupied_until tracks the earliest upcoming reservation.
		until := start
		if booth.OccupancyStatus == model.OccupancyPrebooked && booth.OccupiedUntil != nil && booth.OccupiedUntil.Before(start) {
			until = *booth.OccupiedUntil
		}

		claimed, err := tx.ClaimBooth(ctx, *booth, model.OccupancyPrebooked, &until)
		if err != nil {
			return err
		}
		if !claimed {
			return fmt.Errorf("%w: booth %s", ErrConflict, booth.ID)
		}

		reservation = &model.Reservation{
			BoothID:         booth.ID,
			UserID:          userID,
			StartTime:       start,
			EndTime:         end,
			DurationMinutes: durationMinutes,
			Status:          model.ReservationConfirmed,
		}
		return tx.CreateReservation(ctx, reservation)
	})
	if err != nil {
		return nil, classify(err)
	}

	log.Printf("Reservation %s confirmed on booth %s for user %s (%s, %d min)",
		reservation.ID, reservation.BoothID, userID, start.Format(time.RFC3339), durationMinutes)
	s.publish(notification.EventReservationCreated, reservation.BoothID, model.OccupancyPrebooked, now)
	return reservation, nil
}

// EndSession settles the caller's session and releases the booth. Ending a
// session that is no longer active returns it unchanged.
func (s *Service) EndSession(ctx context.Context, sessionID, userID string) (session *model.Session, err error) {
	defer func() { s.observe("end_session", err) }()

	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	now := s.clock()
	settled := false
	var released *model.Booth

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		session, err = tx.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.UserID != userID {
			return fmt.Errorf("%w: session %s", ErrUnauthorized, session.ID)
		}
		if session.Status != model.SessionActive {
			return nil
		}

		settled, released, err = s.settle(ctx, tx, session, now, now)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}
	if !settled {
		return session, nil
	}

	s.afterSettle(ctx, session, released, now)
	return session, nil
}

// settle completes an active session at end and recomputes its booth at now.
// It reports false when another writer completed the session first.
func (s *Service) settle(ctx context.Context, tx store.Store, session *model.Session, end, now time.Time) (bool, *model.Booth, error) {
	totals := billing.Settle(*session, end)
	ok, err := tx.CompleteSession(ctx, session.ID, end, totals.TotalMinutes, totals.TotalCost)
	if err != nil {
		return false, nil, err
	}
	if !ok {
		fresh, err := tx.GetSession(ctx, session.ID)
		if err != nil {
			return false, nil, err
		}
		*session = *fresh
		return false, nil, nil
	}

	released, err := tx.ReleaseBooth(ctx, session.BoothID, now)
	if err != nil {
		return false, nil, err
	}

	session.Status = model.SessionCompleted
	session.EndTime = &end
	session.TotalMinutes = totals.TotalMinutes
	session.TotalCost = totals.TotalCost
	return true, released, nil
}

func (s *Service) afterSettle(ctx context.Context, session *model.Session, released *model.Booth, now time.Time) {
	log.Printf("Session %s completed on booth %s: %d min, %.2f",
		session.ID, session.BoothID, session.TotalMinutes, billing.Round2(session.TotalCost))
	s.metrics.ObserveSession(session.TotalMinutes)

	if err := s.payments.Charge(ctx, session.UserID, session.ID, billing.Round2(session.TotalCost)); err != nil {
		log.Printf("Charge failed for session %s: %v", session.ID, err)
		s.metrics.ObserveOperation("charge", "failed")
	}

	s.publish(notification.EventSessionEnded, released.ID, released.OccupancyStatus, now)
}

// CancelReservation cancels the caller's confirmed reservation if the
// cancellation cutoff has not been reached, then releases the booth unless
// something else still holds it.
func (s *Service) CancelReservation(ctx context.Context, reservationID, userID string) (reservation *model.Reservation, err error) {
	defer func() { s.observe("cancel_reservation", err) }()

	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	now := s.clock()
	cancelled := false
	var released *model.Booth

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		reservation, err = tx.GetReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		if reservation.UserID != userID {
			return fmt.Errorf("%w: reservation %s", ErrUnauthorized, reservation.ID)
		}

		switch reservation.Status {
		case model.ReservationCancelled:
			return nil
		case model.ReservationConfirmed:
		default:
			return fmt.Errorf("%w: reservation %s is %s", ErrNotCancellable, reservation.ID, reservation.Status)
		}

		cutoff := reservation.StartTime.Add(-s.cfg.CancellationCutoff)
		if !now.Before(cutoff) {
			return fmt.Errorf("%w: cancellations close %s before start", ErrCancellationWindow, s.cfg.CancellationCutoff)
		}

		ok, err := tx.TransitionReservation(ctx, reservation.ID, model.ReservationConfirmed, model.ReservationCancelled, now)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: reservation %s changed concurrently", ErrConflict, reservation.ID)
		}

		released, err = tx.ReleaseBooth(ctx, reservation.BoothID, now)
		if err != nil {
			return err
		}
		reservation.Status = model.ReservationCancelled
		reservation.CancelledAt = &now
		cancelled = true
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	if cancelled {
		log.Printf("Reservation %s on booth %s cancelled by user %s", reservation.ID, reservation.BoothID, userID)
		s.publish(notification.EventReservationCanceled, released.ID, released.OccupancyStatus, now)
	}
	return reservation, nil
}
