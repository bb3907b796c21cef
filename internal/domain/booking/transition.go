package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medika/medika/internal/domain/notification"
)

// Transition moves a booking to a new status in two phases. The atomic phase
// locks the booking row, writes the status, and runs the clinical and
// financial side effects on the same transaction so they share fate with the
// status write. The best-effort phase fires notifications after commit and
// never rolls anything back.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, newStatus string) (*Booking, error) {
	// Reject unknown labels before touching any lock.
	if !ValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, newStatus)
	}

	var b *Booking
	var settledShare int64
	err := s.run(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock booking: %w", err)
		}

		if !TransitionAllowed(b.Status, newStatus) {
			return fmt.Errorf("%w: transition %s -> %s not allowed", ErrInvalidRequest, b.Status, newStatus)
		}

		if err := s.repo.UpdateStatus(ctx, b.ID, newStatus); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		switch newStatus {
		case StatusConfirmed:
			if b.DoctorID != nil {
				if _, err := s.records.EnsureForBooking(ctx, b.ID, b.PatientID, *b.DoctorID); err != nil {
					return fmt.Errorf("create medical record: %w", err)
				}
			}

		case StatusCompleted:
			if b.PaymentStatus == PaymentPaid && !b.WalletProcessed && b.DoctorID != nil {
				svc, err := s.services.GetByID(ctx, b.ServiceID)
				if err != nil {
					return fmt.Errorf("load service for settlement: %w", err)
				}
				share, err := s.settler.Settle(ctx, *b.DoctorID, svc.Price, svc.IsLive)
				if err != nil {
					return fmt.Errorf("settle wallet: %w", err)
				}
				settledShare = share
				if err := s.repo.MarkWalletProcessed(ctx, b.ID); err != nil {
					return fmt.Errorf("mark wallet processed: %w", err)
				}
				b.WalletProcessed = true
			}

		case StatusCancelled:
			// Release the held slot so the window opens up again.
			if err := s.ledger.DeleteByBooking(ctx, b.ID); err != nil {
				return fmt.Errorf("release schedule block: %w", err)
			}
		}

		b.Status = newStatus
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyTransition(ctx, b, newStatus)
	if settledShare > 0 && b.DoctorID != nil {
		doctorID := *b.DoctorID
		bookingID := b.ID
		if err := s.notifier.Notify(ctx, notification.Message{
			DoctorID:  &doctorID,
			BookingID: &bookingID,
			Title:     "Earnings credited",
			Body:      fmt.Sprintf("Rp %d from booking %s has been added to your wallet.", settledShare, b.Code),
			Type:      notification.TypeWalletSettled,
		}); err != nil {
			s.log.Warn().Err(err).Str("booking_code", b.Code).Msg("settlement notification failed")
		}
	}
	return b, nil
}

// notifyTransition runs after the transaction committed. Failures are logged
// by the notification service and never surface here.
func (s *Service) notifyTransition(ctx context.Context, b *Booking, newStatus string) {
	var title, body, typ string
	switch {
	case newStatus == StatusConfirmed:
		title, body, typ = "Booking confirmed",
			fmt.Sprintf("Your booking %s has been confirmed.", b.Code),
			notification.TypeBookingConfirmed
	case newStatus == StatusCancelled:
		title, body, typ = "Booking cancelled",
			fmt.Sprintf("Your booking %s has been cancelled.", b.Code),
			notification.TypeBookingCancelled
	case newStatus == StatusCompleted && b.PaymentStatus == PaymentPaid:
		title, body, typ = "Session completed",
			fmt.Sprintf("Your booking %s is completed and payment has been received.", b.Code),
			notification.TypeBookingCompleted
	default:
		return
	}

	bookingID := b.ID
	patientID := b.PatientID
	if err := s.notifier.Notify(ctx, notification.Message{
		UserID:    &patientID,
		BookingID: &bookingID,
		Title:     title,
		Body:      body,
		Type:      typ,
	}); err != nil {
		s.log.Warn().Err(err).Str("booking_code", b.Code).Msg("patient notification failed")
	}

	if b.DoctorID != nil {
		doctorID := *b.DoctorID
		if err := s.notifier.Notify(ctx, notification.Message{
			DoctorID:  &doctorID,
			BookingID: &bookingID,
			Title:     title,
			Body:      fmt.Sprintf("Booking %s is now %s.", b.Code, newStatus),
			Type:      typ,
		}); err != nil {
			s.log.Warn().Err(err).Str("booking_code", b.Code).Msg("doctor notification failed")
		}
	}
}
