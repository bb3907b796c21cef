package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/medika/medika/internal/domain/catalog"
	"github.com/medika/medika/internal/domain/doctor"
	"github.com/medika/medika/internal/domain/notification"
	"github.com/medika/medika/internal/domain/schedule"
	"github.com/medika/medika/internal/platform/db"
)

// TxRunner executes fn as one atomic unit of work, retrying on transient
// locking failures. Production wiring backs it with db.InTxRetry.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Settler credits a doctor's wallet for one settled booking. It must run on
// the caller's transaction; the walletProcessed flag is the only idempotency
// guard.
type Settler interface {
	Settle(ctx context.Context, doctorID uuid.UUID, price int64, isLive bool) (int64, error)
}

// RecordCreator opens the empty clinical record when a booking is confirmed.
type RecordCreator interface {
	EnsureForBooking(ctx context.Context, bookingID, patientID, doctorID uuid.UUID) (bool, error)
}

// Notifier delivers post-commit notifications, best effort.
type Notifier interface {
	Notify(ctx context.Context, msg notification.Message) error
}

type Service struct {
	run      TxRunner
	repo     Repository
	services catalog.Repository
	doctors  doctor.Repository
	ledger   schedule.Ledger
	settler  Settler
	records  RecordCreator
	notifier Notifier
	log      zerolog.Logger
}

func New(run TxRunner, repo Repository, services catalog.Repository, doctors doctor.Repository,
	ledger schedule.Ledger, settler Settler, records RecordCreator, notifier Notifier, log zerolog.Logger) *Service {
	return &Service{
		run:      run,
		repo:     repo,
		services: services,
		doctors:  doctors,
		ledger:   ledger,
		settler:  settler,
		records:  records,
		notifier: notifier,
		log:      log,
	}
}

// CreateInput carries one booking creation request. Start is minutes since
// midnight.
type CreateInput struct {
	PatientID uuid.UUID
	ServiceID uuid.UUID
	DoctorID  *uuid.UUID
	Date      time.Time
	Start     int
	Notes     string
}

// Create reserves a slot. When a doctor is involved, the doctor row is locked
// before the overlap check so two concurrent requests for the same doctor
// serialize; both passing the check and both inserting is impossible.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Booking, error) {
	svc, err := s.services.GetByID(ctx, in.ServiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("load service: %w", err)
	}
	if svc.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: service has no duration", ErrInvalidRequest)
	}
	if in.Start < 0 || in.Start >= 24*60 {
		return nil, fmt.Errorf("%w: time_start out of range", ErrInvalidRequest)
	}

	doctorID := in.DoctorID
	if svc.IsDoctorExclusive && svc.ExclusiveDoctorID != nil {
		// Exclusive services always book their bound doctor, silently
		// overriding whatever the caller sent.
		doctorID = svc.ExclusiveDoctorID
	}
	if svc.RequiresDoctor && doctorID == nil {
		return nil, fmt.Errorf("%w: service requires a doctor", ErrInvalidRequest)
	}

	end := schedule.AddMinutes(in.Start, svc.DurationMinutes)
	if end <= in.Start {
		// The interval wraps past midnight and keeps the wrapped end time on
		// the same date. Callers should validate time_start against
		// 1440 - duration; we keep the upstream wrap behavior but flag it.
		s.log.Warn().
			Str("service_id", svc.ID.String()).
			Int("time_start", in.Start).
			Int("duration", svc.DurationMinutes).
			Msg("booking interval wraps past midnight")
	}

	paymentStatus := PaymentUnpaid
	if svc.Price == 0 {
		paymentStatus = PaymentPaid
	}

	b := &Booking{
		Code:          NewCode(time.Now()),
		PatientID:     in.PatientID,
		ServiceID:     in.ServiceID,
		DoctorID:      doctorID,
		Date:          in.Date,
		Start:         in.Start,
		End:           end,
		Status:        StatusPending,
		PaymentStatus: paymentStatus,
		Notes:         in.Notes,
	}

	err = s.run(ctx, func(ctx context.Context) error {
		if doctorID != nil {
			if _, err := s.doctors.GetByIDForUpdate(ctx, *doctorID); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrDoctorNotFound
				}
				return fmt.Errorf("lock doctor: %w", err)
			}

			overlap, err := s.ledger.HasOverlap(ctx, *doctorID, in.Date, in.Start, end)
			if err != nil {
				return fmt.Errorf("check overlap: %w", err)
			}
			if overlap {
				return ErrConflict
			}
		}

		if err := s.repo.Create(ctx, b); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		if doctorID != nil {
			block := &schedule.Block{
				DoctorID:  *doctorID,
				Date:      in.Date,
				Start:     in.Start,
				End:       end,
				BookingID: &b.ID,
			}
			if err := s.ledger.Insert(ctx, block); err != nil {
				return fmt.Errorf("insert schedule block: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if db.IsRetryable(err) {
			return nil, ErrTransient
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetByCode resolves a booking from its human-readable code, the reference
// printed on receipts and reminder messages.
func (s *Service) GetByCode(ctx context.Context, code string) (*Booking, error) {
	b, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Booking, int, error) {
	if f.Status != nil && !ValidStatus(*f.Status) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, *f.Status)
	}
	return s.repo.List(ctx, f, limit, offset)
}

// MarkPaid records an out-of-band payment confirmation. The payment gateway
// flow lives outside this core; administrators use this after verifying a
// transfer.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID) (*Booking, error) {
	if err := s.repo.MarkPaid(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patientID := b.PatientID
	bookingID := b.ID
	if err := s.notifier.Notify(ctx, notification.Message{
		UserID:    &patientID,
		BookingID: &bookingID,
		Title:     "Payment received",
		Body:      fmt.Sprintf("Payment for booking %s has been confirmed.", b.Code),
		Type:      notification.TypeBookingPaid,
	}); err != nil {
		s.log.Warn().Err(err).Str("booking_code", b.Code).Msg("payment notification failed")
	}
	return b, nil
}
