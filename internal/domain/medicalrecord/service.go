package medicalrecord

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BookingDirectory answers whether a booking belongs to a doctor and who the
// patient is. Implemented by an adapter over the booking store, wired in main.
type BookingDirectory interface {
	PatientForDoctorBooking(ctx context.Context, bookingID, doctorID uuid.UUID) (uuid.UUID, error)
}

var ErrBookingNotOwned = errors.New("booking not found or not owned by doctor")

type Service struct {
	repo     Repository
	bookings BookingDirectory
}

func New(repo Repository, bookings BookingDirectory) *Service {
	return &Service{repo: repo, bookings: bookings}
}

// EnsureForBooking creates the empty SOAP record when a booking is confirmed.
// It runs on the caller's transaction and is a no-op when the record already
// exists, so re-confirming a booking never produces a duplicate.
func (s *Service) EnsureForBooking(ctx context.Context, bookingID, patientID, doctorID uuid.UUID) (bool, error) {
	exists, err := s.repo.ExistsForBooking(ctx, bookingID)
	if err != nil {
		return false, fmt.Errorf("check existing record: %w", err)
	}
	if exists {
		return false, nil
	}
	rec := &Record{BookingID: bookingID, PatientID: patientID, DoctorID: doctorID}
	if err := s.repo.Create(ctx, rec); err != nil {
		return false, fmt.Errorf("create record: %w", err)
	}
	return true, nil
}

// Create lets a doctor open a record by hand for one of their bookings.
func (s *Service) Create(ctx context.Context, bookingID, doctorID uuid.UUID) (*Record, error) {
	patientID, err := s.bookings.PatientForDoctorBooking(ctx, bookingID, doctorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotOwned
		}
		return nil, fmt.Errorf("verify booking: %w", err)
	}

	exists, err := s.repo.ExistsForBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("check existing record: %w", err)
	}
	if exists {
		return nil, ErrAlreadyExists
	}

	rec := &Record{BookingID: bookingID, PatientID: patientID, DoctorID: doctorID}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id, doctorID uuid.UUID) (*Record, error) {
	rec, err := s.repo.GetByIDForDoctor(ctx, id, doctorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// UpdateSOAP applies a partial edit; nil sections keep their current content.
func (s *Service) UpdateSOAP(ctx context.Context, id, doctorID uuid.UUID, upd SOAPUpdate) (*Record, error) {
	rec, err := s.Get(ctx, id, doctorID)
	if err != nil {
		return nil, err
	}

	if upd.Subjective != nil {
		rec.Subjective = upd.Subjective
	}
	if upd.Objective != nil {
		rec.Objective = upd.Objective
	}
	if upd.Assessment != nil {
		rec.Assessment = upd.Assessment
	}
	if upd.Plan != nil {
		rec.Plan = upd.Plan
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, id, doctorID uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, doctorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}
