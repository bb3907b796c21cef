package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medika/medika/internal/domain/doctor"
)

// TxRunner executes fn as one atomic unit of work, retrying on transient
// locking failures. Production wiring backs it with db.InTxRetry.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	run     TxRunner
	ledger  Ledger
	doctors doctor.Repository
}

func New(run TxRunner, ledger Ledger, doctors doctor.Repository) *Service {
	return &Service{run: run, ledger: ledger, doctors: doctors}
}

// CreateBlock places an administrative block for a doctor. It takes the
// doctor row lock before the overlap check so that it cannot race a
// concurrent booking creation for the same doctor.
func (s *Service) CreateBlock(ctx context.Context, doctorID uuid.UUID, date time.Time, start, end int) (*Block, error) {
	if start >= end {
		return nil, fmt.Errorf("%w: time_start must precede time_end", ErrInvalid)
	}
	if start < 0 || end > 24*60 {
		return nil, fmt.Errorf("%w: interval out of range", ErrInvalid)
	}

	var block *Block
	err := s.run(ctx, func(ctx context.Context) error {
		if _, err := s.doctors.GetByIDForUpdate(ctx, doctorID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrDoctorNotFound
			}
			return fmt.Errorf("lock doctor: %w", err)
		}

		overlap, err := s.ledger.HasOverlap(ctx, doctorID, date, start, end)
		if err != nil {
			return fmt.Errorf("check overlap: %w", err)
		}
		if overlap {
			return ErrConflict
		}

		block = &Block{DoctorID: doctorID, Date: date, Start: start, End: end}
		if err := s.ledger.Insert(ctx, block); err != nil {
			return fmt.Errorf("insert block: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Block, error) {
	b, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.ledger.Delete(ctx, id)
}

func (s *Service) ListByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Block, error) {
	return s.ledger.ListByDoctorDate(ctx, doctorID, date)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Block, int, error) {
	return s.ledger.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Block, int, error) {
	return s.ledger.List(ctx, limit, offset)
}
