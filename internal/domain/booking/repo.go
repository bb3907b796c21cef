package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medika/medika/internal/domain/wallet"
)

// Filter narrows List. Nil fields match everything.
type Filter struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    *string
}

// Repository is the booking record store. Mutations become visible only when
// the enclosing transaction commits.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByCode(ctx context.Context, code string) (*Booking, error)
	// GetByIDForUpdate loads the booking under a row lock; must run inside a
	// transaction scoped into ctx.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	MarkPaid(ctx context.Context, id uuid.UUID) error
	MarkWalletProcessed(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Booking, int, error)

	// CompletedPaidEarnings feeds the doctor revenue report.
	CompletedPaidEarnings(ctx context.Context, doctorID uuid.UUID) ([]wallet.Earning, error)

	// Reminder sweep support. The mark methods flip their flag atomically
	// and report whether this caller won the flip, so concurrent sweeps
	// never notify twice.
	ListReminderCandidates(ctx context.Context, from, to time.Time) ([]*Booking, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) (bool, error)
	MarkStartedNotified(ctx context.Context, id uuid.UUID) (bool, error)
}
