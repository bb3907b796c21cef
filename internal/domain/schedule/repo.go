package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Ledger owns the blocked-time intervals of every doctor. HasOverlap and
// Insert participate in the caller's transaction when one is scoped into ctx;
// the booking creation path relies on that to make check-then-insert atomic.
type Ledger interface {
	HasOverlap(ctx context.Context, doctorID uuid.UUID, date time.Time, start, end int) (bool, error)
	Insert(ctx context.Context, b *Block) error
	GetByID(ctx context.Context, id uuid.UUID) (*Block, error)
	DeleteByBooking(ctx context.Context, bookingID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Block, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Block, int, error)
	List(ctx context.Context, limit, offset int) ([]*Block, int, error)
}
