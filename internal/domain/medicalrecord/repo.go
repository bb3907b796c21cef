package medicalrecord

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists SOAP records. Reads and writes on behalf of a doctor
// are scoped to that doctor: a record never leaves its author's view.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error)
	GetByIDForDoctor(ctx context.Context, id, doctorID uuid.UUID) (*Record, error)
	GetByBooking(ctx context.Context, bookingID uuid.UUID) (*Record, error)
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id, doctorID uuid.UUID) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Record, int, error)
}
