package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Service is a bookable offering. Administrative edits never retroactively
// alter bookings that already reference the service.
type Service struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Description       *string    `db:"description" json:"description,omitempty"`
	DurationMinutes   int        `db:"duration_minutes" json:"duration_minutes"`
	Price             int64      `db:"price" json:"price"`
	RequiresDoctor    bool       `db:"requires_doctor" json:"requires_doctor"`
	AllowWalkin       bool       `db:"allow_walkin" json:"allow_walkin"`
	IsLive            bool       `db:"is_live" json:"is_live"`
	IsDoctorExclusive bool       `db:"is_doctor_exclusive" json:"is_doctor_exclusive"`
	ExclusiveDoctorID *uuid.UUID `db:"exclusive_doctor_id" json:"exclusive_doctor_id,omitempty"`
	ImageURL          *string    `db:"image_url" json:"image_url,omitempty"`
	Active            bool       `db:"active" json:"active"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}
