package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Doctor is a practitioner identity. The row doubles as the pessimistic lock
// anchor for schedule mutations: booking creation takes it FOR UPDATE so two
// concurrent creations for the same doctor serialize before the overlap check.
type Doctor struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Specialty *string   `db:"specialty" json:"specialty,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
