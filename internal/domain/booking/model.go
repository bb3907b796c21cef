package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

// Booking is the central entity: one reserved slot for a patient, optionally
// bound to a doctor, moving through the status state machine. Times are
// minutes since midnight, half-open [Start, End).
type Booking struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Code            string     `db:"booking_code" json:"booking_code"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	ServiceID       uuid.UUID  `db:"service_id" json:"service_id"`
	DoctorID        *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	Date            time.Time  `db:"date" json:"date"`
	Start           int        `db:"time_start" json:"time_start"`
	End             int        `db:"time_end" json:"time_end"`
	Status          string     `db:"status" json:"status"`
	PaymentStatus   string     `db:"payment_status" json:"payment_status"`
	Notes           string     `db:"notes" json:"notes"`
	WalletProcessed bool       `db:"wallet_processed" json:"wallet_processed"`
	ReminderSent    bool       `db:"reminder_sent" json:"reminder_sent"`
	StartedNotified bool       `db:"started_notified" json:"started_notified"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// ValidStatus reports whether s is one of the four recognized labels.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// transitions enumerates every (from, to) pair the engine accepts. The
// upstream behavior allows any recognized label from any state, backward
// moves included; the table makes that permissiveness explicit and pins it
// under test instead of leaving it as an absent check.
var transitions = map[string]map[string]bool{
	StatusPending: {
		StatusPending:   true,
		StatusConfirmed: true,
		StatusCancelled: true,
		StatusCompleted: true,
	},
	StatusConfirmed: {
		StatusPending:   true,
		StatusConfirmed: true,
		StatusCancelled: true,
		StatusCompleted: true,
	},
	StatusCancelled: {
		StatusPending:   true,
		StatusConfirmed: true,
		StatusCancelled: true,
		StatusCompleted: true,
	},
	StatusCompleted: {
		StatusPending:   true,
		StatusConfirmed: true,
		StatusCancelled: true,
		StatusCompleted: true,
	},
}

// TransitionAllowed reports whether the engine accepts moving from one
// status to another. Both labels must be recognized.
func TransitionAllowed(from, to string) bool {
	return transitions[from][to]
}

// NewCode builds a human-readable booking code from the current wall clock
// plus a random suffix. Collisions are practically impossible; the store's
// unique constraint is the second line of defense.
func NewCode(now time.Time) string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	suffix := int64(0)
	if err == nil {
		suffix = n.Int64()
	}
	return fmt.Sprintf("BKG-%d-%03d", now.UnixMilli(), suffix)
}
