package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification type tags. Clients use them to route taps to the right screen.
const (
	TypeBookingConfirmed = "booking_confirmed"
	TypeBookingCancelled = "booking_cancelled"
	TypeBookingPaid      = "booking_paid"
	TypeBookingCompleted = "booking_completed"
	TypeBookingReminder  = "booking_reminder"
	TypeBookingStarted   = "booking_started"
	TypeWalletSettled    = "wallet_settled"
)

// Notification is one feed entry for a patient or a doctor. Exactly one of
// UserID and DoctorID is set.
type Notification struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	DoctorID  *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	BookingID *uuid.UUID `db:"booking_id" json:"booking_id,omitempty"`
	Title     string     `db:"title" json:"title"`
	Body      string     `db:"body" json:"body"`
	Type      string     `db:"type" json:"type"`
	IsRead    bool       `db:"is_read" json:"is_read"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// PushToken maps a patient or doctor to their current Expo device token.
// One row per recipient; re-registering replaces the token.
type PushToken struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	DoctorID  *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	ExpoToken string     `db:"expo_token" json:"expo_token"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
