package wallet

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds a doctor's settled consultation revenue. One row per doctor.
type Wallet struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Balance   int64     `db:"balance" json:"balance"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Withdraw request states.
const (
	WithdrawPending  = "pending"
	WithdrawApproved = "approved"
	WithdrawRejected = "rejected"
	WithdrawPaid     = "paid"
)

// WithdrawRequest is a doctor-initiated debit. The amount is held (debited)
// at request time; rejection restores it.
type WithdrawRequest struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	DoctorID    uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Amount      int64      `db:"amount" json:"amount"`
	BankName    string     `db:"bank_name" json:"bank_name"`
	BankAccount string     `db:"bank_account" json:"bank_account"`
	AccountName string     `db:"account_name" json:"account_name"`
	Status      string     `db:"status" json:"status"`
	ProofImage  *string    `db:"proof_image" json:"proof_image,omitempty"`
	RequestedAt time.Time  `db:"requested_at" json:"requested_at"`
	ProcessedAt *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}

// Revenue split: live consultations pay the platform a larger share.
const (
	liveDoctorPercent    = 70
	offlineDoctorPercent = 90
)

// Split returns the doctor and platform shares of a service price.
// The platform share is informational; only the doctor share is credited.
func Split(price int64, isLive bool) (doctorShare, platformShare int64) {
	pct := int64(offlineDoctorPercent)
	if isLive {
		pct = liveDoctorPercent
	}
	doctorShare = price * pct / 100
	platformShare = price - doctorShare
	return doctorShare, platformShare
}
