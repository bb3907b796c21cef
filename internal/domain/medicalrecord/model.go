package medicalrecord

import (
	"time"

	"github.com/google/uuid"
)

// Record is the clinical note attached to a booking, kept in SOAP form.
// All four sections start empty: the row is created automatically when the
// booking is confirmed and the doctor fills it in during the consultation.
type Record struct {
	ID               uuid.UUID `db:"id" json:"id"`
	BookingID        uuid.UUID `db:"booking_id" json:"booking_id"`
	PatientID        uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID         uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Subjective       *string   `db:"subjective" json:"subjective"`
	Objective        *string   `db:"objective" json:"objective"`
	Assessment       *string   `db:"assessment" json:"assessment"`
	Plan             *string   `db:"plan" json:"plan"`
	ConsultationDate time.Time `db:"consultation_date" json:"consultation_date"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// SOAPUpdate carries a partial edit; nil fields keep their current value.
type SOAPUpdate struct {
	Subjective *string `json:"subjective"`
	Objective  *string `json:"objective"`
	Assessment *string `json:"assessment"`
	Plan       *string `json:"plan"`
}
