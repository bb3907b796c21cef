package medicalrecord

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockRepo struct {
	byID map[uuid.UUID]*Record
}

func newMockRepo() *mockRepo {
	return &mockRepo{byID: make(map[uuid.UUID]*Record)}
}

func (m *mockRepo) Create(_ context.Context, rec *Record) error {
	rec.ID = uuid.New()
	cp := *rec
	m.byID[rec.ID] = &cp
	return nil
}

func (m *mockRepo) ExistsForBooking(_ context.Context, bookingID uuid.UUID) (bool, error) {
	for _, rec := range m.byID {
		if rec.BookingID == bookingID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) GetByIDForDoctor(_ context.Context, id, doctorID uuid.UUID) (*Record, error) {
	rec, ok := m.byID[id]
	if !ok || rec.DoctorID != doctorID {
		return nil, pgx.ErrNoRows
	}
	cp := *rec
	return &cp, nil
}

func (m *mockRepo) GetByBooking(_ context.Context, bookingID uuid.UUID) (*Record, error) {
	for _, rec := range m.byID {
		if rec.BookingID == bookingID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) Update(_ context.Context, rec *Record) error {
	if _, ok := m.byID[rec.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *rec
	m.byID[rec.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id, doctorID uuid.UUID) error {
	rec, ok := m.byID[id]
	if !ok || rec.DoctorID != doctorID {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var out []*Record
	for _, rec := range m.byID {
		if rec.DoctorID == doctorID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

type mockBookings struct {
	// booking -> (doctor, patient)
	owners map[uuid.UUID][2]uuid.UUID
}

func (m *mockBookings) PatientForDoctorBooking(_ context.Context, bookingID, doctorID uuid.UUID) (uuid.UUID, error) {
	pair, ok := m.owners[bookingID]
	if !ok || pair[0] != doctorID {
		return uuid.Nil, pgx.ErrNoRows
	}
	return pair[1], nil
}

func TestEnsureForBookingCreatesOnce(t *testing.T) {
	repo := newMockRepo()
	svc := New(repo, &mockBookings{})
	bookingID, patientID, doctorID := uuid.New(), uuid.New(), uuid.New()

	created, err := svc.EnsureForBooking(context.Background(), bookingID, patientID, doctorID)
	if err != nil {
		t.Fatalf("EnsureForBooking: %v", err)
	}
	if !created {
		t.Fatal("expected record to be created")
	}

	rec, err := repo.GetByBooking(context.Background(), bookingID)
	if err != nil {
		t.Fatalf("record not stored: %v", err)
	}
	if rec.Subjective != nil || rec.Objective != nil || rec.Assessment != nil || rec.Plan != nil {
		t.Fatal("new record must start with empty SOAP sections")
	}

	// Re-confirming must not produce a second record.
	created, err = svc.EnsureForBooking(context.Background(), bookingID, patientID, doctorID)
	if err != nil {
		t.Fatalf("second EnsureForBooking: %v", err)
	}
	if created {
		t.Fatal("duplicate record created for same booking")
	}
	if len(repo.byID) != 1 {
		t.Fatalf("records = %d, want 1", len(repo.byID))
	}
}

func TestCreateRequiresOwnedBooking(t *testing.T) {
	repo := newMockRepo()
	bookingID, patientID, doctorID := uuid.New(), uuid.New(), uuid.New()
	bookings := &mockBookings{owners: map[uuid.UUID][2]uuid.UUID{
		bookingID: {doctorID, patientID},
	}}
	svc := New(repo, bookings)

	if _, err := svc.Create(context.Background(), bookingID, uuid.New()); !errors.Is(err, ErrBookingNotOwned) {
		t.Fatalf("foreign doctor: err = %v, want ErrBookingNotOwned", err)
	}

	rec, err := svc.Create(context.Background(), bookingID, doctorID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.PatientID != patientID {
		t.Fatalf("patient = %s, want %s", rec.PatientID, patientID)
	}

	if _, err := svc.Create(context.Background(), bookingID, doctorID); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("second create: err = %v, want ErrAlreadyExists", err)
	}
}

func TestUpdateSOAPPartial(t *testing.T) {
	repo := newMockRepo()
	svc := New(repo, &mockBookings{})
	doctorID := uuid.New()

	rec := &Record{BookingID: uuid.New(), PatientID: uuid.New(), DoctorID: doctorID}
	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	subj, obj := "patient reports headache", "BP 120/80"
	got, err := svc.UpdateSOAP(context.Background(), rec.ID, doctorID, SOAPUpdate{Subjective: &subj, Objective: &obj})
	if err != nil {
		t.Fatalf("UpdateSOAP: %v", err)
	}
	if got.Subjective == nil || *got.Subjective != subj {
		t.Fatalf("subjective = %v", got.Subjective)
	}

	// A second partial edit keeps the untouched sections.
	plan := "paracetamol 500mg"
	got, err = svc.UpdateSOAP(context.Background(), rec.ID, doctorID, SOAPUpdate{Plan: &plan})
	if err != nil {
		t.Fatalf("second UpdateSOAP: %v", err)
	}
	if got.Subjective == nil || *got.Subjective != subj {
		t.Fatal("partial update cleared the subjective section")
	}
	if got.Plan == nil || *got.Plan != plan {
		t.Fatalf("plan = %v", got.Plan)
	}
}

func TestUpdateSOAPScopedToDoctor(t *testing.T) {
	repo := newMockRepo()
	svc := New(repo, &mockBookings{})
	doctorID := uuid.New()

	rec := &Record{BookingID: uuid.New(), PatientID: uuid.New(), DoctorID: doctorID}
	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	subj := "x"
	if _, err := svc.UpdateSOAP(context.Background(), rec.ID, uuid.New(), SOAPUpdate{Subjective: &subj}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign doctor update: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteScopedToDoctor(t *testing.T) {
	repo := newMockRepo()
	svc := New(repo, &mockBookings{})
	doctorID := uuid.New()

	rec := &Record{BookingID: uuid.New(), PatientID: uuid.New(), DoctorID: doctorID}
	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	if err := svc.Delete(context.Background(), rec.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign doctor delete: err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(context.Background(), rec.ID, doctorID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), rec.ID, doctorID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: err = %v, want ErrNotFound", err)
	}
}
