package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medika/medika/internal/domain/doctor"
)

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memLedger struct {
	blocks map[uuid.UUID]*Block
}

func newMemLedger() *memLedger {
	return &memLedger{blocks: make(map[uuid.UUID]*Block)}
}

func (m *memLedger) HasOverlap(_ context.Context, doctorID uuid.UUID, date time.Time, start, end int) (bool, error) {
	for _, b := range m.blocks {
		if b.DoctorID == doctorID && b.Date.Equal(date) && Overlaps(b.Start, b.End, start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memLedger) Insert(_ context.Context, b *Block) error {
	b.ID = uuid.New()
	m.blocks[b.ID] = b
	return nil
}

func (m *memLedger) GetByID(_ context.Context, id uuid.UUID) (*Block, error) {
	b, ok := m.blocks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return b, nil
}

func (m *memLedger) DeleteByBooking(_ context.Context, bookingID uuid.UUID) error {
	for id, b := range m.blocks {
		if b.BookingID != nil && *b.BookingID == bookingID {
			delete(m.blocks, id)
		}
	}
	return nil
}

func (m *memLedger) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.blocks, id)
	return nil
}

func (m *memLedger) ListByDoctorDate(_ context.Context, doctorID uuid.UUID, date time.Time) ([]*Block, error) {
	var out []*Block
	for _, b := range m.blocks {
		if b.DoctorID == doctorID && b.Date.Equal(date) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memLedger) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Block, int, error) {
	var out []*Block
	for _, b := range m.blocks {
		if b.DoctorID == doctorID {
			out = append(out, b)
		}
	}
	return out, len(out), nil
}

func (m *memLedger) List(_ context.Context, limit, offset int) ([]*Block, int, error) {
	var out []*Block
	for _, b := range m.blocks {
		out = append(out, b)
	}
	return out, len(out), nil
}

type memDoctors struct {
	byID map[uuid.UUID]*doctor.Doctor
}

func newMemDoctors() *memDoctors {
	return &memDoctors{byID: make(map[uuid.UUID]*doctor.Doctor)}
}

func (m *memDoctors) add() uuid.UUID {
	d := &doctor.Doctor{ID: uuid.New(), Name: "dr. Test", Active: true}
	m.byID[d.ID] = d
	return d.ID
}

func (m *memDoctors) Create(_ context.Context, d *doctor.Doctor) error {
	d.ID = uuid.New()
	m.byID[d.ID] = d
	return nil
}

func (m *memDoctors) GetByID(_ context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	d, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return d, nil
}

func (m *memDoctors) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	return m.GetByID(ctx, id)
}

func (m *memDoctors) Update(_ context.Context, d *doctor.Doctor) error { return nil }

func (m *memDoctors) List(_ context.Context, limit, offset int) ([]*doctor.Doctor, int, error) {
	return nil, 0, nil
}

func newTestService() (*Service, *memLedger, *memDoctors) {
	ledger := newMemLedger()
	doctors := newMemDoctors()
	return New(passthroughTx, ledger, doctors), ledger, doctors
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestCreateBlock(t *testing.T) {
	svc, ledger, doctors := newTestService()
	doctorID := doctors.add()
	day := date(t, "2024-01-10")

	b, err := svc.CreateBlock(context.Background(), doctorID, day, 9*60, 10*60)
	if err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	if b.ID == uuid.Nil {
		t.Fatal("block not assigned an id")
	}
	if len(ledger.blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(ledger.blocks))
	}
}

func TestCreateBlockOverlapRejected(t *testing.T) {
	svc, _, doctors := newTestService()
	doctorID := doctors.add()
	day := date(t, "2024-01-10")

	if _, err := svc.CreateBlock(context.Background(), doctorID, day, 9*60, 10*60); err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	if _, err := svc.CreateBlock(context.Background(), doctorID, day, 9*60+30, 10*60+30); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	// Adjacent interval is fine; the ledger is half-open.
	if _, err := svc.CreateBlock(context.Background(), doctorID, day, 10*60, 11*60); err != nil {
		t.Fatalf("adjacent block: %v", err)
	}
}

func TestCreateBlockOtherDoctorUnaffected(t *testing.T) {
	svc, _, doctors := newTestService()
	first := doctors.add()
	second := doctors.add()
	day := date(t, "2024-01-10")

	if _, err := svc.CreateBlock(context.Background(), first, day, 9*60, 10*60); err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	if _, err := svc.CreateBlock(context.Background(), second, day, 9*60, 10*60); err != nil {
		t.Fatalf("same window, other doctor: %v", err)
	}
}

func TestCreateBlockValidation(t *testing.T) {
	svc, _, doctors := newTestService()
	doctorID := doctors.add()
	day := date(t, "2024-01-10")

	if _, err := svc.CreateBlock(context.Background(), doctorID, day, 10*60, 9*60); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid for inverted interval", err)
	}
	if _, err := svc.CreateBlock(context.Background(), doctorID, day, 9*60, 25*60); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid for out-of-range end", err)
	}
	if _, err := svc.CreateBlock(context.Background(), uuid.New(), day, 9*60, 10*60); !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("err = %v, want ErrDoctorNotFound", err)
	}
}

func TestDeleteBlock(t *testing.T) {
	svc, ledger, doctors := newTestService()
	doctorID := doctors.add()
	day := date(t, "2024-01-10")

	b, err := svc.CreateBlock(context.Background(), doctorID, day, 9*60, 10*60)
	if err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	if err := svc.DeleteBlock(context.Background(), b.ID); err != nil {
		t.Fatalf("DeleteBlock: %v", err)
	}
	if len(ledger.blocks) != 0 {
		t.Fatalf("blocks = %d, want 0", len(ledger.blocks))
	}
	if err := svc.DeleteBlock(context.Background(), b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
