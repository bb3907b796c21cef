package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medika/medika/internal/domain/notification"
)

func seedConfirmed(t *testing.T, repo *mockRepo, date time.Time, startMin int) *Booking {
	t.Helper()
	b := &Booking{
		Code:          NewCode(time.Now()),
		PatientID:     uuid.New(),
		ServiceID:     uuid.New(),
		Date:          date,
		Start:         startMin,
		End:           startMin + 30,
		Status:        StatusConfirmed,
		PaymentStatus: PaymentPaid,
	}
	if err := repo.Create(context.Background(), b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}

func TestSweepSendsReminderExactlyOnce(t *testing.T) {
	repo := newMockRepo()
	notifier := &mockNotifier{}
	sweeper := NewReminderSweeper(repo, notifier, time.UTC, zerolog.Nop())

	date := mustDate(t, "2024-01-10")
	b := seedConfirmed(t, repo, date, 10*60) // starts 10:00

	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC) // exactly 60 minutes before
	if err := sweeper.Sweep(context.Background(), now); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.sent))
	}
	msg := notifier.sent[0]
	if msg.Type != notification.TypeBookingReminder {
		t.Fatalf("type = %q, want booking_reminder", msg.Type)
	}
	if msg.UserID == nil || *msg.UserID != b.PatientID {
		t.Fatalf("recipient = %+v, want patient", msg)
	}

	// A second sweep in the same minute must not re-send.
	if err := sweeper.Sweep(context.Background(), now); err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("notifications after repeat = %d, want 1", len(notifier.sent))
	}
}

func TestSweepOutsideWindowIsQuiet(t *testing.T) {
	repo := newMockRepo()
	notifier := &mockNotifier{}
	sweeper := NewReminderSweeper(repo, notifier, time.UTC, zerolog.Nop())

	date := mustDate(t, "2024-01-10")
	seedConfirmed(t, repo, date, 10*60)

	// 61 minutes before: not yet.
	now := time.Date(2024, 1, 10, 8, 59, 0, 0, time.UTC)
	if err := sweeper.Sweep(context.Background(), now); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("notifications = %d, want 0 at 61 minutes out", len(notifier.sent))
	}
}

func TestSweepSendsStartedNotice(t *testing.T) {
	repo := newMockRepo()
	notifier := &mockNotifier{}
	sweeper := NewReminderSweeper(repo, notifier, time.UTC, zerolog.Nop())

	date := mustDate(t, "2024-01-10")
	b := seedConfirmed(t, repo, date, 10*60)
	repo.byID[b.ID].ReminderSent = true

	now := time.Date(2024, 1, 10, 10, 0, 30, 0, time.UTC)
	if err := sweeper.Sweep(context.Background(), now); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.sent))
	}
	if notifier.sent[0].Type != notification.TypeBookingStarted {
		t.Fatalf("type = %q, want booking_started", notifier.sent[0].Type)
	}

	// Only once.
	later := now.Add(time.Minute)
	if err := sweeper.Sweep(context.Background(), later); err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("notifications after repeat = %d, want 1", len(notifier.sent))
	}
}

func TestSweepIgnoresUnconfirmed(t *testing.T) {
	repo := newMockRepo()
	notifier := &mockNotifier{}
	sweeper := NewReminderSweeper(repo, notifier, time.UTC, zerolog.Nop())

	date := mustDate(t, "2024-01-10")
	b := seedConfirmed(t, repo, date, 10*60)
	repo.byID[b.ID].Status = StatusPending

	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	if err := sweeper.Sweep(context.Background(), now); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("notifications = %d, want 0 for non-confirmed booking", len(notifier.sent))
	}
}
