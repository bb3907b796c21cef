package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/medika/medika/internal/domain/notification"
)

// ReminderSweeper walks confirmed bookings once a minute and sends the
// one-hour reminder and the session-started notice. The per-booking flags are
// flipped atomically in the store, so overlapping sweeps or multiple server
// instances never notify twice.
type ReminderSweeper struct {
	repo     Repository
	notifier Notifier
	loc      *time.Location
	cron     *cron.Cron
	log      zerolog.Logger
}

func NewReminderSweeper(repo Repository, notifier Notifier, loc *time.Location, log zerolog.Logger) *ReminderSweeper {
	return &ReminderSweeper{
		repo:     repo,
		notifier: notifier,
		loc:      loc,
		cron:     cron.New(cron.WithLocation(loc)),
		log:      log,
	}
}

func (s *ReminderSweeper) Start() error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
		defer cancel()
		if err := s.Sweep(ctx, time.Now().In(s.loc)); err != nil {
			s.log.Error().Err(err).Msg("reminder sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reminder sweep: %w", err)
	}
	s.cron.Start()
	return nil
}

func (s *ReminderSweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep runs one pass at the given wall-clock time. Candidates are limited to
// today and tomorrow; anything farther out cannot be within the one-hour
// window yet.
func (s *ReminderSweeper) Sweep(ctx context.Context, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	candidates, err := s.repo.ListReminderCandidates(ctx, today, tomorrow)
	if err != nil {
		return fmt.Errorf("list reminder candidates: %w", err)
	}

	for _, b := range candidates {
		start := time.Date(b.Date.Year(), b.Date.Month(), b.Date.Day(),
			b.Start/60, b.Start%60, 0, 0, s.loc)
		minutesUntil := int(start.Sub(now).Minutes())

		if minutesUntil == 60 && !b.ReminderSent {
			won, err := s.repo.MarkReminderSent(ctx, b.ID)
			if err != nil {
				s.log.Error().Err(err).Str("booking_code", b.Code).Msg("mark reminder sent failed")
				continue
			}
			if won {
				s.send(ctx, b, "Booking starts in 1 hour",
					fmt.Sprintf("Your booking %s starts at %s.", b.Code, start.Format("15:04, 02 Jan 2006")),
					notification.TypeBookingReminder)
			}
		}

		if minutesUntil <= 0 && !b.StartedNotified {
			won, err := s.repo.MarkStartedNotified(ctx, b.ID)
			if err != nil {
				s.log.Error().Err(err).Str("booking_code", b.Code).Msg("mark started notified failed")
				continue
			}
			if won {
				s.send(ctx, b, "Booking started",
					fmt.Sprintf("Your booking %s is starting now.", b.Code),
					notification.TypeBookingStarted)
			}
		}
	}
	return nil
}

func (s *ReminderSweeper) send(ctx context.Context, b *Booking, title, body, typ string) {
	bookingID := b.ID
	patientID := b.PatientID
	if err := s.notifier.Notify(ctx, notification.Message{
		UserID:    &patientID,
		BookingID: &bookingID,
		Title:     title,
		Body:      body,
		Type:      typ,
	}); err != nil {
		s.log.Warn().Err(err).Str("booking_code", b.Code).Msg("reminder notification failed")
	}
}
