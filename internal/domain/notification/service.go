package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/medika/medika/internal/platform/push"
)

// Message is one notification to persist and, when the recipient has a
// registered device, push. Exactly one of UserID and DoctorID must be set.
type Message struct {
	UserID    *uuid.UUID
	DoctorID  *uuid.UUID
	BookingID *uuid.UUID
	Title     string
	Body      string
	Type      string
	Data      map[string]string
}

// Service stores notifications and fans them out to devices. Push delivery
// is best effort: a failed push is logged, never returned to the caller's
// business flow.
type Service struct {
	repo   Repository
	tokens TokenRepository
	push   push.Dispatcher
	log    zerolog.Logger
}

func New(repo Repository, tokens TokenRepository, dispatcher push.Dispatcher, log zerolog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, push: dispatcher, log: log}
}

// Notify writes the feed row and attempts the push. The row write is the
// source of truth; only its failure is reported.
func (s *Service) Notify(ctx context.Context, msg Message) error {
	n := &Notification{
		UserID:    msg.UserID,
		DoctorID:  msg.DoctorID,
		BookingID: msg.BookingID,
		Title:     msg.Title,
		Body:      msg.Body,
		Type:      msg.Type,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	token, err := s.lookupToken(ctx, msg)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.log.Warn().Err(err).Str("type", msg.Type).Msg("push token lookup failed")
		}
		return nil
	}

	data := msg.Data
	if msg.BookingID != nil {
		if data == nil {
			data = make(map[string]string, 2)
		}
		data["type"] = msg.Type
		data["booking_id"] = msg.BookingID.String()
	}

	if err := s.push.Send(ctx, token.ExpoToken, msg.Title, msg.Body, data); err != nil {
		s.log.Warn().Err(err).Str("type", msg.Type).Msg("push delivery failed")
	}
	return nil
}

func (s *Service) lookupToken(ctx context.Context, msg Message) (*PushToken, error) {
	if msg.UserID != nil {
		return s.tokens.FindForUser(ctx, *msg.UserID)
	}
	if msg.DoctorID != nil {
		return s.tokens.FindForDoctor(ctx, *msg.DoctorID)
	}
	return nil, pgx.ErrNoRows
}

func (s *Service) RegisterUserToken(ctx context.Context, userID uuid.UUID, expoToken string) error {
	if expoToken == "" {
		return errors.New("expo token is required")
	}
	return s.tokens.UpsertForUser(ctx, userID, expoToken)
}

func (s *Service) RegisterDoctorToken(ctx context.Context, doctorID uuid.UUID, expoToken string) error {
	if expoToken == "" {
		return errors.New("expo token is required")
	}
	return s.tokens.UpsertForDoctor(ctx, doctorID, expoToken)
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	return s.repo.ListForUser(ctx, userID, limit, offset)
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	return s.repo.ListForDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, role string, subject uuid.UUID) error {
	if role == "doctor" {
		return s.repo.MarkAllReadForDoctor(ctx, subject)
	}
	return s.repo.MarkAllReadForUser(ctx, subject)
}

var ErrNotFound = errors.New("notification not found")
