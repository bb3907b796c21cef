package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type mockRepo struct {
	byID      map[uuid.UUID]*Notification
	createErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{byID: make(map[uuid.UUID]*Notification)}
}

func (m *mockRepo) Create(_ context.Context, n *Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	n.ID = uuid.New()
	cp := *n
	m.byID[n.ID] = &cp
	return nil
}

func (m *mockRepo) ListForUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	var out []*Notification
	for _, n := range m.byID {
		if n.UserID != nil && *n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListForDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	var out []*Notification
	for _, n := range m.byID {
		if n.DoctorID != nil && *n.DoctorID == doctorID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	n, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	n.IsRead = true
	return nil
}

func (m *mockRepo) MarkAllReadForUser(_ context.Context, userID uuid.UUID) error {
	for _, n := range m.byID {
		if n.UserID != nil && *n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (m *mockRepo) MarkAllReadForDoctor(_ context.Context, doctorID uuid.UUID) error {
	for _, n := range m.byID {
		if n.DoctorID != nil && *n.DoctorID == doctorID {
			n.IsRead = true
		}
	}
	return nil
}

type mockTokens struct {
	users   map[uuid.UUID]string
	doctors map[uuid.UUID]string
}

func newMockTokens() *mockTokens {
	return &mockTokens{users: make(map[uuid.UUID]string), doctors: make(map[uuid.UUID]string)}
}

func (m *mockTokens) UpsertForUser(_ context.Context, userID uuid.UUID, token string) error {
	m.users[userID] = token
	return nil
}

func (m *mockTokens) UpsertForDoctor(_ context.Context, doctorID uuid.UUID, token string) error {
	m.doctors[doctorID] = token
	return nil
}

func (m *mockTokens) FindForUser(_ context.Context, userID uuid.UUID) (*PushToken, error) {
	token, ok := m.users[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &PushToken{ExpoToken: token}, nil
}

func (m *mockTokens) FindForDoctor(_ context.Context, doctorID uuid.UUID) (*PushToken, error) {
	token, ok := m.doctors[doctorID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &PushToken{ExpoToken: token}, nil
}

type sentPush struct {
	token, title, body string
	data               map[string]string
}

type mockDispatcher struct {
	sent    []sentPush
	sendErr error
}

func (m *mockDispatcher) Send(_ context.Context, token, title, body string, data map[string]string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentPush{token: token, title: title, body: body, data: data})
	return nil
}

func newTestService(repo Repository, tokens TokenRepository, d *mockDispatcher) *Service {
	return New(repo, tokens, d, zerolog.Nop())
}

func TestNotifyStoresRowAndPushes(t *testing.T) {
	repo := newMockRepo()
	tokens := newMockTokens()
	dispatcher := &mockDispatcher{}
	svc := newTestService(repo, tokens, dispatcher)

	userID, bookingID := uuid.New(), uuid.New()
	tokens.users[userID] = "ExponentPushToken[abc]"

	err := svc.Notify(context.Background(), Message{
		UserID:    &userID,
		BookingID: &bookingID,
		Title:     "Booking dikonfirmasi",
		Body:      "Booking kamu sudah dikonfirmasi.",
		Type:      TypeBookingConfirmed,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if len(repo.byID) != 1 {
		t.Fatalf("rows = %d, want 1", len(repo.byID))
	}
	if len(dispatcher.sent) != 1 {
		t.Fatalf("pushes = %d, want 1", len(dispatcher.sent))
	}
	got := dispatcher.sent[0]
	if got.token != "ExponentPushToken[abc]" {
		t.Fatalf("token = %q", got.token)
	}
	if got.data["type"] != TypeBookingConfirmed || got.data["booking_id"] != bookingID.String() {
		t.Fatalf("push data = %v", got.data)
	}
}

func TestNotifyWithoutTokenStillStoresRow(t *testing.T) {
	repo := newMockRepo()
	dispatcher := &mockDispatcher{}
	svc := newTestService(repo, newMockTokens(), dispatcher)

	userID := uuid.New()
	err := svc.Notify(context.Background(), Message{
		UserID: &userID,
		Title:  "Booking dibatalkan",
		Body:   "Booking kamu dibatalkan.",
		Type:   TypeBookingCancelled,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("rows = %d, want 1", len(repo.byID))
	}
	if len(dispatcher.sent) != 0 {
		t.Fatalf("pushes = %d, want 0 when no token registered", len(dispatcher.sent))
	}
}

func TestNotifyPushFailureIsSwallowed(t *testing.T) {
	repo := newMockRepo()
	tokens := newMockTokens()
	dispatcher := &mockDispatcher{sendErr: errors.New("gateway down")}
	svc := newTestService(repo, tokens, dispatcher)

	doctorID := uuid.New()
	tokens.doctors[doctorID] = "ExponentPushToken[doc]"

	err := svc.Notify(context.Background(), Message{
		DoctorID: &doctorID,
		Title:    "Booking baru",
		Body:     "Ada booking baru untuk kamu.",
		Type:     TypeBookingPaid,
	})
	if err != nil {
		t.Fatalf("push failure must not surface: %v", err)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("rows = %d, want 1", len(repo.byID))
	}
}

func TestNotifyRowFailureSurfaces(t *testing.T) {
	repo := newMockRepo()
	repo.createErr = errors.New("insert failed")
	svc := newTestService(repo, newMockTokens(), &mockDispatcher{})

	userID := uuid.New()
	err := svc.Notify(context.Background(), Message{UserID: &userID, Title: "t", Body: "b", Type: TypeBookingConfirmed})
	if err == nil {
		t.Fatal("expected error when row write fails")
	}
}

func TestRegisterTokenValidation(t *testing.T) {
	svc := newTestService(newMockRepo(), newMockTokens(), &mockDispatcher{})
	if err := svc.RegisterUserToken(context.Background(), uuid.New(), ""); err == nil {
		t.Fatal("empty token must be rejected")
	}
	if err := svc.RegisterDoctorToken(context.Background(), uuid.New(), "ExponentPushToken[x]"); err != nil {
		t.Fatalf("RegisterDoctorToken: %v", err)
	}
}

func TestMarkRead(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, newMockTokens(), &mockDispatcher{})

	userID := uuid.New()
	n := &Notification{UserID: &userID, Title: "t", Body: "b", Type: TypeBookingReminder}
	if err := repo.Create(context.Background(), n); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.MarkRead(context.Background(), n.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !repo.byID[n.ID].IsRead {
		t.Fatal("notification not marked read")
	}
	if err := svc.MarkRead(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id: err = %v, want ErrNotFound", err)
	}
}
