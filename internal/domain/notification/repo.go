package notification

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Notification, int, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllReadForUser(ctx context.Context, userID uuid.UUID) error
	MarkAllReadForDoctor(ctx context.Context, doctorID uuid.UUID) error
}

type TokenRepository interface {
	UpsertForUser(ctx context.Context, userID uuid.UUID, expoToken string) error
	UpsertForDoctor(ctx context.Context, doctorID uuid.UUID, expoToken string) error
	// FindForUser and FindForDoctor return pgx.ErrNoRows when the recipient
	// has never registered a device.
	FindForUser(ctx context.Context, userID uuid.UUID) (*PushToken, error)
	FindForDoctor(ctx context.Context, doctorID uuid.UUID) (*PushToken, error)
}
