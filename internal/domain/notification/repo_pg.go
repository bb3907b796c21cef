package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medika/medika/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const notificationCols = `id, user_id, doctor_id, booking_id, title, body, type, is_read, created_at`

func (r *repoPG) scan(row pgx.Row) (*Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.UserID, &n.DoctorID, &n.BookingID,
		&n.Title, &n.Body, &n.Type, &n.IsRead, &n.CreatedAt)
	return &n, err
}

func (r *repoPG) Create(ctx context.Context, n *Notification) error {
	n.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO notifications (id, user_id, doctor_id, booking_id, title, body, type)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		n.ID, n.UserID, n.DoctorID, n.BookingID, n.Title, n.Body, n.Type)
	return err
}

func (r *repoPG) list(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE `+col+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+notificationCols+` FROM notifications WHERE `+col+` = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Notification
	for rows.Next() {
		n, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	return r.list(ctx, "user_id", userID, limit, offset)
}

func (r *repoPG) ListForDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	return r.list(ctx, "doctor_id", doctorID, limit, offset)
}

func (r *repoPG) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) MarkAllReadForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	return err
}

func (r *repoPG) MarkAllReadForDoctor(ctx context.Context, doctorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE doctor_id = $1 AND NOT is_read`, doctorID)
	return err
}

type tokenRepoPG struct{ pool *pgxpool.Pool }

func NewTokenRepoPG(pool *pgxpool.Pool) TokenRepository { return &tokenRepoPG{pool: pool} }

func (r *tokenRepoPG) conn(ctx context.Context) db.Querier {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

func (r *tokenRepoPG) UpsertForUser(ctx context.Context, userID uuid.UUID, expoToken string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO push_tokens (id, user_id, expo_token) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) WHERE user_id IS NOT NULL
		DO UPDATE SET expo_token = EXCLUDED.expo_token, updated_at = NOW()`,
		uuid.New(), userID, expoToken)
	return err
}

func (r *tokenRepoPG) UpsertForDoctor(ctx context.Context, doctorID uuid.UUID, expoToken string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO push_tokens (id, doctor_id, expo_token) VALUES ($1, $2, $3)
		ON CONFLICT (doctor_id) WHERE doctor_id IS NOT NULL
		DO UPDATE SET expo_token = EXCLUDED.expo_token, updated_at = NOW()`,
		uuid.New(), doctorID, expoToken)
	return err
}

func (r *tokenRepoPG) scanToken(row pgx.Row) (*PushToken, error) {
	var t PushToken
	err := row.Scan(&t.ID, &t.UserID, &t.DoctorID, &t.ExpoToken, &t.UpdatedAt)
	return &t, err
}

func (r *tokenRepoPG) FindForUser(ctx context.Context, userID uuid.UUID) (*PushToken, error) {
	return r.scanToken(r.conn(ctx).QueryRow(ctx,
		`SELECT id, user_id, doctor_id, expo_token, updated_at FROM push_tokens WHERE user_id = $1`, userID))
}

func (r *tokenRepoPG) FindForDoctor(ctx context.Context, doctorID uuid.UUID) (*PushToken, error) {
	return r.scanToken(r.conn(ctx).QueryRow(ctx,
		`SELECT id, user_id, doctor_id, expo_token, updated_at FROM push_tokens WHERE doctor_id = $1`, doctorID))
}
