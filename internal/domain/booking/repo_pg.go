package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medika/medika/internal/domain/wallet"
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

const bookingCols = `id, booking_code, patient_id, service_id, doctor_id, date, time_start, time_end,
	status, payment_status, notes, wallet_processed, reminder_sent, started_notified,
	created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.Code, &b.PatientID, &b.ServiceID, &b.DoctorID,
		&b.Date, &b.Start, &b.End, &b.Status, &b.PaymentStatus, &b.Notes,
		&b.WalletProcessed, &b.ReminderSent, &b.StartedNotified, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *repoPG) Create(ctx context.Context, b *Booking) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bookings (id, booking_code, patient_id, service_id, doctor_id,
			date, time_start, time_end, status, payment_status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		b.ID, b.Code, b.PatientID, b.ServiceID, b.DoctorID,
		b.Date, b.Start, b.End, b.Status, b.PaymentStatus, b.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Booking, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE booking_code = $1`, code))
}

func (r *repoPG) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) MarkPaid(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE bookings SET payment_status = 'paid', updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) MarkWalletProcessed(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE bookings SET wallet_processed = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Booking, int, error) {
	where := ` WHERE TRUE`
	args := []interface{}{}
	if f.PatientID != nil {
		args = append(args, *f.PatientID)
		where += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if f.DoctorID != nil {
		args = append(args, *f.DoctorID)
		where += fmt.Sprintf(" AND doctor_id = $%d", len(args))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM bookings`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+bookingCols+` FROM bookings`+where+
			fmt.Sprintf(` ORDER BY date ASC, time_start ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Booking
	for rows.Next() {
		b, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CompletedPaidEarnings(ctx context.Context, doctorID uuid.UUID) ([]wallet.Earning, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT b.id, b.booking_code, s.name, s.price, s.is_live, b.updated_at
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		WHERE b.doctor_id = $1 AND b.status = 'completed' AND b.payment_status = 'paid'
		ORDER BY b.updated_at DESC`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []wallet.Earning
	for rows.Next() {
		var e wallet.Earning
		if err := rows.Scan(&e.BookingID, &e.BookingCode, &e.ServiceName, &e.Price, &e.IsLive, &e.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repoPG) ListReminderCandidates(ctx context.Context, from, to time.Time) ([]*Booking, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+bookingCols+` FROM bookings
		 WHERE status = 'confirmed' AND (NOT reminder_sent OR NOT started_notified)
		   AND date BETWEEN $1 AND $2`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Booking
	for rows.Next() {
		b, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r *repoPG) MarkReminderSent(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE bookings SET reminder_sent = TRUE WHERE id = $1 AND NOT reminder_sent`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) MarkStartedNotified(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE bookings SET started_notified = TRUE WHERE id = $1 AND NOT started_notified`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
