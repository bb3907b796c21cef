package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medika/medika/internal/platform/db"
)

type ledgerPG struct{ pool *pgxpool.Pool }

func NewLedgerPG(pool *pgxpool.Pool) Ledger { return &ledgerPG{pool: pool} }

func (r *ledgerPG) conn(ctx context.Context) db.Querier {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const blockCols = `id, doctor_id, date, time_start, time_end, booking_id, created_at`

func (r *ledgerPG) scan(row pgx.Row) (*Block, error) {
	var b Block
	err := row.Scan(&b.ID, &b.DoctorID, &b.Date, &b.Start, &b.End, &b.BookingID, &b.CreatedAt)
	return &b, err
}

func (r *ledgerPG) HasOverlap(ctx context.Context, doctorID uuid.UUID, date time.Time, start, end int) (bool, error) {
	// [s1,e1) and [s2,e2) overlap iff NOT (e1 <= s2 OR s1 >= e2)
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM blocked_times
			WHERE doctor_id = $1 AND date = $2
			  AND time_start < $4 AND time_end > $3
		)`, doctorID, date, start, end).Scan(&exists)
	return exists, err
}

func (r *ledgerPG) Insert(ctx context.Context, b *Block) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO blocked_times (id, doctor_id, date, time_start, time_end, booking_id)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		b.ID, b.DoctorID, b.Date, b.Start, b.End, b.BookingID)
	return err
}

func (r *ledgerPG) GetByID(ctx context.Context, id uuid.UUID) (*Block, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+blockCols+` FROM blocked_times WHERE id = $1`, id))
}

func (r *ledgerPG) DeleteByBooking(ctx context.Context, bookingID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM blocked_times WHERE booking_id = $1`, bookingID)
	return err
}

func (r *ledgerPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM blocked_times WHERE id = $1`, id)
	return err
}

func (r *ledgerPG) ListByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Block, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+blockCols+` FROM blocked_times
		 WHERE doctor_id = $1 AND date = $2 ORDER BY time_start`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Block
	for rows.Next() {
		b, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r *ledgerPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Block, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM blocked_times WHERE doctor_id = $1`, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+blockCols+` FROM blocked_times
		 WHERE doctor_id = $1 ORDER BY date, time_start LIMIT $2 OFFSET $3`, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Block
	for rows.Next() {
		b, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

func (r *ledgerPG) List(ctx context.Context, limit, offset int) ([]*Block, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM blocked_times`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+blockCols+` FROM blocked_times ORDER BY date, time_start LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Block
	for rows.Next() {
		b, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}
