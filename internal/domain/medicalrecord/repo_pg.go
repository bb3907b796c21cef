package medicalrecord

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

const recordCols = `id, booking_id, patient_id, doctor_id, subjective, objective,
	assessment, plan, consultation_date, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.BookingID, &rec.PatientID, &rec.DoctorID,
		&rec.Subjective, &rec.Objective, &rec.Assessment, &rec.Plan,
		&rec.ConsultationDate, &rec.CreatedAt, &rec.UpdatedAt)
	return &rec, err
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_records (id, booking_id, patient_id, doctor_id,
			subjective, objective, assessment, plan)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rec.ID, rec.BookingID, rec.PatientID, rec.DoctorID,
		rec.Subjective, rec.Objective, rec.Assessment, rec.Plan)
	return err
}

func (r *repoPG) ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM medical_records WHERE booking_id = $1)`, bookingID).Scan(&exists)
	return exists, err
}

func (r *repoPG) GetByIDForDoctor(ctx context.Context, id, doctorID uuid.UUID) (*Record, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM medical_records WHERE id = $1 AND doctor_id = $2`, id, doctorID))
}

func (r *repoPG) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*Record, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM medical_records WHERE booking_id = $1`, bookingID))
}

func (r *repoPG) Update(ctx context.Context, rec *Record) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_records SET subjective=$2, objective=$3, assessment=$4, plan=$5, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.Subjective, rec.Objective, rec.Assessment, rec.Plan)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id, doctorID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM medical_records WHERE id = $1 AND doctor_id = $2`, id, doctorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_records WHERE doctor_id = $1`, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recordCols+` FROM medical_records WHERE doctor_id = $1
		 ORDER BY consultation_date DESC LIMIT $2 OFFSET $3`, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Record
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}
