package catalog

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

const serviceCols = `id, name, description, duration_minutes, price, requires_doctor,
	allow_walkin, is_live, is_doctor_exclusive, exclusive_doctor_id, image_url, active,
	created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Service, error) {
	var s Service
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.DurationMinutes, &s.Price,
		&s.RequiresDoctor, &s.AllowWalkin, &s.IsLive, &s.IsDoctorExclusive,
		&s.ExclusiveDoctorID, &s.ImageURL, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *repoPG) Create(ctx context.Context, s *Service) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO services (id, name, description, duration_minutes, price, requires_doctor,
			allow_walkin, is_live, is_doctor_exclusive, exclusive_doctor_id, image_url, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		s.ID, s.Name, s.Description, s.DurationMinutes, s.Price, s.RequiresDoctor,
		s.AllowWalkin, s.IsLive, s.IsDoctorExclusive, s.ExclusiveDoctorID, s.ImageURL, s.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Service, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+serviceCols+` FROM services WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, s *Service) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE services SET name=$2, description=$3, duration_minutes=$4, price=$5,
			requires_doctor=$6, allow_walkin=$7, is_live=$8, is_doctor_exclusive=$9,
			exclusive_doctor_id=$10, image_url=$11, active=$12, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Name, s.Description, s.DurationMinutes, s.Price, s.RequiresDoctor,
		s.AllowWalkin, s.IsLive, s.IsDoctorExclusive, s.ExclusiveDoctorID, s.ImageURL, s.Active)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Service, int, error) {
	where := ``
	if activeOnly {
		where = ` WHERE active`
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM services`+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+serviceCols+` FROM services`+where+` ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Service
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}
