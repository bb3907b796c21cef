package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medika/medika/internal/platform/db"
)

type walletRepoPG struct{ pool *pgxpool.Pool }

func NewWalletRepoPG(pool *pgxpool.Pool) WalletRepository { return &walletRepoPG{pool: pool} }

func (r *walletRepoPG) conn(ctx context.Context) db.Querier {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const walletCols = `id, doctor_id, balance, created_at, updated_at`

func (r *walletRepoPG) scan(row pgx.Row) (*Wallet, error) {
	var w Wallet
	err := row.Scan(&w.ID, &w.DoctorID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	return &w, err
}

func (r *walletRepoPG) EnsureForDoctor(ctx context.Context, doctorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor_wallets (id, doctor_id, balance)
		VALUES ($1, $2, 0)
		ON CONFLICT (doctor_id) DO NOTHING`,
		uuid.New(), doctorID)
	return err
}

func (r *walletRepoPG) GetByDoctor(ctx context.Context, doctorID uuid.UUID) (*Wallet, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+walletCols+` FROM doctor_wallets WHERE doctor_id = $1`, doctorID))
}

func (r *walletRepoPG) GetByDoctorForUpdate(ctx context.Context, doctorID uuid.UUID) (*Wallet, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+walletCols+` FROM doctor_wallets WHERE doctor_id = $1 FOR UPDATE`, doctorID))
}

func (r *walletRepoPG) SetBalance(ctx context.Context, id uuid.UUID, balance int64) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE doctor_wallets SET balance = $2, updated_at = NOW() WHERE id = $1`, id, balance)
	return err
}

type withdrawRepoPG struct{ pool *pgxpool.Pool }

func NewWithdrawRepoPG(pool *pgxpool.Pool) WithdrawRepository { return &withdrawRepoPG{pool: pool} }

func (r *withdrawRepoPG) conn(ctx context.Context) db.Querier {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const withdrawCols = `id, doctor_id, amount, bank_name, bank_account, account_name,
	status, proof_image, requested_at, processed_at`

func (r *withdrawRepoPG) scan(row pgx.Row) (*WithdrawRequest, error) {
	var w WithdrawRequest
	err := row.Scan(&w.ID, &w.DoctorID, &w.Amount, &w.BankName, &w.BankAccount,
		&w.AccountName, &w.Status, &w.ProofImage, &w.RequestedAt, &w.ProcessedAt)
	return &w, err
}

func (r *withdrawRepoPG) Create(ctx context.Context, w *WithdrawRequest) error {
	w.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO withdraw_requests (id, doctor_id, amount, bank_name, bank_account,
			account_name, status, requested_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())`,
		w.ID, w.DoctorID, w.Amount, w.BankName, w.BankAccount, w.AccountName, w.Status)
	return err
}

func (r *withdrawRepoPG) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*WithdrawRequest, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+withdrawCols+` FROM withdraw_requests WHERE id = $1 FOR UPDATE`, id))
}

func (r *withdrawRepoPG) Update(ctx context.Context, w *WithdrawRequest) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE withdraw_requests SET status=$2, proof_image=$3, processed_at=$4
		WHERE id = $1`,
		w.ID, w.Status, w.ProofImage, w.ProcessedAt)
	return err
}

func (r *withdrawRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*WithdrawRequest, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM withdraw_requests WHERE doctor_id = $1`, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+withdrawCols+` FROM withdraw_requests
		 WHERE doctor_id = $1 ORDER BY requested_at DESC LIMIT $2 OFFSET $3`, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*WithdrawRequest
	for rows.Next() {
		w, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, w)
	}
	return items, total, rows.Err()
}

func (r *withdrawRepoPG) List(ctx context.Context, status string, limit, offset int) ([]*WithdrawRequest, int, error) {
	where := ``
	args := []interface{}{}
	idx := 1
	if status != "" {
		where = ` WHERE status = $1`
		args = append(args, status)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM withdraw_requests`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + withdrawCols + ` FROM withdraw_requests` + where +
		fmt.Sprintf(` ORDER BY requested_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*WithdrawRequest
	for rows.Next() {
		w, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, w)
	}
	return items, total, rows.Err()
}
