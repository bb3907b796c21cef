package wallet

import (
	"context"

	"github.com/google/uuid"
)

type WalletRepository interface {
	// EnsureForDoctor creates the doctor's wallet with a zero balance when it
	// does not exist yet. Safe to call repeatedly.
	EnsureForDoctor(ctx context.Context, doctorID uuid.UUID) error
	GetByDoctor(ctx context.Context, doctorID uuid.UUID) (*Wallet, error)
	// GetByDoctorForUpdate loads the wallet under a row lock; must run inside
	// a transaction scoped into ctx.
	GetByDoctorForUpdate(ctx context.Context, doctorID uuid.UUID) (*Wallet, error)
	SetBalance(ctx context.Context, id uuid.UUID, balance int64) error
}

type WithdrawRepository interface {
	Create(ctx context.Context, w *WithdrawRequest) error
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*WithdrawRequest, error)
	Update(ctx context.Context, w *WithdrawRequest) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*WithdrawRequest, int, error)
	List(ctx context.Context, status string, limit, offset int) ([]*WithdrawRequest, int, error)
}
