package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TxRunner executes fn as one atomic unit of work, retrying on transient
// locking failures.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Earning is one completed, paid booking contributing to a doctor's revenue.
// The booking domain supplies these through an adapter wired in main, which
// keeps this package free of a booking import.
type Earning struct {
	BookingID   uuid.UUID `json:"booking_id"`
	BookingCode string    `json:"booking_code"`
	ServiceName string    `json:"service_name"`
	Price       int64     `json:"price"`
	IsLive      bool      `json:"is_live"`
	CompletedAt time.Time `json:"completed_at"`
}

// EarningsSource lists a doctor's completed, paid bookings.
type EarningsSource interface {
	CompletedPaidByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Earning, error)
}

type Service struct {
	run       TxRunner
	wallets   WalletRepository
	withdraws WithdrawRepository
	earnings  EarningsSource
}

func New(run TxRunner, wallets WalletRepository, withdraws WithdrawRepository, earnings EarningsSource) *Service {
	return &Service{run: run, wallets: wallets, withdraws: withdraws, earnings: earnings}
}

// Settle credits the doctor share of price to the doctor's wallet. It runs on
// the caller's transaction and performs no idempotency check of its own: the
// booking engine's walletProcessed flag is the guard against double credit.
func (s *Service) Settle(ctx context.Context, doctorID uuid.UUID, price int64, isLive bool) (int64, error) {
	doctorShare, platformShare := Split(price, isLive)
	_ = platformShare // reported, never persisted

	if err := s.wallets.EnsureForDoctor(ctx, doctorID); err != nil {
		return 0, fmt.Errorf("ensure wallet: %w", err)
	}
	w, err := s.wallets.GetByDoctorForUpdate(ctx, doctorID)
	if err != nil {
		return 0, fmt.Errorf("lock wallet: %w", err)
	}
	if err := s.wallets.SetBalance(ctx, w.ID, w.Balance+doctorShare); err != nil {
		return 0, fmt.Errorf("credit wallet: %w", err)
	}
	return doctorShare, nil
}

// Balance returns the doctor's wallet balance, zero when no wallet exists yet.
func (s *Service) Balance(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	w, err := s.wallets.GetByDoctor(ctx, doctorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return w.Balance, nil
}

// RevenueLine is one booking's contribution in the doctor revenue report.
type RevenueLine struct {
	Earning
	DoctorShare   int64 `json:"doctor_share"`
	PlatformShare int64 `json:"platform_share"`
}

// RevenueReport summarizes a doctor's settled revenue.
type RevenueReport struct {
	DoctorID           uuid.UUID     `json:"doctor_id"`
	WalletBalance      int64         `json:"wallet_balance"`
	TotalDoctorIncome  int64         `json:"total_doctor_income"`
	TotalPlatformShare int64         `json:"total_platform_share"`
	Transactions       []RevenueLine `json:"transactions"`
}

func (s *Service) Revenue(ctx context.Context, doctorID uuid.UUID) (*RevenueReport, error) {
	balance, err := s.Balance(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("load balance: %w", err)
	}

	earnings, err := s.earnings.CompletedPaidByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("load earnings: %w", err)
	}

	report := &RevenueReport{DoctorID: doctorID, WalletBalance: balance}
	for _, e := range earnings {
		doctorShare, platformShare := Split(e.Price, e.IsLive)
		report.TotalDoctorIncome += doctorShare
		report.TotalPlatformShare += platformShare
		report.Transactions = append(report.Transactions, RevenueLine{
			Earning:       e,
			DoctorShare:   doctorShare,
			PlatformShare: platformShare,
		})
	}
	return report, nil
}

// RequestWithdraw debits the wallet immediately after verifying the balance
// under a row lock, then records the pending request (hold-then-settle).
func (s *Service) RequestWithdraw(ctx context.Context, doctorID uuid.UUID, amount int64, bankName, bankAccount, accountName string) (*WithdrawRequest, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if bankName == "" || bankAccount == "" || accountName == "" {
		return nil, fmt.Errorf("%w: bank details are required", ErrInvalidAmount)
	}

	var req *WithdrawRequest
	err := s.run(ctx, func(ctx context.Context) error {
		w, err := s.wallets.GetByDoctorForUpdate(ctx, doctorID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInsufficientBalance
			}
			return fmt.Errorf("lock wallet: %w", err)
		}
		if w.Balance < amount {
			return ErrInsufficientBalance
		}

		if err := s.wallets.SetBalance(ctx, w.ID, w.Balance-amount); err != nil {
			return fmt.Errorf("debit wallet: %w", err)
		}

		req = &WithdrawRequest{
			DoctorID:    doctorID,
			Amount:      amount,
			BankName:    bankName,
			BankAccount: bankAccount,
			AccountName: accountName,
			Status:      WithdrawPending,
		}
		if err := s.withdraws.Create(ctx, req); err != nil {
			return fmt.Errorf("create withdraw request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ProcessWithdraw applies an administrative decision. Rejection restores the
// held amount; approval only flips the state (the debit already happened at
// request time); marking paid requires a proof artifact reference.
func (s *Service) ProcessWithdraw(ctx context.Context, id uuid.UUID, newStatus string, proofImage *string) (*WithdrawRequest, error) {
	switch newStatus {
	case WithdrawApproved, WithdrawRejected, WithdrawPaid:
	default:
		return nil, ErrInvalidStatus
	}

	var req *WithdrawRequest
	err := s.run(ctx, func(ctx context.Context) error {
		w, err := s.withdraws.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("lock withdraw request: %w", err)
		}
		if w.Status == WithdrawPaid {
			return ErrAlreadyCompleted
		}

		now := time.Now()
		switch newStatus {
		case WithdrawRejected:
			wal, err := s.wallets.GetByDoctorForUpdate(ctx, w.DoctorID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrWalletNotFound
				}
				return fmt.Errorf("lock wallet: %w", err)
			}
			if err := s.wallets.SetBalance(ctx, wal.ID, wal.Balance+w.Amount); err != nil {
				return fmt.Errorf("restore balance: %w", err)
			}
			w.Status = WithdrawRejected
			w.ProcessedAt = &now

		case WithdrawApproved:
			w.Status = WithdrawApproved

		case WithdrawPaid:
			if proofImage == nil || *proofImage == "" {
				return ErrProofRequired
			}
			w.Status = WithdrawPaid
			w.ProofImage = proofImage
			w.ProcessedAt = &now
		}

		if err := s.withdraws.Update(ctx, w); err != nil {
			return fmt.Errorf("update withdraw request: %w", err)
		}
		req = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Service) ListWithdrawsByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*WithdrawRequest, int, error) {
	return s.withdraws.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) ListWithdraws(ctx context.Context, status string, limit, offset int) ([]*WithdrawRequest, int, error) {
	if status != "" {
		switch status {
		case WithdrawPending, WithdrawApproved, WithdrawRejected, WithdrawPaid:
		default:
			return nil, 0, ErrInvalidStatus
		}
	}
	return s.withdraws.List(ctx, status, limit, offset)
}
